// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/MattWindsor91/cuppa/internal/config"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the cuppa CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cuppa",
		Short: "cuppa - a line-oriented command host",
		Long: `cuppa reads one command per line, dispatches each against a command
table and answers with tagged response lines. Client responses go to the
primary stream; failures and traces are mirrored to the diagnostic stream.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default: XDG_CONFIG_HOME/cuppa/cuppa.yaml if present)")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewListenCmd())
	cmd.AddCommand(NewConfigCmd())

	return cmd
}

// loadConfig reads the config file and applies flags set on cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(configFile, cmd.Flags()) //nolint:wrapcheck // fault errors carry their own context
}
