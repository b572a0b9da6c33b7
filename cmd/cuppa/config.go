// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MattWindsor91/cuppa/internal/config"
	"github.com/MattWindsor91/cuppa/internal/xdg"
)

// NewConfigCmd creates the config subcommand and its children.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and check configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "schema",
		Short: "Print the configuration JSON Schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema, err := config.GenerateSchema()
			if err != nil {
				return err //nolint:wrapcheck // fault error
			}
			cmd.Println(string(schema))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate FILE",
		Short: "Check a configuration file against the schema and value rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.Load(args[0], nil); err != nil {
				return err //nolint:wrapcheck // fault error
			}
			cmd.Printf("%s: ok\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return writeYAML(cmd, cfg)
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration to the XDG config directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := xdg.ConfigFile()
			if _, err := os.Stat(path); err == nil && !force {
				cmd.Printf("%s already exists (use --force to overwrite)\n", path)
				return nil
			}
			if err := xdg.EnsureDir(filepath.Dir(path)); err != nil {
				return err //nolint:wrapcheck // oops error with path
			}
			cfg := config.Default()
			data, err := yaml.Marshal(toYAML(&cfg))
			if err != nil {
				return err //nolint:wrapcheck // marshalling plain values cannot fail in practice
			}
			if err := os.WriteFile(path, data, 0o600); err != nil {
				return err //nolint:wrapcheck // surfaced verbatim to the operator
			}
			cmd.Printf("wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)

	return cmd
}

func writeYAML(cmd *cobra.Command, cfg *config.Config) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(toYAML(cfg)); err != nil {
		return err //nolint:wrapcheck // surfaced verbatim to the operator
	}
	return enc.Close() //nolint:wrapcheck // surfaced verbatim to the operator
}

// toYAML mirrors the koanf key layout so the output can be loaded back.
func toYAML(cfg *config.Config) map[string]any {
	rejects := make([]map[string]string, 0, len(cfg.Reject))
	for _, r := range cfg.Reject {
		rejects = append(rejects, map[string]string{"word": r.Word, "reason": r.Reason})
	}
	out := map[string]any{
		"log": map[string]any{
			"format": cfg.Log.Format,
			"level":  cfg.Log.Level,
		},
		"poll":      map[string]any{"interval_ms": cfg.Poll.IntervalMS},
		"propagate": map[string]any{"attempts": cfg.Propagate.Attempts},
		"listen":    map[string]any{"addr": cfg.Listen.Addr},
		"trace":     cfg.Trace,
	}
	if cfg.Metrics.Addr != "" {
		out["metrics"] = map[string]any{"addr": cfg.Metrics.Addr}
	}
	if cfg.Propagate.Target != "" {
		out["propagate"].(map[string]any)["target"] = cfg.Propagate.Target
	}
	if len(rejects) > 0 {
		out["reject"] = rejects
	}
	return out
}
