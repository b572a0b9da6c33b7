// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

// Package config loads host configuration from an optional YAML file and
// command-line flags. Flags override the file; the file overrides defaults.
package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/MattWindsor91/cuppa/internal/logging"
	"github.com/MattWindsor91/cuppa/internal/relay"
	"github.com/MattWindsor91/cuppa/internal/xdg"
	"github.com/MattWindsor91/cuppa/pkg/command"
	"github.com/MattWindsor91/cuppa/pkg/fault"
)

// Config is the full host configuration.
type Config struct {
	Log       LogConfig       `koanf:"log" json:"log,omitempty"`
	Metrics   MetricsConfig   `koanf:"metrics" json:"metrics,omitempty"`
	Poll      PollConfig      `koanf:"poll" json:"poll,omitempty"`
	Propagate PropagateConfig `koanf:"propagate" json:"propagate,omitempty"`
	Listen    ListenConfig    `koanf:"listen" json:"listen,omitempty"`
	Reject    []RejectConfig  `koanf:"reject" json:"reject,omitempty" jsonschema:"description=Commands refused with a reason before the player sees them"`
	Trace     bool            `koanf:"trace" json:"trace,omitempty" jsonschema:"description=Emit dbug trace lines for every command"`
}

// LogConfig configures the operator log.
type LogConfig struct {
	Format string `koanf:"format" json:"format,omitempty" jsonschema:"enum=json,enum=text"`
	Level  string `koanf:"level" json:"level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=warning,enum=error"`
}

// MetricsConfig configures the observability server.
type MetricsConfig struct {
	// Addr is the metrics/health listen address. Empty disables the server.
	Addr string `koanf:"addr" json:"addr,omitempty"`
}

// PollConfig configures the run loop.
type PollConfig struct {
	IntervalMS int `koanf:"interval_ms" json:"interval_ms,omitempty" jsonschema:"minimum=1,maximum=60000"`
}

// PropagateConfig configures the propagation channel.
type PropagateConfig struct {
	// Target is tcp://host:port, unix:///path or a file/FIFO path. Empty
	// means propagate entries fail with NO_PROPAGATION_TARGET.
	Target   string `koanf:"target" json:"target,omitempty"`
	Attempts int    `koanf:"attempts" json:"attempts,omitempty" jsonschema:"minimum=1,maximum=100"`
}

// ListenConfig configures the TCP adapter.
type ListenConfig struct {
	Addr string `koanf:"addr" json:"addr,omitempty"`
}

// RejectConfig is one operator-configured refusal.
type RejectConfig struct {
	Word   string `koanf:"word" json:"word" jsonschema:"pattern=^[!-~]+$"`
	Reason string `koanf:"reason" json:"reason" jsonschema:"minLength=1"`
}

// Default values.
const (
	DefaultLogFormat   = "json"
	DefaultLogLevel    = "info"
	DefaultPollMS      = 50
	DefaultListenAddr  = "127.0.0.1:4848"
	DefaultMetricsAddr = ""
)

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Log:       LogConfig{Format: DefaultLogFormat, Level: DefaultLogLevel},
		Metrics:   MetricsConfig{Addr: DefaultMetricsAddr},
		Poll:      PollConfig{IntervalMS: DefaultPollMS},
		Propagate: PropagateConfig{Attempts: relay.DefaultAttempts},
		Listen:    ListenConfig{Addr: DefaultListenAddr},
	}
}

// flagKeys maps command-line flags to configuration keys. Flags not listed
// here (--config, --help) are not configuration.
var flagKeys = map[string]string{
	"log-format":         "log.format",
	"log-level":          "log.level",
	"metrics-addr":       "metrics.addr",
	"poll-interval-ms":   "poll.interval_ms",
	"propagate":          "propagate.target",
	"propagate-attempts": "propagate.attempts",
	"listen-addr":        "listen.addr",
	"trace":              "trace",
}

// RegisterFlags adds the configuration flags to fs, with defaults from Default.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("log-format", d.Log.Format, "log format (json or text)")
	fs.String("log-level", d.Log.Level, "log level (debug, info, warn, error)")
	fs.String("metrics-addr", d.Metrics.Addr, "metrics/health HTTP address (empty = disabled)")
	fs.Int("poll-interval-ms", d.Poll.IntervalMS, "milliseconds between input checks")
	fs.String("propagate", d.Propagate.Target, "propagation target: tcp://host:port, unix:///path or a file/FIFO path")
	fs.Int("propagate-attempts", d.Propagate.Attempts, "attempts to open the propagation target")
	fs.String("listen-addr", d.Listen.Addr, "TCP listen address for the listen command")
	fs.Bool("trace", d.Trace, "emit dbug trace lines for every command")
}

// Load builds the configuration. path names a YAML file; empty means the
// default location if a file exists there. fs may be nil.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		path = xdg.ConfigFile()
	}
	if _, err := os.Stat(path); err == nil || explicit {
		if err := ValidateFile(path); err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fault.Wrapf(fault.BadConfig, err, "cannot load config file "+path)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fault.Wrapf(fault.BadConfig, err, "cannot stat config file "+path)
	}

	if fs != nil {
		provider := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(fs, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, fault.Wrapf(fault.BadConfig, err, "cannot read flags")
		}
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fault.Wrapf(fault.BadConfig, err, "cannot decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration is usable.
func (cfg *Config) Validate() error {
	if cfg.Log.Format != "json" && cfg.Log.Format != "text" {
		return invalid("log.format", "log format must be 'json' or 'text', got "+strconv.Quote(cfg.Log.Format))
	}
	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return invalid("log.level", "unknown log level "+strconv.Quote(cfg.Log.Level))
	}
	if cfg.Poll.IntervalMS < 1 {
		return invalid("poll.interval_ms", "poll interval must be at least 1ms")
	}
	if cfg.Propagate.Attempts < 1 {
		return invalid("propagate.attempts", "propagation attempts must be at least 1")
	}
	if cfg.Propagate.Target != "" {
		if _, err := relay.ParseTarget(cfg.Propagate.Target); err != nil {
			return err
		}
	}
	for _, r := range cfg.Reject {
		if err := command.ValidateWord(r.Word); err != nil {
			return invalid("reject", "reject word "+strconv.Quote(r.Word)+" can never match a command")
		}
		if strings.TrimSpace(r.Reason) == "" {
			return invalid("reject", "reject for "+strconv.Quote(r.Word)+" needs a reason")
		}
	}
	return nil
}

// PollInterval returns the poll interval as a duration.
func (cfg *Config) PollInterval() time.Duration {
	return time.Duration(cfg.Poll.IntervalMS) * time.Millisecond
}

// LogLevel returns the parsed log level, defaulting to info.
func (cfg *Config) LogLevel() slog.Level {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func invalid(key, detail string) error {
	return fault.With(fault.BadConfig, detail, "key", key)
}
