// Package config loads the daemon's notifd.toml settings file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/notifd/notifd/internal/daemon"
	"github.com/notifd/notifd/internal/xdgpath"
)

// Config represents the structure of the notifd.toml file.
type Config struct {
	// Sink is the path the notification snapshot is written to. Empty
	// means $XDG_RUNTIME_DIR/notifd/notifications.json.
	Sink string `toml:"sink"`
	// DefaultIcon is used when a notification carries no icon of its own.
	DefaultIcon string   `toml:"default_icon"`
	LogLevel    string   `toml:"log_level"`
	Timeouts    Timeouts `toml:"timeouts"`
}

// Timeouts holds the per-urgency display durations applied when a client
// requests the server default. Each value is a Go duration string or
// "never".
type Timeouts struct {
	Low      string `toml:"low"`
	Normal   string `toml:"normal"`
	Critical string `toml:"critical"`
}

// Default returns the built-in configuration: low urgency shown for 5s,
// normal for 10s, critical until dismissed.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Timeouts: Timeouts{
			Low:      "5s",
			Normal:   "10s",
			Critical: "never",
		},
	}
}

// Load reads the config file at path. A missing file is not an error; the
// defaults are returned. An empty path resolves to the XDG config location.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = xdgpath.ConfigPath("notifd.toml")
		if err != nil {
			return nil, err
		}
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("could not read config %s: %w", path, err)
	}

	if _, err := cfg.Policy(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// SinkPath returns the configured sink, falling back to the runtime
// directory default.
func (c *Config) SinkPath() (string, error) {
	if c.Sink != "" {
		return c.Sink, nil
	}
	return xdgpath.RuntimePath("notifications.json")
}

// Policy converts the timeout strings into the daemon's timeout policy.
func (c *Config) Policy() (daemon.TimeoutPolicy, error) {
	var p daemon.TimeoutPolicy
	var err error
	if p.Low, err = parseTimeout(c.Timeouts.Low); err != nil {
		return p, fmt.Errorf("timeouts.low: %w", err)
	}
	if p.Normal, err = parseTimeout(c.Timeouts.Normal); err != nil {
		return p, fmt.Errorf("timeouts.normal: %w", err)
	}
	if p.Critical, err = parseTimeout(c.Timeouts.Critical); err != nil {
		return p, fmt.Errorf("timeouts.critical: %w", err)
	}
	return p, nil
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" || s == "never" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must not be negative: %s", s)
	}
	return d, nil
}
