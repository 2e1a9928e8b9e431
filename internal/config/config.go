// Package config loads beagle's process configuration.
//
// Values come, lowest precedence first, from built-in defaults, the YAML
// config file (with ${VAR} expansion), BEAGLE_* environment variables, and
// finally command line flags applied by the CLI.
package config

import (
	"path/filepath"
	"time"
)

// Config is the process configuration. The same beagle.yaml may also declare
// the site's actions; keys not listed here are ignored.
type Config struct {
	Src              string   `yaml:"src"`
	Dist             string   `yaml:"dist"`
	URLPrefix        string   `yaml:"url_prefix"`
	CleanEveryBuild  bool     `yaml:"clean_every_build"`
	RequiredDirs     []string `yaml:"required_dirs"`
	TemplatePatterns []string `yaml:"template_patterns"`

	Server   ServerConfig   `yaml:"server"`
	Watch    WatchConfig    `yaml:"watch"`
	Compiler CompilerConfig `yaml:"compiler"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Notify   NotifyConfig   `yaml:"notify"`
	History  HistoryConfig  `yaml:"history"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig configures the preview server and its live reload listener.
type ServerConfig struct {
	Addr           string `yaml:"addr"`
	LiveReload     *bool  `yaml:"live_reload"`
	LiveReloadAddr string `yaml:"live_reload_addr"`
}

// LiveReloadEnabled reports whether the live reload listener should run.
func (s ServerConfig) LiveReloadEnabled() bool {
	return s.LiveReload == nil || *s.LiveReload
}

// WatchConfig configures change detection in serve mode.
type WatchConfig struct {
	Quiet        time.Duration `yaml:"quiet"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// CompilerConfig configures the external stylesheet compiler.
type CompilerConfig struct {
	Binary  string        `yaml:"binary"`
	Timeout time.Duration `yaml:"timeout"`
}

// MetricsConfig enables the Prometheus listener when Addr is set.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// NotifyConfig enables NATS build events when NATSURL is set. The initial
// connection is attempted ConnectAttempts times with exponential backoff.
type NotifyConfig struct {
	NATSURL         string `yaml:"nats_url"`
	Subject         string `yaml:"subject"`
	ConnectAttempts int    `yaml:"connect_attempts"`
}

// HistoryConfig points at the SQLite build journal. The path "off" disables it.
// A relative path is resolved against Src.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// HistoryPath is where the build journal lives, or "" when it is disabled.
func (c *Config) HistoryPath() string {
	p := c.History.Path
	if p == "" || p == ":memory:" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Src, p)
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}
