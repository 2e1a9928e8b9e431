package config

import "time"

const (
	DefaultFile           = "beagle.yaml"
	DefaultSrc            = "."
	DefaultDist           = "dist"
	DefaultURLPrefix      = "/"
	DefaultAddr           = "127.0.0.1:8000"
	DefaultLiveReloadAddr = "127.0.0.1:35729"
	DefaultCompiler       = "sassc"
	DefaultCompileTimeout = 60 * time.Second
	DefaultQuiet          = 300 * time.Millisecond
	DefaultMaxDelay       = 2 * time.Second
	DefaultNATSSubject    = "beagle.builds"
	DefaultNATSAttempts   = 3
	DefaultHistoryPath    = ".beagle/history.db"
	HistoryOff            = "off"
)

// DefaultRequiredDirs are recreated in dist on every clean.
var DefaultRequiredDirs = []string{"css", "js"}

// DefaultTemplatePatterns select the template files under src.
var DefaultTemplatePatterns = []string{"**/*.html"}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills zero values. A list written as [] in the file stays
// empty; only an absent key gets the default.
func applyDefaults(cfg *Config) {
	if cfg.Src == "" {
		cfg.Src = DefaultSrc
	}
	if cfg.Dist == "" {
		cfg.Dist = DefaultDist
	}
	if cfg.URLPrefix == "" {
		cfg.URLPrefix = DefaultURLPrefix
	}
	if cfg.RequiredDirs == nil {
		cfg.RequiredDirs = append([]string(nil), DefaultRequiredDirs...)
	}
	if cfg.TemplatePatterns == nil {
		cfg.TemplatePatterns = append([]string(nil), DefaultTemplatePatterns...)
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultAddr
	}
	if cfg.Server.LiveReloadAddr == "" {
		cfg.Server.LiveReloadAddr = DefaultLiveReloadAddr
	}
	if cfg.Watch.Quiet == 0 {
		cfg.Watch.Quiet = DefaultQuiet
	}
	if cfg.Watch.MaxDelay == 0 {
		cfg.Watch.MaxDelay = DefaultMaxDelay
	}
	if cfg.Compiler.Binary == "" {
		cfg.Compiler.Binary = DefaultCompiler
	}
	if cfg.Compiler.Timeout == 0 {
		cfg.Compiler.Timeout = DefaultCompileTimeout
	}
	if cfg.Notify.Subject == "" {
		cfg.Notify.Subject = DefaultNATSSubject
	}
	if cfg.Notify.ConnectAttempts <= 0 {
		cfg.Notify.ConnectAttempts = DefaultNATSAttempts
	}
	if cfg.History.Path == "" {
		cfg.History.Path = DefaultHistoryPath
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevelInfo
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatText
	}
}
