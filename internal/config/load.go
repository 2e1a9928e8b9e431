package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/whatisjasongoldstein/beagle/internal/foundation/errors"
)

// EnvFiles are loaded, when present, before the config file is expanded.
// Variables already set in the process environment win.
var EnvFiles = []string{".env", ".env.local"}

// Environment variables that override file values.
const (
	EnvSrc       = "BEAGLE_SRC"
	EnvDist      = "BEAGLE_DIST"
	EnvURLPrefix = "BEAGLE_URL_PREFIX"
	EnvNATSURL   = "BEAGLE_NATS_URL"
)

// Load reads path (a missing file yields the defaults), applies environment
// overrides, normalizes and validates the result.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case stderrors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithContext("path", path).Build()
	default:
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse config file").
				WithContext("path", path).Build()
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEnvFiles() error {
	for _, name := range EnvFiles {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "failed to load env file").
				WithContext("path", name).Build()
		}
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvSrc); v != "" {
		cfg.Src = v
	}
	if v := os.Getenv(EnvDist); v != "" {
		cfg.Dist = v
	}
	if v := os.Getenv(EnvURLPrefix); v != "" {
		cfg.URLPrefix = v
	}
	if v := os.Getenv(EnvNATSURL); v != "" {
		cfg.Notify.NATSURL = v
	}
}

// Normalize canonicalizes enumerations and the URL prefix. It is safe to call
// again after flags have been applied.
func (c *Config) Normalize() error {
	level, err := logLevels.Parse(string(c.Logging.Level))
	if err != nil {
		return errors.ConfigError(err.Error()).WithContext("field", "logging.level").Build()
	}
	format, err := logFormats.Parse(string(c.Logging.Format))
	if err != nil {
		return errors.ConfigError(err.Error()).WithContext("field", "logging.format").Build()
	}
	c.Logging.Level = level
	c.Logging.Format = format
	c.URLPrefix = NormalizePrefix(c.URLPrefix)
	if strings.EqualFold(strings.TrimSpace(c.History.Path), HistoryOff) {
		c.History.Path = ""
	}
	return nil
}

// NormalizePrefix returns prefix with exactly one leading and one trailing slash.
func NormalizePrefix(prefix string) string {
	p := strings.Trim(strings.TrimSpace(prefix), "/")
	if p == "" {
		return "/"
	}
	return "/" + p + "/"
}
