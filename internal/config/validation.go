package config

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/whatisjasongoldstein/beagle/internal/foundation/errors"
	"github.com/whatisjasongoldstein/beagle/internal/glob"
)

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateRequiredDirs(); err != nil {
		return err
	}
	for _, p := range c.TemplatePatterns {
		if _, err := glob.Compile(p); err != nil {
			return invalid("template_patterns", "invalid template pattern").WithCause(err).Build()
		}
	}
	if c.Watch.Quiet < 0 || c.Watch.MaxDelay < 0 || c.Watch.PollInterval < 0 {
		return invalid("watch", "durations must not be negative").Build()
	}
	if c.Watch.MaxDelay < c.Watch.Quiet {
		return invalid("watch.max_delay", "max_delay must be at least quiet").Build()
	}
	if c.Compiler.Timeout < 0 {
		return invalid("compiler.timeout", "timeout must not be negative").Build()
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Src) == "" {
		return invalid("src", "src must not be empty").Build()
	}
	if strings.TrimSpace(c.Dist) == "" {
		return invalid("dist", "dist must not be empty").Build()
	}
	src, err := filepath.Abs(c.Src)
	if err != nil {
		return invalid("src", "cannot resolve src").WithCause(err).Build()
	}
	dist, err := filepath.Abs(c.Dist)
	if err != nil {
		return invalid("dist", "cannot resolve dist").WithCause(err).Build()
	}
	if src == dist {
		return invalid("dist", "dist must differ from src").Build()
	}
	if rel, err := filepath.Rel(dist, src); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return invalid("dist", "dist must not contain src").Build()
	}
	return nil
}

func (c *Config) validateRequiredDirs() error {
	for _, d := range c.RequiredDirs {
		clean := path.Clean(filepath.ToSlash(d))
		if d == "" || path.IsAbs(clean) || clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
			return invalid("required_dirs", "required dirs must be relative paths inside dist").
				WithContext("path", d).Build()
		}
	}
	return nil
}

func invalid(field, msg string) *errors.ErrorBuilder {
	return errors.ConfigError(msg).WithContext("field", field)
}
