package action

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/whatisjasongoldstein/beagle/internal/foundation/errors"
	"github.com/whatisjasongoldstein/beagle/internal/logfields"
)

// SiteFileNames are looked up at the root of src, in order.
var SiteFileNames = []string{"beagle.yaml", "beagle.yml", "beagle.hcl"}

// FileSource reads the site file from disk on every Discover.
type FileSource struct {
	src  string
	path string
	skip func(absDir string) bool
}

// FileSourceOption customizes a FileSource.
type FileSourceOption func(*FileSource)

// WithPath pins the site file instead of searching SiteFileNames.
func WithPath(path string) FileSourceOption {
	return func(s *FileSource) { s.path = path }
}

// WithSkip excludes directories from each globs.
func WithSkip(skip func(absDir string) bool) FileSourceOption {
	return func(s *FileSource) { s.skip = skip }
}

// NewFileSource returns a source reading the site file under src.
func NewFileSource(src string, opts ...FileSourceOption) *FileSource {
	s := &FileSource{src: src}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Locate returns the site file path in use.
func (s *FileSource) Locate() (string, error) {
	if s.path != "" {
		return s.path, nil
	}
	for _, name := range SiteFileNames {
		p := filepath.Join(s.src, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", errors.ConfigError("no site file found").
		WithContext("path", s.src).
		WithContext("expected", SiteFileNames).
		Build()
}

// Load reads and parses the site file.
func (s *FileSource) Load() (*SiteFile, error) {
	p, err := s.Locate()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "read site file").WithContext("path", p).Fatal().Build()
	}
	var site *SiteFile
	if filepath.Ext(p) == ".hcl" {
		site, err = ParseHCL(data, p)
	} else {
		site, err = ParseYAML(data)
	}
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "parse site file").WithContext("path", p).Fatal().Build()
	}
	return site, nil
}

func (s *FileSource) Discover(context.Context) ([]Action, error) {
	site, err := s.Load()
	if err != nil {
		return nil, err
	}
	actions, err := site.Compile(s.src, s.skip)
	if err != nil {
		return nil, err
	}
	slog.Debug("Discovered site file actions", slog.Int("count", len(actions)), logfields.Path(s.src))
	return actions, nil
}
