package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whatisjasongoldstein/beagle/internal/foundation/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// chdir moves into a fresh directory so .env lookups stay isolated.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	dir := chdir(t)

	cfg, err := Load(filepath.Join(dir, "beagle.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSrc, cfg.Src)
	assert.Equal(t, DefaultDist, cfg.Dist)
	assert.Equal(t, "/", cfg.URLPrefix)
	assert.Equal(t, []string{"css", "js"}, cfg.RequiredDirs)
	assert.Equal(t, []string{"**/*.html"}, cfg.TemplatePatterns)
	assert.Equal(t, DefaultQuiet, cfg.Watch.Quiet)
	assert.Equal(t, DefaultMaxDelay, cfg.Watch.MaxDelay)
	assert.Equal(t, DefaultCompileTimeout, cfg.Compiler.Timeout)
	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
	assert.True(t, cfg.Server.LiveReloadEnabled())
}

func TestLoadFileExpandsEnvAndIgnoresSiteKeys(t *testing.T) {
	dir := chdir(t)
	t.Setenv("SITE_OUT", "public")
	path := filepath.Join(dir, "beagle.yaml")
	writeFile(t, path, `
dist: ${SITE_OUT}
url_prefix: blog
required_dirs: []
server:
  live_reload: false
watch:
  quiet: 100ms
  max_delay: 1s
  poll_interval: 1m
compiler:
  timeout: 5s
logging:
  level: DEBUG
actions:
  - name: index
    commands: []
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "public", cfg.Dist)
	assert.Equal(t, "/blog/", cfg.URLPrefix)
	assert.Empty(t, cfg.RequiredDirs)
	assert.False(t, cfg.Server.LiveReloadEnabled())
	assert.Equal(t, 100*time.Millisecond, cfg.Watch.Quiet)
	assert.Equal(t, time.Minute, cfg.Watch.PollInterval)
	assert.Equal(t, 5*time.Second, cfg.Compiler.Timeout)
	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	dir := chdir(t)
	path := filepath.Join(dir, "beagle.yaml")
	writeFile(t, path, "src: site\ndist: out\n")
	t.Setenv(EnvDist, "elsewhere")
	t.Setenv(EnvURLPrefix, "/docs")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "site", cfg.Src)
	assert.Equal(t, "elsewhere", cfg.Dist)
	assert.Equal(t, "/docs/", cfg.URLPrefix)
}

func TestLoadDotEnvDoesNotOverrideProcessEnv(t *testing.T) {
	dir := chdir(t)
	writeFile(t, filepath.Join(dir, ".env"), "BEAGLE_SRC=from-dotenv\nBEAGLE_DIST=dotenv-dist\n")
	t.Setenv(EnvDist, "process-dist")
	// Registered for cleanup so the value loaded from .env does not leak.
	t.Setenv(EnvSrc, "")
	require.NoError(t, os.Unsetenv(EnvSrc))

	cfg, err := Load(filepath.Join(dir, "beagle.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Src)
	assert.Equal(t, "process-dist", cfg.Dist)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	cases := map[string]string{
		"bad yaml":        "dist: [unterminated",
		"same dirs":       "src: site\ndist: site\n",
		"dist above src":  "src: out/site\ndist: out\n",
		"bad level":       "logging:\n  level: shouty\n",
		"empty pattern":   "template_patterns: [' ']\n",
		"escaping dir":    "required_dirs: ['../x']\n",
		"max below quiet": "watch:\n  quiet: 2s\n  max_delay: 1s\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			dir := chdir(t)
			path := filepath.Join(dir, "beagle.yaml")
			writeFile(t, path, content)

			_, err := Load(path)
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, errors.CategoryConfig), "got %v", err)
		})
	}
}

func TestNormalizePrefix(t *testing.T) {
	assert.Equal(t, "/", NormalizePrefix(""))
	assert.Equal(t, "/", NormalizePrefix("/"))
	assert.Equal(t, "/blog/", NormalizePrefix("blog"))
	assert.Equal(t, "/a/b/", NormalizePrefix("/a/b//"))
}

func TestWriteExample(t *testing.T) {
	dir := chdir(t)
	path := filepath.Join(dir, "beagle.yaml")
	require.NoError(t, WriteExample(path, false))

	err := WriteExample(path, false)
	require.Error(t, err)
	require.NoError(t, WriteExample(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dist", cfg.Dist)
	assert.Equal(t, "sassc", cfg.Compiler.Binary)
}

func TestHistoryOffAndNATSAttempts(t *testing.T) {
	dir := chdir(t)
	path := filepath.Join(dir, "beagle.yaml")
	writeFile(t, path, "history:\n  path: OFF\nnotify:\n  nats_url: nats://127.0.0.1:4222\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.History.Path)
	assert.Equal(t, DefaultNATSAttempts, cfg.Notify.ConnectAttempts)
	assert.Equal(t, DefaultNATSSubject, cfg.Notify.Subject)

	cfg, err = Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultHistoryPath, cfg.History.Path)
}

func TestHistoryPathResolvesAgainstSrc(t *testing.T) {
	cfg := Default()
	cfg.Src = "site"
	assert.Equal(t, filepath.Join("site", ".beagle", "history.db"), cfg.HistoryPath())

	abs := filepath.Join(t.TempDir(), "journal.db")
	cfg.History.Path = abs
	assert.Equal(t, abs, cfg.HistoryPath())

	cfg.History.Path = ":memory:"
	assert.Equal(t, ":memory:", cfg.HistoryPath())

	cfg.History.Path = ""
	assert.Empty(t, cfg.HistoryPath())
}
