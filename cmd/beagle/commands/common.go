package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/whatisjasongoldstein/beagle/internal/config"
)

// Global carries process-wide state shared by every subcommand.
type Global struct {
	Logger *slog.Logger
	// Stdout receives user-facing output. Defaults to os.Stdout.
	Stdout io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"beagle.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Render the site once into dist"`
	Serve   ServeCmd   `cmd:"" help:"Build, watch for changes and serve a live preview"`
	Init    InitCmd    `cmd:"" help:"Scaffold a new site with a starter beagle.yaml"`
	History HistoryCmd `cmd:"" help:"List recent builds from the build journal"`
	Info    VersionCmd `cmd:"" name:"version" help:"Print version information"`
}

// AfterApply runs after flag parsing; it sets up a provisional logger that
// load replaces once the config file is read.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	if g != nil && g.Logger == nil {
		g.Logger = logger
	}
	return nil
}

// load reads the config file and installs the logger it describes. --verbose
// forces debug level.
func (c *CLI) load(g *Global) (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	if c.Verbose {
		cfg.Logging.Level = config.LogLevelDebug
	}
	logger := newLogger(os.Stderr, cfg.Logging)
	slog.SetDefault(logger)
	g.Logger = logger
	return cfg, nil
}

func newLogger(w io.Writer, lc config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: lc.Level.Slog()}
	if lc.Format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// SiteFlags are the path overrides shared by build and serve.
type SiteFlags struct {
	Clean bool   `help:"Empty dist before the first build"`
	Src   string `help:"Source directory (overrides config)" type:"path"`
	Dist  string `help:"Output directory (overrides config)" type:"path"`
}

// apply overrides cfg with any flags that were set and revalidates.
func (f SiteFlags) apply(cfg *config.Config) error {
	if f.Src != "" {
		cfg.Src = f.Src
	}
	if f.Dist != "" {
		cfg.Dist = f.Dist
	}
	return cfg.Validate()
}
