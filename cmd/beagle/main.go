// Command beagle renders a static site from the actions declared in its
// source tree and serves a live preview while editing.
package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"github.com/whatisjasongoldstein/beagle/cmd/beagle/commands"
	"github.com/whatisjasongoldstein/beagle/internal/foundation/errors"
	"github.com/whatisjasongoldstein/beagle/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := &commands.Global{}
	ctx := kong.Parse(cli,
		kong.Name("beagle"),
		kong.Description("Static site build engine with live preview"),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
	)
	if err := ctx.Run(global, cli); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
