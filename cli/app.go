package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/localstack/tflocal/options"
)

// Version is the tflocal release number. Overridden at build time via
// -ldflags "-X github.com/localstack/tflocal/cli.Version=...".
var Version = "0.1.0"

// NewApp creates the tflocal CLI application. Flag parsing is disabled so the
// full argument list passes through to the wrapped tool untouched.
func NewApp(opts *options.TflocalOptions) *cli.App {
	app := cli.NewApp()
	app.Name = "tflocal"
	app.Usage = "Thin wrapper around terraform that points every AWS call at LocalStack."
	app.Version = Version
	app.Writer = opts.Writer
	app.ErrWriter = opts.ErrWriter
	app.SkipFlagParsing = true
	app.HideHelpCommand = true
	app.Action = func(ctx *cli.Context) error {
		return Run(opts, ctx.Args().Slice())
	}

	return app
}

func printWrapperVersion(opts *options.TflocalOptions) {
	fmt.Fprintf(opts.Writer, "tflocal %s (wrapping %s)\n", Version, opts.TerraformPath)
}
