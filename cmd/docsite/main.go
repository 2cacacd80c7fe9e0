package main

import (
	stdErrors "errors"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docsite/cmd/docsite/commands"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := &commands.Global{Out: os.Stdout}
	ctx := kong.Parse(cli,
		kong.Name("docsite"),
		kong.Description("Build, check, serve and publish an engineering-standards documentation site."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	err := ctx.Run(global, cli)
	if err == nil {
		return
	}
	var exit commands.ExitError
	if stdErrors.As(err, &exit) {
		os.Exit(exit.Code)
	}
	errors.NewCLIErrorAdapter(cli.Verbose, nil).HandleError(err)
}
