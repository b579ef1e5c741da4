package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/courseforge/cmd/courseforge/commands"
	"git.home.luguber.info/inful/courseforge/internal/config"
	ferrors "git.home.luguber.info/inful/courseforge/internal/foundation/errors"
	"git.home.luguber.info/inful/courseforge/internal/logfields"
	"git.home.luguber.info/inful/courseforge/internal/version"
)

func main() {
	// .env files feed the environment before flags are applied.
	envFile, envErr := config.LoadEnvFiles()

	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("courseforge"),
		kong.Description("Static site generator for course material."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	if envFile != "" {
		slog.Debug("Loaded environment file", slog.String("file", envFile))
	} else if envErr != nil && !os.IsNotExist(envErr) {
		slog.Warn("Failed to load environment file", logfields.Error(envErr))
	}

	err := parser.Run(&commands.Global{Logger: slog.Default(), Out: os.Stdout}, cli)
	if err != nil {
		adapter := ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default())
		os.Exit(adapter.Report(os.Stderr, err))
	}
}
