package main

import (
	"os"

	"github.com/yndnr/sesskeep-go/internal/cli/command"
)

// Build information, set via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	command.Version = version
	command.Commit = commit
	command.BuildTime = buildTime

	app := command.App()
	if err := app.Run(os.Args); err != nil {
		command.PrintError("%v", err)
		os.Exit(1)
	}
}
