// Package command provides CLI command definitions for sesskeep-cli.
package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sesskeep-go/internal/cli/connection"
)

// Build information, set via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "sesskeep-cli",
		Usage:   "SessKeep command-line management tool",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildTime),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			SessionCommand(),
			SystemCommand(),
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "SessKeep server address (e.g., localhost:5086)",
			EnvVars: []string{"SESSKEEP_SERVER"},
			Value:   "localhost:5086",
		},
		&cli.StringFlag{
			Name:    "ca-cert",
			Usage:   "Additional CA certificate file for HTTPS servers",
			EnvVars: []string{"SESSKEEP_CA_CERT"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable verbose output",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server string
	CACert string

	Output string // table, json, yaml
	Wide   bool

	Verbose bool
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Server:  c.String("server"),
		CACert:  c.String("ca-cert"),
		Output:  c.String("output"),
		Wide:    c.Bool("wide"),
		Verbose: c.Bool("verbose"),
	}
}

// EnsureConnected builds the HTTP client from the global flags.
func EnsureConnected(c *cli.Context) (*connection.HTTPClient, error) {
	flags := ParseGlobalFlags(c)

	if flags.CACert != "" {
		return connection.NewHTTPClientWithCA(flags.Server, flags.CACert)
	}
	return connection.NewHTTPClient(flags.Server), nil
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
