// Package command provides CLI command definitions for sesskeep-cli.
//
// This package defines all CLI commands using urfave/cli/v2:
//
//   - root.go: Root command and global flags
//   - session.go: Session subcommand group
//   - system.go: System subcommand group
//
// Commands follow a consistent pattern of parsing flags, calling the
// server's REST API, and formatting output.
package command
