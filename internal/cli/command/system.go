// Package command provides CLI command definitions for sesskeep-cli.
package command

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sesskeep-go/internal/cli/connection"
	"github.com/yndnr/sesskeep-go/internal/cli/output"
)

// SystemCommand returns the system subcommand group.
func SystemCommand() *cli.Command {
	return &cli.Command{
		Name:    "system",
		Aliases: []string{"sys"},
		Usage:   "System management commands",
		Subcommands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show server statistics",
				Action: systemStats,
			},
			{
				Name:   "health",
				Usage:  "Check server health",
				Action: systemHealth,
			},
		},
	}
}

func systemStats(c *cli.Context) error {
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := client.Get(ctx, "/v1/system/stats")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result struct {
		LiveSessions          int    `json:"live_sessions"`
		DefaultMaxIdleSeconds int64  `json:"default_max_idle_seconds"`
		Version               string `json:"version"`
		Commit                string `json:"commit"`
		GoVersion             string `json:"go_version"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	flags := ParseGlobalFlags(c)
	if output.Format(flags.Output) != output.FormatTable {
		formatter := output.NewFormatter(output.Format(flags.Output), flags.Wide)
		return formatter.Format(os.Stdout, result)
	}

	fmt.Printf("Server Statistics\n")
	fmt.Printf("=================\n\n")
	fmt.Printf("Live sessions:    %d\n", result.LiveSessions)
	fmt.Printf("Default max idle: %s\n", time.Duration(result.DefaultMaxIdleSeconds)*time.Second)
	fmt.Printf("Version:          %s (%s)\n", result.Version, result.Commit)
	fmt.Printf("Go version:       %s\n", result.GoVersion)
	return nil
}

func systemHealth(c *cli.Context) error {
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := client.Get(ctx, "/health")
	if err != nil {
		PrintError("Health check failed: %v", err)
		return fmt.Errorf("server unhealthy")
	}

	var result struct {
		Status  string `json:"status"`
		Version string `json:"version"`
		Uptime  string `json:"uptime"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	flags := ParseGlobalFlags(c)
	if output.Format(flags.Output) != output.FormatTable {
		formatter := output.NewFormatter(output.Format(flags.Output), flags.Wide)
		return formatter.Format(os.Stdout, result)
	}

	fmt.Printf("Status:  %s\n", result.Status)
	fmt.Printf("Version: %s\n", result.Version)
	fmt.Printf("Uptime:  %s\n", result.Uptime)
	return nil
}
