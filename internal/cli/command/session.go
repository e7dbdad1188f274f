// Package command provides CLI command definitions for sesskeep-cli.
package command

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sesskeep-go/internal/cli/connection"
	"github.com/yndnr/sesskeep-go/internal/cli/output"
)

// sessionView mirrors the server's session representation.
type sessionView struct {
	ID             string         `json:"id"`
	State          string         `json:"state"`
	CreatedAt      time.Time      `json:"created_at"`
	LastAccessedAt time.Time      `json:"last_accessed_at"`
	MaxIdleSeconds int64          `json:"max_idle_seconds"`
	Attributes     map[string]any `json:"attributes,omitempty"`
}

// SessionCommand returns the session subcommand group.
func SessionCommand() *cli.Command {
	return &cli.Command{
		Name:    "session",
		Aliases: []string{"sess"},
		Usage:   "Manage sessions",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a new session",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:    "max-idle",
						Aliases: []string{"i"},
						Usage:   "Idle timeout (e.g., 30m, 2h); 0 uses the server default",
					},
					&cli.StringSliceFlag{
						Name:    "attr",
						Aliases: []string{"a"},
						Usage:   "Session attributes as KEY=VALUE pairs",
					},
				},
				Action: sessionCreate,
			},
			{
				Name:      "get",
				Usage:     "Get session details",
				ArgsUsage: "SESSION_ID",
				Action:    sessionGet,
			},
			{
				Name:      "touch",
				Usage:     "Refresh a session's idle window",
				ArgsUsage: "SESSION_ID",
				Action:    sessionTouch,
			},
			{
				Name:      "rekey",
				Usage:     "Rotate a session's identifier",
				ArgsUsage: "SESSION_ID",
				Action:    sessionRekey,
			},
			{
				Name:      "revoke",
				Usage:     "Revoke a session",
				ArgsUsage: "SESSION_ID",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Skip confirmation",
					},
				},
				Action: sessionRevoke,
			},
			{
				Name:      "set-attr",
				Usage:     "Set a session attribute",
				ArgsUsage: "SESSION_ID KEY VALUE",
				Action:    sessionSetAttr,
			},
			{
				Name:      "del-attr",
				Usage:     "Delete a session attribute",
				ArgsUsage: "SESSION_ID KEY",
				Action:    sessionDelAttr,
			},
		},
	}
}

func sessionCreate(c *cli.Context) error {
	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	body := map[string]any{}
	if idle := c.Duration("max-idle"); idle != 0 {
		body["max_idle_seconds"] = int64(idle.Seconds())
	}
	if attrFlags := c.StringSlice("attr"); len(attrFlags) > 0 {
		attrs := make(map[string]any)
		for _, a := range attrFlags {
			key, value, found := strings.Cut(a, "=")
			if !found {
				return fmt.Errorf("invalid attribute %q, expected KEY=VALUE", a)
			}
			attrs[key] = value
		}
		body["attributes"] = attrs
	}

	resp, err := client.Post(ctx, "/v1/sessions", body)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var view sessionView
	if err := connection.ParseResponse(resp, &view); err != nil {
		return err
	}

	flags := ParseGlobalFlags(c)
	if output.Format(flags.Output) != output.FormatTable {
		formatter := output.NewFormatter(output.Format(flags.Output), flags.Wide)
		return formatter.Format(os.Stdout, view)
	}

	fmt.Printf("Session created:\n")
	fmt.Printf("  Session ID: %s\n", view.ID)
	fmt.Printf("  Max idle:   %s\n", time.Duration(view.MaxIdleSeconds)*time.Second)
	return nil
}

func sessionGet(c *cli.Context) error {
	sessionID := c.Args().First()
	if sessionID == "" {
		return fmt.Errorf("session ID required")
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := client.Get(ctx, "/v1/sessions/"+sessionID)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var view sessionView
	if err := connection.ParseResponse(resp, &view); err != nil {
		return err
	}

	flags := ParseGlobalFlags(c)
	formatter := output.NewFormatter(output.Format(flags.Output), flags.Wide)
	return formatter.Format(os.Stdout, view)
}

func sessionTouch(c *cli.Context) error {
	sessionID := c.Args().First()
	if sessionID == "" {
		return fmt.Errorf("session ID required")
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := client.Post(ctx, "/v1/sessions/"+sessionID+"/touch", nil)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result struct {
		LastAccessedAt time.Time `json:"last_accessed_at"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	fmt.Printf("Session %s touched, last access %s.\n",
		truncateID(sessionID), result.LastAccessedAt.Format(time.RFC3339))
	return nil
}

func sessionRekey(c *cli.Context) error {
	sessionID := c.Args().First()
	if sessionID == "" {
		return fmt.Errorf("session ID required")
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := client.Post(ctx, "/v1/sessions/"+sessionID+"/rekey", nil)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result struct {
		OldSessionID string      `json:"old_session_id"`
		Session      sessionView `json:"session"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	fmt.Printf("Session rekeyed:\n")
	fmt.Printf("  Old ID: %s\n", result.OldSessionID)
	fmt.Printf("  New ID: %s\n", result.Session.ID)
	return nil
}

func sessionRevoke(c *cli.Context) error {
	sessionID := c.Args().First()
	if sessionID == "" {
		return fmt.Errorf("session ID required")
	}

	if !c.Bool("force") {
		fmt.Printf("Are you sure you want to revoke session '%s'? [y/N]: ", truncateID(sessionID))
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "y" && confirm != "Y" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := client.Delete(ctx, "/v1/sessions/"+sessionID)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result struct {
		Revoked bool `json:"revoked"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	if result.Revoked {
		fmt.Printf("Session %s revoked.\n", truncateID(sessionID))
	} else {
		fmt.Printf("Session %s was already gone.\n", truncateID(sessionID))
	}
	return nil
}

func sessionSetAttr(c *cli.Context) error {
	sessionID := c.Args().Get(0)
	key := c.Args().Get(1)
	value := c.Args().Get(2)
	if sessionID == "" || key == "" {
		return fmt.Errorf("usage: session set-attr SESSION_ID KEY VALUE")
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := client.Put(ctx, "/v1/sessions/"+sessionID+"/attributes/"+key, map[string]any{
		"value": value,
	})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	if err := connection.ParseResponse(resp, nil); err != nil {
		return err
	}

	fmt.Printf("Attribute %q set on session %s.\n", key, truncateID(sessionID))
	return nil
}

func sessionDelAttr(c *cli.Context) error {
	sessionID := c.Args().Get(0)
	key := c.Args().Get(1)
	if sessionID == "" || key == "" {
		return fmt.Errorf("usage: session del-attr SESSION_ID KEY")
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := client.Delete(ctx, "/v1/sessions/"+sessionID+"/attributes/"+key)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	if err := connection.ParseResponse(resp, nil); err != nil {
		return err
	}

	fmt.Printf("Attribute %q removed from session %s.\n", key, truncateID(sessionID))
	return nil
}

// truncateID shortens a session ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:12] + "..."
}
