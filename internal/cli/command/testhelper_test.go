package command

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
)

// mockServer creates a test HTTP server with custom handlers.
type mockServer struct {
	*httptest.Server
	handlers map[string]http.HandlerFunc
}

// newMockServer creates a new mock server.
func newMockServer() *mockServer {
	m := &mockServer{
		handlers: make(map[string]http.HandlerFunc),
	}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Find handler by path prefix match
		for pattern, handler := range m.handlers {
			if strings.HasPrefix(r.URL.Path, pattern) {
				handler(w, r)
				return
			}
		}
		http.NotFound(w, r)
	}))
	return m
}

// handle registers a handler for a path pattern.
func (m *mockServer) handle(pattern string, handler http.HandlerFunc) {
	m.handlers[pattern] = handler
}

// envelopeResponse writes a success envelope wrapping data.
func envelopeResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"code":      "OK",
		"message":   "Success",
		"timestamp": time.Now().UnixMilli(),
		"data":      data,
	})
}

// errorResponse writes an error envelope.
func errorResponse(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"code":      code,
		"message":   message,
		"timestamp": time.Now().UnixMilli(),
	})
}

// testContext creates a CLI context for testing with the mock server.
func testContext(server *mockServer, args ...string) *cli.Context {
	app := &cli.App{
		Name:  "test",
		Flags: globalFlags(),
	}

	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range app.Flags {
		f.Apply(set)
	}

	fullArgs := []string{"--server", server.URL}
	fullArgs = append(fullArgs, args...)
	set.Parse(fullArgs)

	return cli.NewContext(app, set, nil)
}

// makeTestContext creates a CLI context with extra non-global flags for
// testing subcommand actions directly.
func makeTestContext(server *mockServer, extraFlags map[string]any, args []string) *cli.Context {
	app := &cli.App{
		Name:  "test",
		Flags: globalFlags(),
	}

	allFlags := append([]cli.Flag{}, globalFlags()...)

	existingFlags := make(map[string]bool)
	for _, f := range allFlags {
		for _, name := range f.Names() {
			existingFlags[name] = true
		}
	}

	for name, val := range extraFlags {
		if existingFlags[name] {
			continue
		}
		switch v := val.(type) {
		case string:
			allFlags = append(allFlags, &cli.StringFlag{Name: name, Value: v})
		case int:
			allFlags = append(allFlags, &cli.IntFlag{Name: name, Value: v})
		case bool:
			allFlags = append(allFlags, &cli.BoolFlag{Name: name, Value: v})
		case time.Duration:
			allFlags = append(allFlags, &cli.DurationFlag{Name: name, Value: v})
		case []string:
			allFlags = append(allFlags, &cli.StringSliceFlag{Name: name})
		}
		existingFlags[name] = true
	}

	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range allFlags {
		f.Apply(set)
	}

	cliArgs := []string{"--server", server.URL}
	for name, val := range extraFlags {
		switch v := val.(type) {
		case string:
			if v != "" {
				cliArgs = append(cliArgs, "--"+name, v)
			}
		case int:
			if v != 0 {
				cliArgs = append(cliArgs, "--"+name, fmt.Sprintf("%d", v))
			}
		case bool:
			if v {
				cliArgs = append(cliArgs, "--"+name)
			}
		case time.Duration:
			if v != 0 {
				cliArgs = append(cliArgs, "--"+name, v.String())
			}
		case []string:
			for _, s := range v {
				cliArgs = append(cliArgs, "--"+name, s)
			}
		}
	}
	cliArgs = append(cliArgs, args...)

	set.Parse(cliArgs)

	return cli.NewContext(app, set, nil)
}

// sampleSessionView mirrors a server session response.
func sampleSessionView() map[string]any {
	return map[string]any{
		"id":               "sks-01jz0d3f8ke2x5m9q7t4bhw6rn",
		"state":            "started",
		"created_at":       time.Now().Add(-1 * time.Hour).Format(time.RFC3339Nano),
		"last_accessed_at": time.Now().Format(time.RFC3339Nano),
		"max_idle_seconds": 1800,
		"attributes":       map[string]any{"user": "alice"},
	}
}
