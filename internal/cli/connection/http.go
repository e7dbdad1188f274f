package connection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yndnr/sesskeep-go/internal/infra/tlsroots"
)

// HTTPClient provides HTTP communication with a SessKeep server.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a client for the given server address. An
// address without a scheme defaults to http://.
func NewHTTPClient(server string) *HTTPClient {
	baseURL := server
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	return &HTTPClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewHTTPClientWithCA creates a client that additionally trusts the CA
// certificate at caCertFile when talking to an HTTPS server.
func NewHTTPClientWithCA(server, caCertFile string) (*HTTPClient, error) {
	c := NewHTTPClient(server)

	pool, err := tlsroots.NewPool()
	if err != nil {
		return nil, fmt.Errorf("load system roots: %w", err)
	}
	if err := pool.AddCertFile(caCertFile); err != nil {
		return nil, fmt.Errorf("load ca cert: %w", err)
	}

	c.client.Transport = &http.Transport{
		TLSClientConfig: pool.TLSConfig(),
	}
	return c, nil
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, path string) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with an optional JSON body.
func (c *HTTPClient) Post(ctx context.Context, path string, body any) (*http.Response, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

// Put performs a PUT request with an optional JSON body.
func (c *HTTPClient) Put(ctx context.Context, path string, body any) (*http.Response, error) {
	return c.do(ctx, http.MethodPut, path, body)
}

// Delete performs a DELETE request.
func (c *HTTPClient) Delete(ctx context.Context, path string) (*http.Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", "sesskeep-cli/1.0")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.client.Do(req)
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// ParseResponse parses a JSON response envelope, unwrapping the data
// field into target. Error responses become Go errors carrying the
// server's error code.
func ParseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	var env struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details string          `json:"details"`
		Data    json.RawMessage `json:"data"`
	}

	if resp.StatusCode >= 400 {
		if err := json.NewDecoder(resp.Body).Decode(&env); err == nil && env.Message != "" {
			if env.Details != "" {
				return fmt.Errorf("[%s] %s: %s", env.Code, env.Message, env.Details)
			}
			return fmt.Errorf("[%s] %s", env.Code, env.Message)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, target); err != nil {
		return fmt.Errorf("parse response data: %w", err)
	}
	return nil
}
