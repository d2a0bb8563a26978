package httpx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// StatusError reports a response with a non-OK status code. It is a
// transient condition for retry purposes: project servers routinely
// answer 404/5xx for IDs that resolve moments later.
type StatusError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
}

// Config controls how a Client talks to the Scratch services.
type Config struct {
	// UserAgent is sent with every request. Defaults to
	// "scratch-downloader".
	UserAgent string

	// Timeout is the whole-request ceiling applied by the underlying
	// client, independent of per-attempt context deadlines. Defaults to
	// 60 seconds.
	Timeout time.Duration

	// ProxyAddr, when set, routes requests through a SOCKS5 proxy at
	// host:port. Used for the Tor routing of explore traffic.
	ProxyAddr string
}

// Client wraps HTTP operations with scratch-downloader configuration.
//
// Client provides:
//   - Configured User-Agent header
//   - Timeout handling
//   - Optional SOCKS5 proxy routing
//   - Status code checking with typed errors
//
// Example usage:
//
//	client := httpx.NewClient(httpx.Config{})
//
//	body, err := client.Get(ctx, "https://api.scratch.mit.edu/projects/104")
//	var statusErr *httpx.StatusError
//	if errors.As(err, &statusErr) {
//	    fmt.Println("server said", statusErr.StatusCode)
//	}
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a new HTTP client.
//
// With a zero Config the client uses a 60 second timeout, the
// "scratch-downloader" User-Agent and no proxy.
func NewClient(cfg Config) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = "scratch-downloader"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	client := &http.Client{Timeout: cfg.Timeout}
	if cfg.ProxyAddr != "" {
		client.Transport = &http.Transport{
			Proxy: http.ProxyURL(&url.URL{Scheme: "socks5", Host: cfg.ProxyAddr}),
		}
	}

	return &Client{
		httpClient: client,
		userAgent:  cfg.UserAgent,
	}
}

// Get performs a GET request and returns the response body as bytes.
//
// The request includes the configured User-Agent header and honors the
// context's deadline and cancellation.
//
// Returns an error if:
//   - The request fails
//   - The response status is not 200 OK (a *StatusError)
//   - Reading the body fails
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, URL: rawURL}
	}

	return io.ReadAll(resp.Body)
}

// GetString performs a GET request and returns the response body as a string.
//
// This is a convenience wrapper around Get for small text responses.
func (c *Client) GetString(ctx context.Context, rawURL string) (string, error) {
	body, err := c.Get(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
