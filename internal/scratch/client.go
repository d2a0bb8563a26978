package scratch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	httpx "github.com/scratchkit/scratch-downloader/internal/http"
	"github.com/scratchkit/scratch-downloader/internal/model"
	"github.com/scratchkit/scratch-downloader/internal/scratch/dto"
)

// Default endpoint bases, overridable through Config for tests and
// self-hosted mirrors.
const (
	DefaultAPIBase     = "https://api.scratch.mit.edu"
	DefaultProjectHost = "https://projects.scratch.mit.edu"
)

// Config controls which endpoints a Client talks to.
type Config struct {
	// APIBase is the metadata/search service root.
	APIBase string

	// ProjectHost serves project payloads for credentialed requests.
	ProjectHost string

	// FallbackHost serves project payloads without a credential. When
	// empty the ProjectHost is reused without a token.
	FallbackHost string

	// Timeout bounds each request issued by the client.
	Timeout time.Duration

	// HTTP carries project and metadata traffic. Required in practice;
	// a default client is built when nil.
	HTTP *httpx.Client

	// ExploreHTTP carries explore traffic, typically through the Tor
	// proxy. Falls back to HTTP when nil.
	ExploreHTTP *httpx.Client
}

// Client issues requests against the Scratch services: metadata
// resolution, project payload fetches and explore pagination.
//
// Example usage:
//
//	client := scratch.NewClient(scratch.Config{Timeout: time.Second})
//
//	info, err := client.Resolve(ctx, 104)
//	if err == nil {
//	    body, err := client.Fetch(ctx, client.ProjectURL(104, info.Token), 0)
//	    ...
//	}
type Client struct {
	apiBase      string
	projectHost  string
	fallbackHost string
	timeout      time.Duration
	http         *httpx.Client
	explore      *httpx.Client
}

// NewClient creates a Client, filling unset fields with defaults.
func NewClient(cfg Config) *Client {
	if cfg.APIBase == "" {
		cfg.APIBase = DefaultAPIBase
	}
	if cfg.ProjectHost == "" {
		cfg.ProjectHost = DefaultProjectHost
	}
	if cfg.FallbackHost == "" {
		cfg.FallbackHost = cfg.ProjectHost
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.HTTP == nil {
		cfg.HTTP = httpx.NewClient(httpx.Config{})
	}
	if cfg.ExploreHTTP == nil {
		cfg.ExploreHTTP = cfg.HTTP
	}

	return &Client{
		apiBase:      cfg.APIBase,
		projectHost:  cfg.ProjectHost,
		fallbackHost: cfg.FallbackHost,
		timeout:      cfg.Timeout,
		http:         cfg.HTTP,
		explore:      cfg.ExploreHTTP,
	}
}

// Resolve fetches the project document for id: the access token for the
// credentialed payload URL plus the descriptive fields for the dataset.
func (c *Client) Resolve(ctx context.Context, id model.ProjectID) (*model.ProjectInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := c.http.Get(ctx, fmt.Sprintf("%s/projects/%d", c.apiBase, id))
	if err != nil {
		return nil, fmt.Errorf("resolve project %d: %w", id, err)
	}

	var jp dto.JSONProject
	if err := json.Unmarshal(body, &jp); err != nil {
		return nil, fmt.Errorf("resolve project %d: %w", id, err)
	}

	return jp.ToProjectInfo(), nil
}

// ProjectURL returns the credentialed payload URL for id.
func (c *Client) ProjectURL(id model.ProjectID, token string) string {
	return fmt.Sprintf("%s/%d?token=%s", c.projectHost, id, url.QueryEscape(token))
}

// FallbackURL returns the public payload URL for id, used when
// credential resolution or the credentialed request fails.
func (c *Client) FallbackURL(id model.ProjectID) string {
	return fmt.Sprintf("%s/%d", c.fallbackHost, id)
}

// Fetch downloads raw payload bytes from rawURL. A non-positive timeout
// falls back to the client's configured timeout.
func (c *Client) Fetch(ctx context.Context, rawURL string, timeout time.Duration) ([]byte, error) {
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return c.http.Get(ctx, rawURL)
}

// Explore fetches one page of the explore listing and returns the
// project IDs it contains. Entries without a positive id are skipped.
func (c *Client) Explore(ctx context.Context, query, mode, language string, limit, offset int) ([]model.ProjectID, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	exploreURL := fmt.Sprintf("%s/explore/projects?q=%s&mode=%s&language=%s&limit=%d&offset=%d",
		c.apiBase, url.QueryEscape(query), url.QueryEscape(mode), url.QueryEscape(language), limit, offset)

	body, err := c.explore.Get(ctx, exploreURL)
	if err != nil {
		return nil, err
	}

	var page []dto.JSONProject
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("explore page at offset %d: %w", offset, err)
	}

	ids := make([]model.ProjectID, 0, len(page))
	for _, p := range page {
		if p.ID > 0 {
			ids = append(ids, model.ProjectID(p.ID))
		}
	}

	return ids, nil
}
