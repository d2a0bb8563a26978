// Package httpx provides the HTTP client used for Scratch API requests.
//
// The Client in this package handles:
//   - User-Agent headers
//   - Whole-request timeouts
//   - Optional SOCKS5 proxy routing (Tor)
//   - Non-OK responses as typed *StatusError values
//
// # Basic Usage
//
//	client := httpx.NewClient(httpx.Config{})
//
//	// Fetch a project payload
//	body, err := client.Get(ctx, "https://projects.scratch.mit.edu/104")
//
// # Status Errors
//
// Non-OK responses are returned as *StatusError so callers can decide
// whether the failure is worth retrying:
//
//	var statusErr *httpx.StatusError
//	if errors.As(err, &statusErr) && statusErr.StatusCode == 404 {
//	    // project does not exist (right now)
//	}
//
// # Proxy Routing
//
// Setting Config.ProxyAddr routes all requests from that client through
// a SOCKS5 proxy; the explore traffic uses a separate proxied client so
// project downloads stay direct.
package httpx
