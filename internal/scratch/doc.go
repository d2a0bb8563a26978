// Package scratch talks to the Scratch web services.
//
// A Client resolves project metadata, downloads project payloads and
// walks the explore listing. All requests go through the shared HTTP
// layer, so they carry the configured User-Agent and surface non-200
// responses as status errors.
//
// # Resolving Projects
//
// Resolve fetches the project document from the metadata API. The
// document carries the access token required for the credentialed
// payload URL along with the fields recorded in the dataset:
//
//	info, err := client.Resolve(ctx, 104)
//	if err != nil {
//	    // project is unshared, deleted or the API is unreachable
//	}
//	url := client.ProjectURL(info.ID, info.Token)
//
// When resolution fails the payload may still be reachable through the
// public fallback URL:
//
//	url := client.FallbackURL(104)
//
// # Explore Pagination
//
// Explore returns one page of project IDs from the explore listing.
// Callers page through results by advancing the offset:
//
//	ids, err := client.Explore(ctx, "*", "popular", "en", 40, 0)
//
// Explore traffic can be routed through a separate HTTP client, which
// is how the Tor proxy is wired in without touching payload downloads.
package scratch
