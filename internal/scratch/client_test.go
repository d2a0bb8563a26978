package scratch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpx "github.com/scratchkit/scratch-downloader/internal/http"
	"github.com/scratchkit/scratch-downloader/internal/model"
)

const projectDocument = `{
	"id": 104,
	"title": "Weekend Animation",
	"project_token": "1700000000_abcdef",
	"author": {"id": 7, "username": "mres"},
	"history": {
		"created": "2013-05-08T21:04:36.000Z",
		"modified": "2014-01-02T03:04:05.000Z",
		"shared": "2013-05-09T00:00:00.000Z"
	},
	"remix": {"parent": 100, "root": 90}
}`

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(Config{
		APIBase:     srv.URL,
		ProjectHost: srv.URL + "/dl",
		Timeout:     5 * time.Second,
	})
}

func TestClientResolve(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/projects/104" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(projectDocument))
	}))

	info, err := client.Resolve(context.Background(), 104)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if info.ID != 104 {
		t.Errorf("ID = %d, want 104", info.ID)
	}
	if info.Token != "1700000000_abcdef" {
		t.Errorf("Token = %q, want %q", info.Token, "1700000000_abcdef")
	}
	if info.Title != "Weekend Animation" {
		t.Errorf("Title = %q, want %q", info.Title, "Weekend Animation")
	}
	if info.Author != "mres" {
		t.Errorf("Author = %q, want %q", info.Author, "mres")
	}

	wantCreated := time.Date(2013, time.May, 8, 21, 4, 36, 0, time.UTC)
	if !info.CreatedAt.Equal(wantCreated) {
		t.Errorf("CreatedAt = %v, want %v", info.CreatedAt, wantCreated)
	}

	if info.RemixParentID == nil || *info.RemixParentID != 100 {
		t.Errorf("RemixParentID = %v, want 100", info.RemixParentID)
	}
	if info.RemixRootID == nil || *info.RemixRootID != 90 {
		t.Errorf("RemixRootID = %v, want 90", info.RemixRootID)
	}
}

func TestClientResolveNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := client.Resolve(context.Background(), 42)
	if err == nil {
		t.Fatal("Resolve() expected error for missing project")
	}

	var statusErr *httpx.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Resolve() error = %v, want *httpx.StatusError", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want %d", statusErr.StatusCode, http.StatusNotFound)
	}
}

func TestClientProjectURLs(t *testing.T) {
	client := NewClient(Config{
		APIBase:     "https://api.example.test",
		ProjectHost: "https://projects.example.test",
	})

	got := client.ProjectURL(104, "tok en")
	want := "https://projects.example.test/104?token=tok+en"
	if got != want {
		t.Errorf("ProjectURL() = %q, want %q", got, want)
	}

	got = client.FallbackURL(104)
	want = "https://projects.example.test/104"
	if got != want {
		t.Errorf("FallbackURL() = %q, want %q", got, want)
	}
}

func TestClientFetch(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"targets": []}`))
	}))

	body, err := client.Fetch(context.Background(), client.FallbackURL(104), 0)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(body) != `{"targets": []}` {
		t.Errorf("Fetch() body = %q", body)
	}
}

func TestClientExplore(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/explore/projects" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}

		q := r.URL.Query()
		checks := map[string]string{
			"q":        "pac man",
			"mode":     "trending",
			"language": "en",
			"limit":    "40",
			"offset":   "30",
		}
		for key, want := range checks {
			if got := q.Get(key); got != want {
				t.Errorf("query %s = %q, want %q", key, got, want)
			}
		}

		w.Write([]byte(`[{"id": 11}, {"id": 0}, {"id": 23}]`))
	}))

	ids, err := client.Explore(context.Background(), "pac man", "trending", "en", 40, 30)
	if err != nil {
		t.Fatalf("Explore() error = %v", err)
	}

	want := []model.ProjectID{11, 23}
	if len(ids) != len(want) {
		t.Fatalf("Explore() returned %d ids, want %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %d, want %d", i, ids[i], want[i])
		}
	}
}

func TestClientExploreBadPayload(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not": "a list"}`))
	}))

	_, err := client.Explore(context.Background(), "*", "popular", "en", 40, 0)
	if err == nil {
		t.Fatal("Explore() expected error for non-list payload")
	}
}
