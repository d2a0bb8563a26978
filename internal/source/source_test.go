package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/scratchkit/scratch-downloader/internal/model"
	"github.com/scratchkit/scratch-downloader/internal/scratch"
)

func drain(t *testing.T, src Source) []model.ProjectID {
	t.Helper()

	var ids []model.ProjectID
	for {
		id, err := src.Next(context.Background())
		if errors.Is(err, ErrExhausted) {
			return ids
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		ids = append(ids, id)
	}
}

func TestSequenceSourceBounded(t *testing.T) {
	src := NewSequenceSource(100, 3)

	got := drain(t, src)
	want := []model.ProjectID{100, 101, 102}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ids = %v, want %v", got, want)
	}

	if _, err := src.Next(context.Background()); !errors.Is(err, ErrExhausted) {
		t.Errorf("Next() after exhaustion = %v, want ErrExhausted", err)
	}
}

func TestSequenceSourceUnbounded(t *testing.T) {
	src := NewSequenceSource(1, 0)

	for want := model.ProjectID(1); want <= 50; want++ {
		id, err := src.Next(context.Background())
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if id != want {
			t.Fatalf("Next() = %d, want %d", id, want)
		}
	}
}

func TestSequenceSourceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewSequenceSource(1, 0)
	if _, err := src.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Next() = %v, want context.Canceled", err)
	}
}

func TestRandomStart(t *testing.T) {
	for i := 0; i < 100; i++ {
		id := RandomStart()
		if id < randomStartMin || id > randomStartMax {
			t.Fatalf("RandomStart() = %d, outside [%d, %d]", id, randomStartMin, randomStartMax)
		}
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.txt")
	content := "# seed list\n104\n\n  abc\n-7\n0\n60917032\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := NewFileSource(path, nil)
	if err != nil {
		t.Fatalf("NewFileSource() error = %v", err)
	}

	got := drain(t, src)
	want := []model.ProjectID{104, 60917032}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ids = %v, want %v", got, want)
	}

	if _, err := src.Next(context.Background()); !errors.Is(err, ErrExhausted) {
		t.Errorf("Next() after exhaustion = %v, want ErrExhausted", err)
	}
}

func TestFileSourceMissing(t *testing.T) {
	if _, err := NewFileSource(filepath.Join(t.TempDir(), "nope.txt"), nil); err == nil {
		t.Fatal("NewFileSource() expected error for missing file")
	}
}

func newExploreSource(t *testing.T, count int64, handler http.HandlerFunc) *ExploreSource {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewExploreSource(ExploreConfig{
		Client: scratch.NewClient(scratch.Config{APIBase: srv.URL, Timeout: 5 * time.Second}),
		Count:  count,
	})
}

func TestExploreSourcePaging(t *testing.T) {
	var offsets []int
	src := newExploreSource(t, 5, func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		offsets = append(offsets, offset)
		switch offset {
		case 0:
			w.Write([]byte(`[{"id": 1}, {"id": 2}, {"id": 3}]`))
		case 30:
			w.Write([]byte(`[{"id": 4}, {"id": 5}, {"id": 6}]`))
		default:
			w.Write([]byte(`[]`))
		}
	})

	got := drain(t, src)
	want := []model.ProjectID{1, 2, 3, 4, 5}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ids = %v, want %v", got, want)
	}

	wantOffsets := []int{0, 30}
	if !reflect.DeepEqual(offsets, wantOffsets) {
		t.Errorf("offsets = %v, want %v", offsets, wantOffsets)
	}
}

func TestExploreSourceEmptyPageRewinds(t *testing.T) {
	var offsets []int
	src := newExploreSource(t, 1, func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		offsets = append(offsets, offset)
		if len(offsets) == 1 {
			w.Write([]byte(`[]`))
			return
		}
		w.Write([]byte(`[{"id": 9}]`))
	})

	var pauses []time.Duration
	src.sleep = func(ctx context.Context, d time.Duration) error {
		pauses = append(pauses, d)
		return nil
	}

	id, err := src.Next(context.Background())
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if id != 9 {
		t.Errorf("Next() = %d, want 9", id)
	}

	wantOffsets := []int{0, 0}
	if !reflect.DeepEqual(offsets, wantOffsets) {
		t.Errorf("offsets = %v, want %v", offsets, wantOffsets)
	}
	if !reflect.DeepEqual(pauses, []time.Duration{exploreEmptyPause}) {
		t.Errorf("pauses = %v, want [%v]", pauses, exploreEmptyPause)
	}
}

func TestExploreSourceErrorBackoff(t *testing.T) {
	var calls int
	src := newExploreSource(t, 0, func(w http.ResponseWriter, r *http.Request) {
		calls++
		switch calls {
		case 1, 2, 4:
			http.Error(w, "listing unavailable", http.StatusInternalServerError)
		case 3:
			w.Write([]byte(`[{"id": 7}]`))
		default:
			w.Write([]byte(`[{"id": 8}]`))
		}
	})

	var delays []time.Duration
	src.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	for _, want := range []model.ProjectID{7, 8} {
		id, err := src.Next(context.Background())
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if id != want {
			t.Errorf("Next() = %d, want %d", id, want)
		}
	}

	// The third delay proves the backoff carried over from the first
	// two failures instead of resetting after the good page.
	wantDelays := []time.Duration{
		750 * time.Millisecond,
		1500 * time.Millisecond,
		3 * time.Second,
	}
	if !reflect.DeepEqual(delays, wantDelays) {
		t.Errorf("delays = %v, want %v", delays, wantDelays)
	}
}

func TestExploreSourceOffsetWraps(t *testing.T) {
	src := newExploreSource(t, 0, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": 1}]`))
	})
	src.offset = exploreMaxOffset

	if _, err := src.Next(context.Background()); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if src.offset != 0 {
		t.Errorf("offset = %d, want 0 after wrapping", src.offset)
	}
}

func TestExploreSourceCancelledWhileBackingOff(t *testing.T) {
	src := newExploreSource(t, 0, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "listing unavailable", http.StatusInternalServerError)
	})

	ctx, cancel := context.WithCancel(context.Background())
	src.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	if _, err := src.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Next() = %v, want context.Canceled", err)
	}
}
