package sink

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/scratchkit/scratch-downloader/internal/model"
	"github.com/scratchkit/scratch-downloader/internal/session"
)

func newTestRecorder(t *testing.T) (*SessionRecorder, *session.Session) {
	t.Helper()

	root := t.TempDir()
	sess := session.New(filepath.Join(root, "downloads"), filepath.Join(root, "utemp"))
	if err := sess.Prepare(); err != nil {
		t.Fatal(err)
	}

	r, err := New(Config{Session: sess})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r, sess
}

func readDataset(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read dataset: %v", err)
	}
	return records
}

func TestSessionRecorder(t *testing.T) {
	r, sess := newTestRecorder(t)

	created := time.Date(2013, time.May, 8, 21, 4, 36, 0, time.UTC)
	row := model.NewMetadataRow("Weekend Animation", 104, "mres", created, created, nil, nil)

	ctx := context.Background()
	r.Record(ctx, &model.FetchOutcome{ID: 104, OK: true, Row: row})
	r.Record(ctx, &model.FetchOutcome{ID: 105, OK: true})
	r.Record(ctx, &model.FetchOutcome{ID: 106, Err: "HTTP 404: Not Found"})

	summary := r.Summary()
	if summary.Successes != 2 {
		t.Errorf("Successes = %d, want 2", summary.Successes)
	}
	if summary.Failures != 1 {
		t.Errorf("Failures = %d, want 1", summary.Failures)
	}
	if summary.Rows != 1 {
		t.Errorf("Rows = %d, want 1", summary.Rows)
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	success, err := os.ReadFile(sess.SuccessPath())
	if err != nil {
		t.Fatal(err)
	}
	if string(success) != "104\n105\n" {
		t.Errorf("success ledger = %q, want %q", success, "104\n105\n")
	}

	failure, err := os.ReadFile(sess.FailurePath())
	if err != nil {
		t.Fatal(err)
	}
	if string(failure) != "106\n" {
		t.Errorf("failure ledger = %q, want %q", failure, "106\n")
	}

	records := readDataset(t, sess.DatasetPath())
	if len(records) != 2 {
		t.Fatalf("dataset has %d records, want 2", len(records))
	}
	if !reflect.DeepEqual(records[0], model.DatasetHeader) {
		t.Errorf("header = %v, want %v", records[0], model.DatasetHeader)
	}
	if !reflect.DeepEqual(records[1], row.Fields()) {
		t.Errorf("row = %v, want %v", records[1], row.Fields())
	}
}

func TestSessionRecorderHeaderWithoutRows(t *testing.T) {
	r, sess := newTestRecorder(t)
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	records := readDataset(t, sess.DatasetPath())
	if len(records) != 1 {
		t.Fatalf("dataset has %d records, want header only", len(records))
	}
	if !reflect.DeepEqual(records[0], model.DatasetHeader) {
		t.Errorf("header = %v, want %v", records[0], model.DatasetHeader)
	}
}
