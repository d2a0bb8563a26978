package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readProjectEntry(t *testing.T, path string) string {
	t.Helper()

	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("OpenReader(%q) error = %v", path, err)
	}
	defer r.Close()

	if len(r.File) != 1 {
		t.Fatalf("archive has %d entries, want 1", len(r.File))
	}
	if r.File[0].Name != "project.json" {
		t.Fatalf("entry name = %q, want %q", r.File[0].Name, "project.json")
	}

	rc, err := r.File[0].Open()
	if err != nil {
		t.Fatalf("open entry: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read entry: %v", err)
	}
	return string(data)
}

func TestPackerPack(t *testing.T) {
	staging := t.TempDir()
	outDir := t.TempDir()
	dest := filepath.Join(outDir, "104.sb3")

	payload := `{"targets": [], "monitors": []}`
	packer := NewPacker(staging)
	if err := packer.Pack(104, []byte(payload), dest); err != nil {
		t.Fatalf("Pack() error = %v", err)
	}

	if got := readProjectEntry(t, dest); got != payload {
		t.Errorf("project.json = %q, want %q", got, payload)
	}

	entries, err := os.ReadDir(staging)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("staging root still holds %d entries", len(entries))
	}

	outEntries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range outEntries {
		if strings.HasSuffix(e.Name(), ".partial") {
			t.Errorf("partial archive left behind: %s", e.Name())
		}
	}
}

func TestPackerPackReplacesExisting(t *testing.T) {
	staging := t.TempDir()
	dest := filepath.Join(t.TempDir(), "104.sb3")

	packer := NewPacker(staging)
	if err := packer.Pack(104, []byte(`{"v": 1}`), dest); err != nil {
		t.Fatalf("first Pack() error = %v", err)
	}
	if err := packer.Pack(104, []byte(`{"v": 2}`), dest); err != nil {
		t.Fatalf("second Pack() error = %v", err)
	}

	if got := readProjectEntry(t, dest); got != `{"v": 2}` {
		t.Errorf("project.json = %q after repack", got)
	}
}

func TestPackerPackBadDest(t *testing.T) {
	staging := t.TempDir()
	dest := filepath.Join(t.TempDir(), "missing", "104.sb3")

	packer := NewPacker(staging)
	if err := packer.Pack(104, []byte(`{}`), dest); err == nil {
		t.Fatal("Pack() expected error for missing destination directory")
	}

	entries, err := os.ReadDir(staging)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("staging root still holds %d entries after failure", len(entries))
	}
}
