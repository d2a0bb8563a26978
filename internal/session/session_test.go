package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSessionPaths(t *testing.T) {
	s := New("downloads", "utemp")

	if s.ID == "" {
		t.Fatal("session ID is empty")
	}
	if got, want := s.Dir(), filepath.Join("downloads", s.ID); got != want {
		t.Errorf("Dir() = %q, want %q", got, want)
	}
	if got, want := s.ArchivePath(104), filepath.Join("downloads", s.ID, "104.sb3"); got != want {
		t.Errorf("ArchivePath() = %q, want %q", got, want)
	}
	if got, want := s.DatasetPath(), filepath.Join("downloads", s.ID, "dataset.csv"); got != want {
		t.Errorf("DatasetPath() = %q, want %q", got, want)
	}
	if got, want := s.SuccessPath(), filepath.Join("downloads", s.ID, "summaries", "projects_downloaded"); got != want {
		t.Errorf("SuccessPath() = %q, want %q", got, want)
	}
	if got, want := s.LogPath(), filepath.Join("downloads", s.ID, "summaries", "session.log"); got != want {
		t.Errorf("LogPath() = %q, want %q", got, want)
	}
}

func TestSessionPrepare(t *testing.T) {
	root := t.TempDir()
	s := New(filepath.Join(root, "downloads"), filepath.Join(root, "utemp"))

	if err := s.Prepare(); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	for _, dir := range []string{s.Dir(), s.SummaryDir(), s.StagingDir()} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("Stat(%q) error = %v", dir, err)
		}
		if !info.IsDir() {
			t.Errorf("%q is not a directory", dir)
		}
	}
}
