// Package session names a downloader run and lays out its directories.
//
// Each run gets a timestamped directory under the output root:
//
//	<output>/2024-03-01_15-04-05/
//	    104.sb3
//	    dataset.csv
//	    summaries/
//	        projects_downloaded
//	        projects_failed
//	        session.log
//
// Archives staged mid-download live under a separate staging root so a
// killed run never leaves partial archives among the finished ones.
package session

import (
	"fmt"
	"path/filepath"
	"time"

	ioutils "github.com/scratchkit/scratch-downloader/internal/io"
	"github.com/scratchkit/scratch-downloader/internal/model"
)

const idLayout = "2006-01-02_15-04-05"

// Session identifies one downloader run and resolves the paths its
// outputs are written to.
type Session struct {
	ID      string
	Started time.Time

	dir        string
	summaryDir string
	stagingDir string
}

// New creates a Session rooted at outputRoot, named after the current
// time. Staged files go under stagingRoot.
func New(outputRoot, stagingRoot string) *Session {
	started := time.Now()
	id := started.Format(idLayout)
	dir := filepath.Join(outputRoot, id)

	return &Session{
		ID:         id,
		Started:    started,
		dir:        dir,
		summaryDir: filepath.Join(dir, "summaries"),
		stagingDir: stagingRoot,
	}
}

// Prepare creates the session's directories.
func (s *Session) Prepare() error {
	for _, dir := range []string{s.dir, s.summaryDir, s.stagingDir} {
		if err := ioutils.EnsureDir(dir); err != nil {
			return err
		}
	}
	return nil
}

// Dir returns the session directory holding archives and the dataset.
func (s *Session) Dir() string { return s.dir }

// SummaryDir returns the directory holding ledgers and the session log.
func (s *Session) SummaryDir() string { return s.summaryDir }

// StagingDir returns the root for in-progress archive staging.
func (s *Session) StagingDir() string { return s.stagingDir }

// ArchivePath returns the final path for the packaged project id.
func (s *Session) ArchivePath(id model.ProjectID) string {
	return filepath.Join(s.dir, fmt.Sprintf("%d.sb3", id))
}

// DatasetPath returns the path of the metadata CSV.
func (s *Session) DatasetPath() string { return filepath.Join(s.dir, "dataset.csv") }

// SuccessPath returns the ledger of downloaded project IDs.
func (s *Session) SuccessPath() string { return filepath.Join(s.summaryDir, "projects_downloaded") }

// FailurePath returns the ledger of failed project IDs.
func (s *Session) FailurePath() string { return filepath.Join(s.summaryDir, "projects_failed") }

// LogPath returns the session log file path.
func (s *Session) LogPath() string { return filepath.Join(s.summaryDir, "session.log") }
