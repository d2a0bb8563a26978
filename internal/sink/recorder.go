package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/scratchkit/scratch-downloader/internal/model"
	"github.com/scratchkit/scratch-downloader/internal/session"
	"github.com/scratchkit/scratch-downloader/internal/telemetry"
)

// Config wires a SessionRecorder to its session.
type Config struct {
	Session *session.Session
	Logger  *slog.Logger

	// Postgres optionally mirrors dataset rows into a database.
	Postgres *PostgresSink
}

// SessionRecorder persists task outcomes: successes and failures go to
// the ledger files line by line, resolved metadata goes to dataset.csv.
//
// Ledger lines are synced to disk as they are written, so a session
// killed mid-run still leaves a usable record of everything finished
// before the kill. Record is meant to be called from one goroutine.
type SessionRecorder struct {
	logger   *slog.Logger
	postgres *PostgresSink

	success *os.File
	failure *os.File
	dataset *os.File
	csv     *csv.Writer

	started   time.Time
	successes int64
	failures  int64
	rows      int64
}

// Summary is the tally a finished session reports.
type Summary struct {
	Successes int64
	Failures  int64
	Rows      int64
	Elapsed   time.Duration
}

// New opens the session's ledger and dataset files and writes the
// dataset header. The session directories must already exist.
func New(cfg Config) (*SessionRecorder, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	sess := cfg.Session
	success, err := os.OpenFile(sess.SuccessPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open success ledger: %w", err)
	}

	failure, err := os.OpenFile(sess.FailurePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		success.Close()
		return nil, fmt.Errorf("open failure ledger: %w", err)
	}

	dataset, err := os.Create(sess.DatasetPath())
	if err != nil {
		success.Close()
		failure.Close()
		return nil, fmt.Errorf("create dataset: %w", err)
	}

	r := &SessionRecorder{
		logger:   cfg.Logger,
		postgres: cfg.Postgres,
		success:  success,
		failure:  failure,
		dataset:  dataset,
		csv:      csv.NewWriter(dataset),
		started:  sess.Started,
	}

	r.csv.Write(model.DatasetHeader)
	r.csv.Flush()
	if err := r.csv.Error(); err != nil {
		success.Close()
		failure.Close()
		dataset.Close()
		return nil, fmt.Errorf("write dataset header: %w", err)
	}

	return r, nil
}

// Record persists one task outcome. Write failures are logged and never
// stop the session; the outcome still counts toward the summary.
func (r *SessionRecorder) Record(ctx context.Context, outcome *model.FetchOutcome) {
	if !outcome.OK {
		r.failures++
		r.appendLedger(r.failure, outcome.ID)
		return
	}

	r.successes++
	r.appendLedger(r.success, outcome.ID)

	if outcome.Row == nil {
		return
	}

	r.csv.Write(outcome.Row.Fields())
	r.csv.Flush()
	if err := r.csv.Error(); err != nil {
		r.logger.Warn("dataset row write failed", "project", outcome.ID, "error", err)
	} else {
		r.rows++
		telemetry.DatasetRowsTotal.Inc()
	}

	if r.postgres != nil {
		if err := r.postgres.InsertRow(ctx, outcome.Row); err != nil {
			r.logger.Warn("postgres insert failed", "project", outcome.ID, "error", err)
		}
	}
}

// Summary returns the tally so far.
func (r *SessionRecorder) Summary() Summary {
	return Summary{
		Successes: r.successes,
		Failures:  r.failures,
		Rows:      r.rows,
		Elapsed:   time.Since(r.started),
	}
}

// Close flushes the dataset and closes the session files and, when
// attached, the Postgres pool.
func (r *SessionRecorder) Close() error {
	r.csv.Flush()
	err := r.csv.Error()

	for _, f := range []*os.File{r.dataset, r.success, r.failure} {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}

	if r.postgres != nil {
		r.postgres.Close()
	}
	return err
}

func (r *SessionRecorder) appendLedger(f *os.File, id model.ProjectID) {
	if _, err := fmt.Fprintf(f, "%d\n", id); err != nil {
		r.logger.Warn("ledger write failed", "project", id, "error", err)
		return
	}
	if err := f.Sync(); err != nil {
		r.logger.Warn("ledger sync failed", "project", id, "error", err)
	}
}
