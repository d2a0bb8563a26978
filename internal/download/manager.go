package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/scratchkit/scratch-downloader/internal/model"
	"github.com/scratchkit/scratch-downloader/internal/source"
	"github.com/scratchkit/scratch-downloader/internal/telemetry"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Worker count bounds and the dispatch window multiplier. The window is
// how many tasks may be dispatched but not yet recorded at once; it
// also sizes the task channel, which keeps dispatch non-blocking.
const (
	minWorkers      = 1
	maxWorkers      = 256
	windowPerWorker = 4
)

// Recorder persists terminal task outcomes.
type Recorder interface {
	Record(ctx context.Context, outcome *model.FetchOutcome)
}

// Config assembles a Manager.
type Config struct {
	Source   source.Source
	Runner   TaskRunner
	Recorder Recorder
	Stopper  *Stopper

	// Workers is clamped to [1, 256].
	Workers int

	// Target is the number of successful downloads to reach. Zero means
	// keep going until the source exhausts or a stop is requested.
	Target int64

	// Timeout and MaxRetries are stamped onto every task.
	Timeout    time.Duration
	MaxRetries int

	Logger     *slog.Logger
	OnProgress func(ProgressEvent)
}

// Manager coordinates project downloads.
//
// One control goroutine owns the source and the recorder: it pulls IDs,
// keeps at most one window of tasks in flight across a pool of workers,
// and records each outcome exactly once as it arrives. Workers never
// touch the source or the recorder, so no locking is needed around
// either.
type Manager struct {
	src      source.Source
	runner   TaskRunner
	recorder Recorder
	stopper  *Stopper
	logger   *slog.Logger

	workers int
	window  int
	target  int64
	timeout time.Duration
	retries int

	dispatched int64
	inflight   int64
	succeeded  int64
	failed     int64

	onProgress func(ProgressEvent)
}

// Progress is a point-in-time snapshot of a run.
type Progress struct {
	Dispatched int64
	InFlight   int64
	Succeeded  int64
	Failed     int64
	Target     int64
}

// NewManager creates a new download Manager.
func NewManager(cfg Config) *Manager {
	workers := cfg.Workers
	if workers < minWorkers {
		workers = minWorkers
	}
	if workers > maxWorkers {
		workers = maxWorkers
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Manager{
		src:        cfg.Source,
		runner:     cfg.Runner,
		recorder:   cfg.Recorder,
		stopper:    cfg.Stopper,
		logger:     cfg.Logger,
		workers:    workers,
		window:     workers * windowPerWorker,
		target:     cfg.Target,
		timeout:    cfg.Timeout,
		retries:    cfg.MaxRetries,
		onProgress: cfg.OnProgress,
	}
}

// Run executes the session: pull IDs, dispatch them to the worker pool,
// record every outcome. It returns once the target is met, the source
// exhausts, or a requested stop has fully drained.
func (m *Manager) Run(ctx context.Context) error {
	// Intake gets its own context so a stop interrupts a blocked pull
	// without cancelling the workers, which drain naturally.
	pullCtx, cancelPull := context.WithCancel(ctx)
	defer cancelPull()

	if m.stopper != nil {
		go func() {
			select {
			case <-m.stopper.Done():
				cancelPull()
			case <-pullCtx.Done():
			}
		}()
	}

	tasks := make(chan *model.FetchTask, m.window)
	results := make(chan *model.FetchOutcome)

	g, workerCtx := errgroup.WithContext(ctx)
	for i := 0; i < m.workers; i++ {
		g.Go(func() error {
			for task := range tasks {
				results <- m.runner.Run(workerCtx, task)
			}
			return nil
		})
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Starting downloads with %d workers", m.workers), Level: LevelInfo})
	m.logger.Info("session started", "workers", m.workers, "window", m.window, "target", m.target)

	inflight, exhausted := m.topUp(pullCtx, tasks, 0)

	for inflight > 0 {
		outcome := <-results
		inflight--
		atomic.AddInt64(&m.inflight, -1)
		telemetry.InFlightTasks.Dec()

		m.record(ctx, outcome)

		if !exhausted {
			inflight, exhausted = m.topUp(pullCtx, tasks, inflight)
		}
	}

	close(tasks)
	if err := g.Wait(); err != nil {
		return err
	}

	succeeded := atomic.LoadInt64(&m.succeeded)
	failed := atomic.LoadInt64(&m.failed)
	m.progress(ProgressEvent{Message: fmt.Sprintf("Finished: %d downloaded, %d failed", succeeded, failed), Level: LevelInfo})
	m.logger.Info("session finished", "succeeded", succeeded, "failed", failed)
	return nil
}

// GetProgress returns current download progress.
func (m *Manager) GetProgress() Progress {
	return Progress{
		Dispatched: atomic.LoadInt64(&m.dispatched),
		InFlight:   atomic.LoadInt64(&m.inflight),
		Succeeded:  atomic.LoadInt64(&m.succeeded),
		Failed:     atomic.LoadInt64(&m.failed),
		Target:     m.target,
	}
}

// topUp pulls IDs until the allowed number of tasks is in flight, the
// source runs dry, or a stop is requested. Task sends cannot block: the
// channel holds a full window and in-flight tasks never exceed that.
func (m *Manager) topUp(ctx context.Context, tasks chan<- *model.FetchTask, inflight int) (int, bool) {
	for inflight < m.allowed() {
		if m.stopper != nil && m.stopper.Stopped() {
			return inflight, true
		}

		id, err := m.src.Next(ctx)
		if err != nil {
			if errors.Is(err, source.ErrExhausted) {
				m.progress(ProgressEvent{Message: "Source exhausted", Level: LevelVerbose})
				m.logger.Info("source exhausted")
			}
			return inflight, true
		}

		tasks <- &model.FetchTask{ID: id, Timeout: m.timeout, MaxRetries: m.retries}
		inflight++
		atomic.AddInt64(&m.dispatched, 1)
		atomic.AddInt64(&m.inflight, 1)
		telemetry.InFlightTasks.Inc()
		m.progress(ProgressEvent{Message: fmt.Sprintf("Queued project %d", id), Level: LevelVerbose})
	}
	return inflight, false
}

// allowed returns how many tasks may be in flight right now. With a
// target set, dispatch is capped by the successes still needed, so a
// session never downloads more projects than asked for; failures free
// their slot and a replacement is pulled.
func (m *Manager) allowed() int {
	if m.target <= 0 {
		return m.window
	}

	remaining := m.target - atomic.LoadInt64(&m.succeeded)
	if remaining <= 0 {
		return 0
	}
	if remaining < int64(m.window) {
		return int(remaining)
	}
	return m.window
}

func (m *Manager) record(ctx context.Context, outcome *model.FetchOutcome) {
	if outcome.OK {
		atomic.AddInt64(&m.succeeded, 1)
		telemetry.FetchesTotal.WithLabelValues("success").Inc()
		m.logger.Info("project downloaded", "project", outcome.ID)
		m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded project %d", outcome.ID), Level: LevelSuccess})
	} else {
		atomic.AddInt64(&m.failed, 1)
		telemetry.FetchesTotal.WithLabelValues("failure").Inc()
		m.logger.Warn("project failed", "project", outcome.ID, "error", outcome.Err)
		m.progress(ProgressEvent{Message: fmt.Sprintf("Failed project %d: %s", outcome.ID, outcome.Err), Level: LevelWarning})
	}

	if m.recorder != nil {
		m.recorder.Record(ctx, outcome)
	}
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
