package download

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/scratchkit/scratch-downloader/internal/archive"
	httpx "github.com/scratchkit/scratch-downloader/internal/http"
	"github.com/scratchkit/scratch-downloader/internal/model"
	"github.com/scratchkit/scratch-downloader/internal/scratch"
	"github.com/scratchkit/scratch-downloader/internal/session"
	"github.com/scratchkit/scratch-downloader/internal/telemetry"
)

// TaskRunner executes one fetch task to its terminal outcome.
type TaskRunner interface {
	Run(ctx context.Context, task *model.FetchTask) *model.FetchOutcome
}

// Payload validation errors. Both are retried like transport failures:
// malformed bodies usually come from rate limiters and proxy edges, not
// from the project itself.
var (
	ErrNotJSON     = errors.New("payload is not a JSON document")
	ErrInvalidJSON = errors.New("payload is not valid JSON")
)

// FetcherConfig assembles a Fetcher.
type FetcherConfig struct {
	Client  *scratch.Client
	Packer  *archive.Packer
	Session *session.Session

	// Cooldown and MaxDelay shape the pause between retry attempts.
	Cooldown time.Duration
	MaxDelay time.Duration

	Logger *slog.Logger
}

// Fetcher downloads one project per Run call: resolve metadata, fetch
// the payload, validate it and archive it into the session directory.
// The credentialed payload URL is tried first with the public fallback
// URL behind it, so projects whose metadata cannot be resolved are
// still downloadable.
type Fetcher struct {
	client   *scratch.Client
	packer   *archive.Packer
	session  *session.Session
	cooldown time.Duration
	maxDelay time.Duration
	logger   *slog.Logger
}

// NewFetcher creates a Fetcher, filling unset retry parameters with the
// defaults.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 750 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 8 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Fetcher{
		client:   cfg.Client,
		packer:   cfg.Packer,
		session:  cfg.Session,
		cooldown: cfg.Cooldown,
		maxDelay: cfg.MaxDelay,
		logger:   cfg.Logger,
	}
}

// Run fetches one project to its terminal outcome. The task's attempt
// budget is spent entirely inside this call; the returned outcome is
// final.
func (f *Fetcher) Run(ctx context.Context, task *model.FetchTask) *model.FetchOutcome {
	attempts := task.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			telemetry.RetriesTotal.Inc()
			if err := f.pause(ctx, Backoff(attempt-1, f.cooldown, f.maxDelay)); err != nil {
				lastErr = err
				break
			}
		}

		info, payload, err := f.fetchOnce(ctx, task)
		if err == nil {
			return f.finish(ctx, task, info, payload)
		}

		lastErr = err
		f.logger.Debug("attempt failed", "project", task.ID, "attempt", attempt, "error", err)
		if !transient(err) {
			break
		}
	}

	return &model.FetchOutcome{ID: task.ID, Err: lastErr.Error()}
}

// fetchOnce makes one full attempt: resolve, fetch, validate.
func (f *Fetcher) fetchOnce(ctx context.Context, task *model.FetchTask) (*model.ProjectInfo, []byte, error) {
	info, err := f.client.Resolve(ctx, task.ID)
	if err != nil {
		f.logger.Debug("metadata resolve failed", "project", task.ID, "error", err)
		info = nil
	}

	var payload []byte
	if info != nil {
		payload, err = f.client.Fetch(ctx, f.client.ProjectURL(task.ID, info.Token), task.Timeout)
		if err != nil {
			f.logger.Debug("credentialed fetch failed, trying fallback", "project", task.ID, "error", err)
			payload = nil
		}
	}
	if payload == nil {
		payload, err = f.client.Fetch(ctx, f.client.FallbackURL(task.ID), task.Timeout)
		if err != nil {
			return info, nil, err
		}
	}

	doc, err := decodePayload(payload)
	if err != nil {
		return info, nil, err
	}
	return info, doc, nil
}

// finish archives the validated payload and attaches the metadata row.
// Metadata is best-effort once the archive is on disk: a project whose
// resolve failed is still a success, just without a dataset row.
func (f *Fetcher) finish(ctx context.Context, task *model.FetchTask, info *model.ProjectInfo, payload []byte) *model.FetchOutcome {
	if err := f.packer.Pack(task.ID, payload, f.session.ArchivePath(task.ID)); err != nil {
		return &model.FetchOutcome{ID: task.ID, Err: err.Error()}
	}

	if info == nil {
		info, _ = f.client.Resolve(ctx, task.ID)
	}

	outcome := &model.FetchOutcome{ID: task.ID, OK: true}
	if info != nil {
		outcome.Row = info.Row()
	}
	return outcome
}

func (f *Fetcher) pause(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// decodePayload normalizes the payload to UTF-8 and checks that it
// looks like a JSON document: first significant byte '{' or '[' and
// valid JSON throughout.
func decodePayload(raw []byte) ([]byte, error) {
	doc := raw
	if !utf8.Valid(doc) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(doc)
		if err != nil {
			return nil, ErrNotJSON
		}
		doc = decoded
	}

	trimmed := bytes.TrimLeftFunc(doc, unicode.IsSpace)
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		return nil, ErrNotJSON
	}
	if !json.Valid(trimmed) {
		return nil, ErrInvalidJSON
	}
	return doc, nil
}

// transient reports whether an attempt failure is worth another try.
// Status errors, malformed payloads and network timeouts are transient;
// cancellation and local errors such as disk failures are not.
func transient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	var statusErr *httpx.StatusError
	if errors.As(err, &statusErr) {
		return true
	}
	if errors.Is(err, ErrNotJSON) || errors.Is(err, ErrInvalidJSON) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
