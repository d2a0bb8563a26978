package source

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/scratchkit/scratch-downloader/internal/model"
	"github.com/scratchkit/scratch-downloader/internal/scratch"
)

// Explore pagination parameters. Pages are requested 40 entries at a
// time but the offset advances by 30, so consecutive pages overlap and
// listing churn between requests is less likely to skip projects. The
// listing stops serving past offset 9900.
const (
	explorePageLimit  = 40
	exploreOffsetStep = 30
	exploreMaxOffset  = 9900

	exploreEmptyPause    = time.Second
	exploreErrorDelay    = 750 * time.Millisecond
	exploreErrorDelayMax = 8 * time.Second
)

// ExploreConfig configures an ExploreSource.
type ExploreConfig struct {
	Client   *scratch.Client
	Query    string // defaults to "*"
	Mode     string // defaults to "popular"
	Language string // defaults to "en"

	// Count bounds how many IDs the source hands out. Zero means the
	// source keeps paging until cancelled.
	Count int64

	Logger *slog.Logger
}

// ExploreSource discovers project IDs by paging through the explore
// listing. Failed page requests are retried forever with a growing
// delay, and an empty page rewinds the listing to the start. The
// source therefore never exhausts on its own unless Count is set.
type ExploreSource struct {
	client   *scratch.Client
	query    string
	mode     string
	language string
	logger   *slog.Logger

	buf    []model.ProjectID
	offset int
	delay  time.Duration
	left   int64
	bound  bool

	sleep func(context.Context, time.Duration) error
}

// NewExploreSource returns a source paging through the explore listing
// with the given filters.
func NewExploreSource(cfg ExploreConfig) *ExploreSource {
	if cfg.Query == "" {
		cfg.Query = "*"
	}
	if cfg.Mode == "" {
		cfg.Mode = "popular"
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &ExploreSource{
		client:   cfg.Client,
		query:    cfg.Query,
		mode:     cfg.Mode,
		language: cfg.Language,
		logger:   cfg.Logger,
		delay:    exploreErrorDelay,
		left:     cfg.Count,
		bound:    cfg.Count > 0,
		sleep:    sleepContext,
	}
}

// Next returns the next discovered project ID, requesting further pages
// as the buffered ones run out.
func (s *ExploreSource) Next(ctx context.Context) (model.ProjectID, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s.bound && s.left == 0 {
		return 0, ErrExhausted
	}

	for len(s.buf) == 0 {
		if err := s.fill(ctx); err != nil {
			return 0, err
		}
	}

	id := s.buf[0]
	s.buf = s.buf[1:]
	if s.bound {
		s.left--
	}
	return id, nil
}

// fill requests one explore page. It returns an error only when the
// context is cancelled; request failures and empty pages are absorbed
// and leave the buffer empty for the caller to retry.
func (s *ExploreSource) fill(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ids, err := s.client.Explore(ctx, s.query, s.mode, s.language, explorePageLimit, s.offset)
	if err != nil {
		s.logger.Warn("explore page failed", "offset", s.offset, "error", err)
		if err := s.sleep(ctx, s.delay); err != nil {
			return err
		}
		// The delay keeps growing across the whole session rather than
		// resetting after a good page, which keeps a flaky listing from
		// being hammered at full speed again.
		s.delay *= 2
		if s.delay > exploreErrorDelayMax {
			s.delay = exploreErrorDelayMax
		}
		return nil
	}

	if len(ids) == 0 {
		s.logger.Info("explore listing ended, rewinding", "offset", s.offset)
		s.offset = 0
		return s.sleep(ctx, exploreEmptyPause)
	}

	s.buf = ids
	s.offset += exploreOffsetStep
	if s.offset > exploreMaxOffset {
		s.offset = 0
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
