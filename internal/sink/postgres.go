package sink

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scratchkit/scratch-downloader/internal/model"
)

const createProjectsTable = `
CREATE TABLE IF NOT EXISTS scratch_projects (
	project_id      BIGINT PRIMARY KEY,
	title           TEXT NOT NULL,
	author          TEXT NOT NULL,
	created_at      TIMESTAMPTZ,
	modified_at     TIMESTAMPTZ,
	remix_parent_id BIGINT,
	remix_root_id   BIGINT,
	downloaded_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresSink mirrors dataset rows into a Postgres table, letting long
// crawls accumulate metadata across sessions.
type PostgresSink struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresSink connects to the database at dsn and ensures the
// scratch_projects table exists.
func NewPostgresSink(ctx context.Context, dsn string, logger *slog.Logger) (*PostgresSink, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 4
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("new pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if _, err := pool.Exec(ctx, createProjectsTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &PostgresSink{pool: pool, logger: logger}, nil
}

// InsertRow stores one metadata row. A project already present in the
// table is left untouched, so re-crawling the same IDs stays cheap.
func (s *PostgresSink) InsertRow(ctx context.Context, row *model.MetadataRow) error {
	query := `
		INSERT INTO scratch_projects (project_id, title, author, created_at, modified_at, remix_parent_id, remix_root_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (project_id) DO NOTHING
	`
	_, err := s.pool.Exec(ctx, query,
		int64(row.ID),
		row.Title,
		row.Author,
		nullTime(row.CreatedAt),
		nullTime(row.ModifiedAt),
		nullID(row.RemixParentID),
		nullID(row.RemixRootID),
	)
	if err != nil {
		return fmt.Errorf("insert project %d: %w", row.ID, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresSink) Close() {
	s.pool.Close()
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func nullID(id *model.ProjectID) *int64 {
	if id == nil {
		return nil
	}
	v := int64(*id)
	return &v
}
