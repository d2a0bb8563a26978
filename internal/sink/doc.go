// Package sink persists what a download session produced.
//
// # Session Files
//
// A SessionRecorder owns the per-session record files:
//
//	summaries/projects_downloaded   one project ID per line
//	summaries/projects_failed       one project ID per line
//	dataset.csv                     metadata for resolved projects
//
// Ledger lines are flushed to disk per outcome, so an interrupted
// session still reports everything that finished. Dataset rows exist
// only for projects whose metadata resolved; a project can appear in
// the success ledger without a dataset row.
//
// # Postgres Mirroring
//
// An optional PostgresSink copies dataset rows into a scratch_projects
// table. Inserts are idempotent on project_id, so crawls overlapping
// earlier sessions do not duplicate rows:
//
//	pg, err := sink.NewPostgresSink(ctx, dsn, logger)
//	if err != nil {
//	    // database unreachable
//	}
//	recorder, err := sink.New(sink.Config{Session: sess, Postgres: pg})
//
// Database failures after startup are logged and skipped; the files on
// disk remain the source of truth.
package sink
