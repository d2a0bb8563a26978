// Package source produces the stream of project IDs a download session
// works through.
//
// Three implementations cover the supported modes: SequenceSource walks
// consecutive IDs from a starting point, FileSource reads IDs from a
// text file, and ExploreSource discovers IDs by paging through the
// Scratch explore listing. All of them hand out IDs one at a time
// through the Source interface and report ErrExhausted when they run
// dry.
package source

import (
	"context"
	"errors"

	"github.com/scratchkit/scratch-downloader/internal/model"
)

// ErrExhausted is returned by Next when a source has no more project
// IDs to hand out.
var ErrExhausted = errors.New("source exhausted")

// Source hands out project IDs one at a time.
type Source interface {
	// Next returns the next project ID. It returns ErrExhausted once
	// the source has run dry, and the context error when ctx is
	// cancelled while an ID is being produced.
	Next(ctx context.Context) (model.ProjectID, error)
}
