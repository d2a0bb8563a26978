package source

import (
	"context"
	"math/rand"

	"github.com/scratchkit/scratch-downloader/internal/model"
)

// Bounds for randomly chosen starting IDs. The range sits well inside
// the ID space the site has been allocating from for years, so a random
// start lands among real projects.
const (
	randomStartMin = 500_000_000
	randomStartMax = 1_500_000_000
)

// SequenceSource hands out consecutive project IDs from a starting
// point. A positive count bounds how many IDs are produced; zero means
// the sequence never exhausts.
type SequenceSource struct {
	next  model.ProjectID
	left  int64
	bound bool
}

// NewSequenceSource returns a source producing start, start+1, ... with
// at most count IDs when count is positive.
func NewSequenceSource(start model.ProjectID, count int64) *SequenceSource {
	return &SequenceSource{next: start, left: count, bound: count > 0}
}

// Next returns the next ID in the sequence.
func (s *SequenceSource) Next(ctx context.Context) (model.ProjectID, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s.bound && s.left == 0 {
		return 0, ErrExhausted
	}

	id := s.next
	s.next++
	if s.bound {
		s.left--
	}
	return id, nil
}

// RandomStart picks a random starting ID for sequential crawls.
func RandomStart() model.ProjectID {
	return model.ProjectID(randomStartMin + rand.Int63n(randomStartMax-randomStartMin+1))
}
