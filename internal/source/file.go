package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/scratchkit/scratch-downloader/internal/model"
)

// FileSource reads project IDs from a text file, one ID per line.
// Blank lines and lines starting with '#' are skipped; lines that do
// not parse as positive integers are logged and skipped.
type FileSource struct {
	file    *os.File
	scanner *bufio.Scanner
	logger  *slog.Logger
	done    bool
}

// NewFileSource opens path for reading. The caller owns the source and
// should Close it when downloading stops early; exhausting the file
// closes it implicitly.
func NewFileSource(path string, logger *slog.Logger) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ids file: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &FileSource{file: f, scanner: bufio.NewScanner(f), logger: logger}, nil
}

// Next returns the next usable ID from the file.
func (s *FileSource) Next(ctx context.Context) (model.ProjectID, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s.done {
		return 0, ErrExhausted
	}

	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		id, err := strconv.ParseInt(line, 10, 64)
		if err != nil || id <= 0 {
			s.logger.Warn("skipping malformed project id", "line", line)
			continue
		}

		return model.ProjectID(id), nil
	}

	err := s.scanner.Err()
	s.Close()
	if err != nil {
		return 0, fmt.Errorf("read ids file: %w", err)
	}
	return 0, ErrExhausted
}

// Close releases the underlying file. It is safe to call more than
// once.
func (s *FileSource) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	return s.file.Close()
}
