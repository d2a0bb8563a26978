// Package archive packages project payloads into .sb3 files.
//
// A .sb3 file is a zip archive whose single required member is the
// project document. Archives are assembled in a staging area and only
// moved into the output directory once fully written, so readers of the
// output directory never observe a partial archive.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	ioutils "github.com/scratchkit/scratch-downloader/internal/io"
	"github.com/scratchkit/scratch-downloader/internal/model"
)

const projectEntry = "project.json"

// Packer builds .sb3 archives, staging work under a dedicated root.
type Packer struct {
	stagingRoot string
}

// NewPacker returns a Packer staging work under root.
func NewPacker(stagingRoot string) *Packer {
	return &Packer{stagingRoot: stagingRoot}
}

// Pack writes payload as the project document of a fresh .sb3 archive
// and moves it to dest. The archive appears at dest only once complete;
// a failed pack leaves nothing behind there. Packing over an existing
// archive replaces it.
func (p *Packer) Pack(id model.ProjectID, payload []byte, dest string) error {
	stage, err := ioutils.ScratchDir(p.stagingRoot)
	if err != nil {
		return fmt.Errorf("stage project %d: %w", id, err)
	}
	defer os.RemoveAll(stage)

	docPath := filepath.Join(stage, projectEntry)
	if err := os.WriteFile(docPath, payload, 0644); err != nil {
		return fmt.Errorf("stage project %d: %w", id, err)
	}

	// The partial file lives next to dest so the final rename stays on
	// one file system.
	partial := dest + ".partial"
	if err := writeArchive(partial, docPath); err != nil {
		os.Remove(partial)
		return fmt.Errorf("pack project %d: %w", id, err)
	}
	if err := os.Rename(partial, dest); err != nil {
		os.Remove(partial)
		return fmt.Errorf("pack project %d: %w", id, err)
	}
	return nil
}

func writeArchive(path, docPath string) error {
	doc, err := os.Open(docPath)
	if err != nil {
		return err
	}
	defer doc.Close()

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(f)
	entry, err := zw.Create(projectEntry)
	if err == nil {
		_, err = io.Copy(entry, doc)
	}
	if cerr := zw.Close(); err == nil {
		err = cerr
	}
	if serr := f.Sync(); err == nil {
		err = serr
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
