// Package ioutils provides file system utilities for the scratch-downloader.
package ioutils

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
//
// Example:
//
//	err := EnsureDir("/downloads/2024-03-01_15-04-05/summaries")
//	// Creates /downloads, the session directory and summaries if needed
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// ScratchDir creates a uniquely named scratch directory under root,
// creating root itself if necessary.
//
// Every call returns a fresh directory, so concurrent workers can stage
// files without coordinating names. The caller removes the directory
// when done:
//
//	dir, err := ScratchDir("utemp")
//	if err != nil {
//	    return err
//	}
//	defer os.RemoveAll(dir)
func ScratchDir(root string) (string, error) {
	dir := filepath.Join(root, uuid.NewString())
	if err := EnsureDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}
