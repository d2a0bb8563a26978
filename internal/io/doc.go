// Package ioutils provides file system utilities.
//
// This package contains functions for:
//   - Directory creation
//   - Per-task scratch directories for staging downloads
//
// # Directory Creation
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir("/path/to/new/directory")
//
// # Scratch Directories
//
// Use ScratchDir to stage files that must not appear in the output tree
// until complete. Each call creates a uniquely named directory, so any
// number of workers can stage concurrently under the same root:
//
//	dir, _ := ioutils.ScratchDir("utemp")
//	defer os.RemoveAll(dir)
//
//	// write and package files under dir, then move the result out
package ioutils
