package dson

import (
	"fmt"
	"os"
)

// FileController issues and tracks the lifetime of temp files a
// threshold-routed download creates to back an oversized payload,
// grounded in the original's file_controller.h, whose job is exactly
// this: hand out throwaway file names and guarantee they're cleaned up
// together rather than leaking one at a time as callers finish with them.
type FileController struct {
	dir    string
	issued []string
}

// NewFileController returns a FileController that creates files under
// dir (os.TempDir() if dir is empty).
func NewFileController(dir string) *FileController {
	if dir == "" {
		dir = os.TempDir()
	}
	return &FileController{dir: dir}
}

// Create opens a new temp file under the controller's directory using
// pattern (see os.CreateTemp), tracking it so Close can remove it later.
func (fc *FileController) Create(pattern string) (*os.File, error) {
	f, err := os.CreateTemp(fc.dir, pattern)
	if err != nil {
		return nil, err
	}
	fc.issued = append(fc.issued, f.Name())
	return f, nil
}

// Close removes every file this controller has issued. Errors removing
// individual files are collected and reported together rather than
// aborting on the first failure, so a missing file doesn't mask cleanup
// of the rest.
func (fc *FileController) Close() error {
	var firstErr error
	for _, name := range fc.issued {
		if err := os.Remove(name); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("dson: removing %s: %w", name, err)
		}
	}
	fc.issued = nil
	return firstErr
}
