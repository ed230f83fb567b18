package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// WithTempFile writes content to a temporary file whose name ends in
// suffix (e.g. ".html") and calls fn with its path. The file and its
// containing directory are removed on every exit path, including when
// fn returns an error or panics. Each call gets a fresh directory, so
// concurrent callers never share temporary state.
func WithTempFile(suffix string, content []byte, fn func(path string) error) error {
	dir, err := os.MkdirTemp("", "repolens-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "blob"+suffix)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	return fn(path)
}
