package fileutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rohmanhakim/coffee-indicators/pkg/failure"
)

// EnsureDir creates dir joined with the optional path elements if it does not exist yet.
func EnsureDir(dir string, path ...string) failure.ClassifiedError {
	target := filepath.Join(append([]string{dir}, path...)...)
	if err := os.MkdirAll(target, 0755); err != nil {
		return &FileError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: false,
			Cause:     ErrCausePathError,
			Path:      target,
		}
	}
	return nil
}

// EnsureParentDir creates the directory that will hold filePath.
// In-memory database names such as ":memory:" have no parent and are left alone.
func EnsureParentDir(filePath string) failure.ClassifiedError {
	parent := filepath.Dir(filePath)
	if parent == "." || parent == "" {
		return nil
	}
	return EnsureDir(parent)
}
