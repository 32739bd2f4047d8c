// Package filex holds small filesystem helpers shared by components that
// keep local state files.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureParentDir creates the directory that should contain path, if it
// does not exist yet, and returns the cleaned path.
func EnsureParentDir(path string) (string, error) {
	path = filepath.Clean(path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return path, nil
}
