// Package filex holds small filesystem helpers.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureParentDir creates the directory that will hold the SQLite database
// named by dsn and returns it as an absolute path. In-memory databases and
// "file:" URIs are left alone and yield "".
func EnsureParentDir(dsn string) (string, error) {
	if dsn == "" || strings.HasPrefix(dsn, ":memory:") || strings.HasPrefix(dsn, "file:") {
		return "", nil
	}

	dir, err := filepath.Abs(filepath.Dir(dsn))
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dsn, err)
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}
