package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" {
		return path, nil
	}
	if path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	// handle cases like ~/models/registry
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// NormalizePath converts backslash separators to forward slashes and cleans
// the result. Artifact producers on Windows record registry paths with
// backslashes; the serving side tolerates either style.
func NormalizePath(path string) string {
	if path == "" {
		return path
	}
	return filepath.Clean(strings.ReplaceAll(path, `\`, "/"))
}

// PathExists checks if the given path exists.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}
