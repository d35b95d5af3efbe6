package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolveAuthDir expands a leading "~" in the account storage directory to
// the current user's home directory and cleans the result.
func ResolveAuthDir(authDir string) (string, error) {
	if authDir == "" {
		return "", nil
	}
	if !strings.HasPrefix(authDir, "~") {
		return filepath.Clean(authDir), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve auth dir: %w", err)
	}
	remainder := strings.TrimLeft(strings.TrimPrefix(authDir, "~"), "/")
	if remainder == "" {
		return filepath.Clean(home), nil
	}
	return filepath.Clean(filepath.Join(home, remainder)), nil
}
