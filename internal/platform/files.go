package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// Workspace naming
const (
	WorkspacePrefix = "dispatch-"
)

// Characters never allowed in user supplied file names
var (
	UnsafeNameRunes = []string{"/", "\\", "..", "\x00"}
)

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// NewWorkspace creates a unique directory under baseDir for one dispatch. The
// dispatcher removes it once the delivered file is gone, so at most one
// workspace exists per in-flight dispatch.
func NewWorkspace(baseDir string) (string, error) {
	if err := CreateDirectoryIfNotExists(baseDir); err != nil {
		return "", fmt.Errorf("failed to ensure base dir: %w", err)
	}
	dir := filepath.Join(baseDir, WorkspacePrefix+uuid.NewString())
	if err := os.Mkdir(dir, DefaultDirPermissions); err != nil {
		return "", fmt.Errorf("failed to create workspace: %w", err)
	}
	return dir, nil
}

// RemoveQuiet deletes a path recursively, ignoring errors. Used for workspace
// cleanup where a leftover directory is not worth failing the flow over.
func RemoveQuiet(path string) {
	if path == "" {
		return
	}
	_ = os.RemoveAll(path)
}

// SanitizeName makes a user supplied batch name safe to use as a file name
// component: separators become underscores and the result is capped at
// maxLength runes.
func SanitizeName(name string, maxLength int) string {
	cleaned := name
	for _, unsafe := range UnsafeNameRunes {
		cleaned = strings.ReplaceAll(cleaned, unsafe, "_")
	}
	cleaned = strings.TrimSpace(cleaned)

	runes := []rune(cleaned)
	if maxLength > 0 && len(runes) > maxLength {
		cleaned = string(runes[:maxLength])
	}
	return cleaned
}
