// Package files writes generated content into the workspace.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteError indicates the directory or file for a materialized path could
// not be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// ParentDir strips the last "/"-separated segment from rel. A path with no
// separator has the empty parent, which resolves to the root itself.
func ParentDir(rel string) string {
	i := strings.LastIndex(rel, "/")
	if i < 0 {
		return ""
	}
	return rel[:i]
}

// Materialize writes content to rel under root, creating parent directories
// as needed. Existing files are overwritten. It returns the absolute path.
func Materialize(root, rel, content string) (string, error) {
	if root == "" {
		return "", fmt.Errorf("materialize %s: empty workspace root", rel)
	}

	dir := filepath.Join(root, filepath.FromSlash(ParentDir(rel)))
	target := filepath.Join(root, filepath.FromSlash(rel))

	if err := EnsureDir(dir); err != nil {
		return "", &WriteError{Path: dir, Err: err}
	}
	if err := os.WriteFile(target, []byte(content), 0644); err != nil {
		return "", &WriteError{Path: target, Err: err}
	}

	return target, nil
}
