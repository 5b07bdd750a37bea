// Package pathguard confines document access to a configured allow-list of
// root directories. Every filesystem operation in the service passes through
// a Guard before any file content is read.
package pathguard

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrNotAllowed is returned when a path resolves outside every allowed root.
var ErrNotAllowed = errors.New("path is outside the allowed directories")

// Guard checks paths against the allowed roots.
type Guard struct {
	roots []string
}

// New creates a Guard from the given root directories. Roots are normalized
// to absolute, cleaned paths; relative roots resolve against the working
// directory. Empty entries are dropped.
func New(roots []string) (*Guard, error) {
	normalized := make([]string, 0, len(roots))
	for _, root := range roots {
		if strings.TrimSpace(root) == "" {
			continue
		}
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root %q: %w", root, err)
		}
		normalized = append(normalized, filepath.Clean(abs))
	}

	return &Guard{roots: normalized}, nil
}

// Roots returns a copy of the normalized allowed roots.
func (g *Guard) Roots() []string {
	roots := make([]string, len(g.roots))
	copy(roots, g.roots)
	return roots
}

// IsAllowed reports whether the path resolves inside an allowed root.
// Traversal segments are normalized away before comparison.
func (g *Guard) IsAllowed(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	abs = filepath.Clean(abs)

	for _, root := range g.roots {
		if abs == root {
			return true
		}
		// The boundary must be a separator so /docs does not admit /docs-evil.
		if strings.HasPrefix(abs, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// Check returns ErrNotAllowed (wrapped with the offending path) when the
// path falls outside every allowed root.
func (g *Guard) Check(path string) error {
	if g.IsAllowed(path) {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotAllowed, path)
}

// Resolve normalizes the path to an absolute one and checks confinement.
func (g *Guard) Resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %q: %w", path, err)
	}
	abs = filepath.Clean(abs)

	if err := g.Check(abs); err != nil {
		return "", err
	}
	return abs, nil
}
