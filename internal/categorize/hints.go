package categorize

import (
	"path/filepath"

	"fsort/internal/taxonomy"
)

// hintTracker remembers pairs resolved earlier in the batch, per directory.
type hintTracker struct {
	byDir map[string][]taxonomy.ResolvedCategory
}

func newHintTracker() *hintTracker {
	return &hintTracker{byDir: make(map[string][]taxonomy.ResolvedCategory)}
}

func (h *hintTracker) add(dir string, rc taxonomy.ResolvedCategory) {
	dir = filepath.Clean(dir)
	h.byDir[dir] = append(h.byDir[dir], rc)
}

// siblings returns the pairs for dir, oldest first.
func (h *hintTracker) siblings(dir string) []taxonomy.ResolvedCategory {
	return h.byDir[filepath.Clean(dir)]
}
