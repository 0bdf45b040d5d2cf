// Package maintenance reads the categorization cache for display and removes
// rows whose files no longer exist on disk.
package maintenance

import (
	"context"
	"fmt"
	"path/filepath"

	fserrors "fsort/internal/errors"
	"fsort/internal/storage"
	"fsort/internal/taxonomy"
)

// CachedEntry is a cache row flattened for display and export.
type CachedEntry struct {
	FilePath      string             `json:"filePath" yaml:"filePath" toml:"filePath"`
	FileName      string             `json:"fileName" yaml:"fileName" toml:"fileName"`
	Kind          taxonomy.EntryKind `json:"kind" yaml:"kind" toml:"kind"`
	Category      string             `json:"category" yaml:"category" toml:"category"`
	Subcategory   string             `json:"subcategory" yaml:"subcategory" toml:"subcategory"`
	TaxonomyID    taxonomy.ID        `json:"taxonomyId" yaml:"taxonomyId" toml:"taxonomyId"`
	SuggestedName string             `json:"suggestedName,omitempty" yaml:"suggestedName,omitempty" toml:"suggestedName,omitempty"`
	NeedsReview   bool               `json:"needsReview" yaml:"needsReview" toml:"needsReview"`
}

// FullPath joins the directory and file name.
func (c CachedEntry) FullPath() string {
	return filepath.Join(c.FilePath, c.FileName)
}

// Label renders "Category : Subcategory", or "" for a pending row.
func (c CachedEntry) Label() string {
	if c.TaxonomyID == taxonomy.Uncategorized {
		return ""
	}
	return taxonomy.ResolvedCategory{ID: c.TaxonomyID, Category: c.Category, Subcategory: c.Subcategory}.Label()
}

func fromRow(r taxonomy.CacheRow) CachedEntry {
	return CachedEntry{
		FilePath:      r.Dir,
		FileName:      r.FileName,
		Kind:          r.Kind,
		Category:      r.Category,
		Subcategory:   r.Subcategory,
		TaxonomyID:    r.TaxonomyID,
		SuggestedName: r.SuggestedName,
		NeedsReview:   r.NeedsReview,
	}
}

func fromRows(rows []taxonomy.CacheRow) []CachedEntry {
	out := make([]CachedEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromRow(r))
	}
	return out
}

// LoadCachedEntries returns the rows stored for dir, and for every directory
// below it when recursive is set.
func LoadCachedEntries(ctx context.Context, store storage.TaxonomyStore, dir string, recursive bool) ([]CachedEntry, error) {
	if store == nil {
		return nil, fserrors.New(fserrors.InvalidInput, "no taxonomy store", nil)
	}
	if dir == "" {
		return nil, fserrors.New(fserrors.InvalidInput, "directory is required", nil)
	}
	rows, err := store.RowsUnder(ctx, dir, recursive)
	if err != nil {
		return nil, fserrors.New(fserrors.StorageFailed, fmt.Sprintf("failed to load cached entries for %s", dir), err)
	}
	return fromRows(rows), nil
}

// PendingReview filters entries still waiting for a manual decision.
func PendingReview(entries []CachedEntry) []CachedEntry {
	var out []CachedEntry
	for _, e := range entries {
		if e.NeedsReview || e.TaxonomyID == taxonomy.Uncategorized {
			out = append(out, e)
		}
	}
	return out
}

// PruneEmptyCachedEntries deletes the rows of dir whose files are gone and
// returns what was removed. Subdirectories are not visited.
func PruneEmptyCachedEntries(ctx context.Context, store storage.TaxonomyStore, dir string) ([]CachedEntry, error) {
	if store == nil {
		return nil, fserrors.New(fserrors.InvalidInput, "no taxonomy store", nil)
	}
	if dir == "" {
		return nil, fserrors.New(fserrors.InvalidInput, "directory is required", nil)
	}
	removed, err := store.PruneMissing(ctx, dir)
	if err != nil {
		return nil, fserrors.New(fserrors.StorageFailed, fmt.Sprintf("failed to prune cached entries for %s", dir), err)
	}
	return fromRows(removed), nil
}
