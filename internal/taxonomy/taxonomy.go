// Package taxonomy defines the categorization domain types shared by the
// store, the prompt builders and the resolution engine.
package taxonomy

import (
	"path/filepath"
	"strings"
	"time"
)

// EntryKind distinguishes files from directories.
type EntryKind string

const (
	File      EntryKind = "file"
	Directory EntryKind = "directory"
)

// Valid reports whether k is a known kind.
func (k EntryKind) Valid() bool {
	return k == File || k == Directory
}

// ParseEntryKind accepts "file"/"f" and "directory"/"dir"/"d".
func ParseEntryKind(s string) (EntryKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "file", "f":
		return File, true
	case "directory", "dir", "d":
		return Directory, true
	}
	return "", false
}

// Entry is one filesystem item to categorize.
type Entry struct {
	FullPath string    `json:"fullPath"`
	Name     string    `json:"name"`
	Kind     EntryKind `json:"kind"`
}

// Dir returns the directory containing the entry.
func (e Entry) Dir() string {
	return filepath.Dir(e.FullPath)
}

// ID identifies a (category, subcategory) pair in the taxonomy dictionary.
type ID int64

// Uncategorized marks a cache row that has no resolved category yet.
const Uncategorized ID = 0

// ResolvedCategory is a dictionary entry.
type ResolvedCategory struct {
	ID          ID     `json:"id"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
}

// Label renders "Category : Subcategory".
func (r ResolvedCategory) Label() string {
	return r.Category + " : " + r.Subcategory
}

// CacheRow is one persisted categorization keyed by (Dir, FileName, Kind).
// Category and Subcategory are empty while TaxonomyID is Uncategorized.
type CacheRow struct {
	Dir           string    `json:"dir"`
	FileName      string    `json:"fileName"`
	Kind          EntryKind `json:"kind"`
	TaxonomyID    ID        `json:"taxonomyId"`
	Category      string    `json:"category"`
	Subcategory   string    `json:"subcategory"`
	SuggestedName string    `json:"suggestedName,omitempty"`
	NeedsReview   bool      `json:"needsReview"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// FullPath joins the row's directory and file name.
func (r CacheRow) FullPath() string {
	return filepath.Join(r.Dir, r.FileName)
}

// Resolved reports whether the row carries a category.
func (r CacheRow) Resolved() bool {
	return r.TaxonomyID > Uncategorized
}

// ResolvedCategory returns the row's category as a dictionary entry.
func (r CacheRow) ResolvedCategory() ResolvedCategory {
	return ResolvedCategory{ID: r.TaxonomyID, Category: r.Category, Subcategory: r.Subcategory}
}
