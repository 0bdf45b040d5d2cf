// Package storage persists the taxonomy dictionary and the per-file
// categorization cache.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"fsort/internal/taxonomy"
)

// TaxonomyStore is the cache consulted before any classifier call.
// Implementations are safe for concurrent use.
type TaxonomyStore interface {
	// Resolve returns the ID for the exact (category, subcategory) pair,
	// allocating one on first sight. Matching is case-sensitive.
	Resolve(ctx context.Context, category, subcategory string) (taxonomy.ID, error)

	// Lookup returns the cached row for the key, or (nil, nil) on a miss.
	Lookup(ctx context.Context, dir, fileName string, kind taxonomy.EntryKind) (*taxonomy.CacheRow, error)

	// UpsertFile writes the row for the key, overwriting any existing one.
	// id may be taxonomy.Uncategorized to record a pending entry.
	UpsertFile(ctx context.Context, dir, fileName string, kind taxonomy.EntryKind, id taxonomy.ID, needsReview bool, suggestedName string) error

	// RowsUnder returns rows in dir, plus rows in every descendant
	// directory when recursive is set, ordered by (dir, file name).
	RowsUnder(ctx context.Context, dir string, recursive bool) ([]taxonomy.CacheRow, error)

	// PruneMissing deletes and returns rows in exactly dir whose file or
	// directory no longer exists on disk.
	PruneMissing(ctx context.Context, dir string) ([]taxonomy.CacheRow, error)

	// Taxonomy lists the dictionary ordered by ID.
	Taxonomy(ctx context.Context) ([]taxonomy.ResolvedCategory, error)

	Close() error
}

// ErrUnknownTaxonomyID is returned by UpsertFile for an ID the dictionary never issued.
var ErrUnknownTaxonomyID = errors.New("unknown taxonomy id")

// ErrInvalidKey is returned when a row key has an empty part or an unknown kind.
var ErrInvalidKey = errors.New("invalid cache key")

func validateKey(dir, fileName string, kind taxonomy.EntryKind) error {
	if dir == "" || fileName == "" || !kind.Valid() {
		return ErrInvalidKey
	}
	return nil
}

// entryExists reports whether path still exists as the given kind.
// Errors other than not-exist count as present so a transient permission
// problem never prunes a row.
func entryExists(path string, kind taxonomy.EntryKind) bool {
	info, err := os.Stat(path)
	if err != nil {
		return !errors.Is(err, fs.ErrNotExist)
	}
	if kind == taxonomy.Directory {
		return info.IsDir()
	}
	return !info.IsDir()
}

// descendantPrefix returns the prefix every descendant of dir starts with.
func descendantPrefix(dir string) string {
	if strings.HasSuffix(dir, string(filepath.Separator)) {
		return dir
	}
	return dir + string(filepath.Separator)
}

// OpenStore opens the backend named by the storage config ("sqlite" or "memory").
func OpenStore(backend, dataDir string, logger *slog.Logger) (TaxonomyStore, error) {
	switch backend {
	case "", "sqlite":
		return Open(dataDir, logger)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
