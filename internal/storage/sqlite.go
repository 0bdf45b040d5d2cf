package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"fsort/internal/taxonomy"
)

// SQLiteStore is the file-backed TaxonomyStore.
type SQLiteStore struct {
	db *DB

	// resolveMu makes the insert-then-select in Resolve atomic.
	resolveMu sync.Mutex
}

// Open opens the store in dataDir, creating the database on first use.
func Open(dataDir string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := OpenDB(dataDir, logger)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// DB exposes the underlying database.
func (s *SQLiteStore) DB() *DB {
	return s.db
}

type fileRow struct {
	Dir           string `db:"dir_path"`
	FileName      string `db:"file_name"`
	Kind          string `db:"file_type"`
	TaxonomyID    int64  `db:"taxonomy_id"`
	Category      string `db:"category"`
	Subcategory   string `db:"subcategory"`
	SuggestedName string `db:"suggested_name"`
	NeedsReview   bool   `db:"needs_review"`
	UpdatedAt     int64  `db:"updated_at"`
}

func (r *fileRow) toDomain() taxonomy.CacheRow {
	return taxonomy.CacheRow{
		Dir:           r.Dir,
		FileName:      r.FileName,
		Kind:          taxonomy.EntryKind(r.Kind),
		TaxonomyID:    taxonomy.ID(r.TaxonomyID),
		Category:      r.Category,
		Subcategory:   r.Subcategory,
		SuggestedName: r.SuggestedName,
		NeedsReview:   r.NeedsReview,
		UpdatedAt:     time.UnixMilli(r.UpdatedAt).UTC(),
	}
}

const selectRows = `
	SELECT f.dir_path, f.file_name, f.file_type, f.taxonomy_id,
	       COALESCE(t.category, '') AS category, COALESCE(t.subcategory, '') AS subcategory,
	       f.suggested_name, f.needs_review, f.updated_at
	FROM file_categorization f
	LEFT JOIN taxonomy t ON t.id = f.taxonomy_id`

// Resolve implements TaxonomyStore.
func (s *SQLiteStore) Resolve(ctx context.Context, category, subcategory string) (taxonomy.ID, error) {
	s.resolveMu.Lock()
	defer s.resolveMu.Unlock()

	var id int64
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO taxonomy (category, subcategory) VALUES (?, ?)
			 ON CONFLICT (category, subcategory) DO NOTHING`,
			category, subcategory); err != nil {
			return err
		}
		return tx.GetContext(ctx, &id,
			`SELECT id FROM taxonomy WHERE category = ? AND subcategory = ?`,
			category, subcategory)
	})
	if err != nil {
		return taxonomy.Uncategorized, fmt.Errorf("failed to resolve taxonomy: %w", err)
	}
	return taxonomy.ID(id), nil
}

// Lookup implements TaxonomyStore.
func (s *SQLiteStore) Lookup(ctx context.Context, dir, fileName string, kind taxonomy.EntryKind) (*taxonomy.CacheRow, error) {
	var row fileRow
	err := s.db.conn.GetContext(ctx, &row,
		selectRows+` WHERE f.dir_path = ? AND f.file_name = ? AND f.file_type = ?`,
		filepath.Clean(dir), fileName, string(kind))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lookup file: %w", err)
	}
	out := row.toDomain()
	return &out, nil
}

// UpsertFile implements TaxonomyStore.
func (s *SQLiteStore) UpsertFile(ctx context.Context, dir, fileName string, kind taxonomy.EntryKind, id taxonomy.ID, needsReview bool, suggestedName string) error {
	if err := validateKey(dir, fileName, kind); err != nil {
		return err
	}
	return s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if id != taxonomy.Uncategorized {
			var n int
			if err := tx.GetContext(ctx, &n, `SELECT COUNT(*) FROM taxonomy WHERE id = ?`, int64(id)); err != nil {
				return fmt.Errorf("failed to check taxonomy id: %w", err)
			}
			if n == 0 {
				return fmt.Errorf("%w: %d", ErrUnknownTaxonomyID, id)
			}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO file_categorization
			 (dir_path, file_name, file_type, taxonomy_id, suggested_name, needs_review, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			filepath.Clean(dir), fileName, string(kind), int64(id), suggestedName, needsReview, time.Now().UnixMilli())
		if err != nil {
			return fmt.Errorf("failed to upsert file: %w", err)
		}
		return nil
	})
}

// RowsUnder implements TaxonomyStore.
func (s *SQLiteStore) RowsUnder(ctx context.Context, dir string, recursive bool) ([]taxonomy.CacheRow, error) {
	dir = filepath.Clean(dir)

	var rows []fileRow
	var err error
	if recursive {
		// substr keeps the comparison case-sensitive and free of LIKE wildcards
		prefix := descendantPrefix(dir)
		err = s.db.conn.SelectContext(ctx, &rows,
			selectRows+` WHERE f.dir_path = ? OR substr(f.dir_path, 1, length(?)) = ?
			 ORDER BY f.dir_path, f.file_name, f.file_type`,
			dir, prefix, prefix)
	} else {
		err = s.db.conn.SelectContext(ctx, &rows,
			selectRows+` WHERE f.dir_path = ? ORDER BY f.dir_path, f.file_name, f.file_type`,
			dir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list rows: %w", err)
	}

	out := make([]taxonomy.CacheRow, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}

// PruneMissing implements TaxonomyStore.
func (s *SQLiteStore) PruneMissing(ctx context.Context, dir string) ([]taxonomy.CacheRow, error) {
	rows, err := s.RowsUnder(ctx, dir, false)
	if err != nil {
		return nil, err
	}

	var removed []taxonomy.CacheRow
	for _, row := range rows {
		if !entryExists(row.FullPath(), row.Kind) {
			removed = append(removed, row)
		}
	}
	if len(removed) == 0 {
		return nil, nil
	}

	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, row := range removed {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM file_categorization WHERE dir_path = ? AND file_name = ? AND file_type = ?`,
				row.Dir, row.FileName, string(row.Kind)); err != nil {
				return fmt.Errorf("failed to delete row: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.db.logger.Debug("Pruned cache rows", "dir", dir, "count", len(removed))
	return removed, nil
}

// Taxonomy implements TaxonomyStore.
func (s *SQLiteStore) Taxonomy(ctx context.Context) ([]taxonomy.ResolvedCategory, error) {
	var rows []struct {
		ID          int64  `db:"id"`
		Category    string `db:"category"`
		Subcategory string `db:"subcategory"`
	}
	if err := s.db.conn.SelectContext(ctx, &rows,
		`SELECT id, category, subcategory FROM taxonomy ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list taxonomy: %w", err)
	}

	out := make([]taxonomy.ResolvedCategory, len(rows))
	for i, r := range rows {
		out[i] = taxonomy.ResolvedCategory{ID: taxonomy.ID(r.ID), Category: r.Category, Subcategory: r.Subcategory}
	}
	return out, nil
}

// Close implements TaxonomyStore.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ TaxonomyStore = (*SQLiteStore)(nil)
