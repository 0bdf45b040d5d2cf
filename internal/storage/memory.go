package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"fsort/internal/taxonomy"
)

type pairKey struct {
	category    string
	subcategory string
}

type rowKey struct {
	dir      string
	fileName string
	kind     taxonomy.EntryKind
}

type memoryRow struct {
	id            taxonomy.ID
	suggestedName string
	needsReview   bool
	updatedAt     time.Time
}

// MemoryStore is a process-local TaxonomyStore. Nothing survives Close.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID taxonomy.ID
	ids    map[pairKey]taxonomy.ID
	pairs  map[taxonomy.ID]pairKey
	rows   map[rowKey]memoryRow
}

// NewMemoryStore returns an empty store whose first ID is 1.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID: 1,
		ids:    make(map[pairKey]taxonomy.ID),
		pairs:  make(map[taxonomy.ID]pairKey),
		rows:   make(map[rowKey]memoryRow),
	}
}

// Resolve implements TaxonomyStore.
func (m *MemoryStore) Resolve(ctx context.Context, category, subcategory string) (taxonomy.ID, error) {
	if err := ctx.Err(); err != nil {
		return taxonomy.Uncategorized, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := pairKey{category, subcategory}
	if id, ok := m.ids[key]; ok {
		return id, nil
	}
	id := m.nextID
	m.nextID++
	m.ids[key] = id
	m.pairs[id] = key
	return id, nil
}

// Lookup implements TaxonomyStore.
func (m *MemoryStore) Lookup(ctx context.Context, dir, fileName string, kind taxonomy.EntryKind) (*taxonomy.CacheRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	key := rowKey{filepath.Clean(dir), fileName, kind}
	r, ok := m.rows[key]
	if !ok {
		return nil, nil
	}
	out := m.toRow(key, r)
	return &out, nil
}

// UpsertFile implements TaxonomyStore.
func (m *MemoryStore) UpsertFile(ctx context.Context, dir, fileName string, kind taxonomy.EntryKind, id taxonomy.ID, needsReview bool, suggestedName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateKey(dir, fileName, kind); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if id != taxonomy.Uncategorized {
		if _, ok := m.pairs[id]; !ok {
			return fmt.Errorf("%w: %d", ErrUnknownTaxonomyID, id)
		}
	}
	m.rows[rowKey{filepath.Clean(dir), fileName, kind}] = memoryRow{
		id:            id,
		suggestedName: suggestedName,
		needsReview:   needsReview,
		updatedAt:     time.Now().UTC(),
	}
	return nil
}

// RowsUnder implements TaxonomyStore.
func (m *MemoryStore) RowsUnder(ctx context.Context, dir string, recursive bool) ([]taxonomy.CacheRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir = filepath.Clean(dir)
	prefix := descendantPrefix(dir)

	m.mu.RLock()
	var out []taxonomy.CacheRow
	for key, r := range m.rows {
		if key.dir == dir || (recursive && strings.HasPrefix(key.dir, prefix)) {
			out = append(out, m.toRow(key, r))
		}
	}
	m.mu.RUnlock()

	sortRows(out)
	return out, nil
}

// PruneMissing implements TaxonomyStore.
func (m *MemoryStore) PruneMissing(ctx context.Context, dir string) ([]taxonomy.CacheRow, error) {
	rows, err := m.RowsUnder(ctx, dir, false)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var removed []taxonomy.CacheRow
	for _, row := range rows {
		if entryExists(row.FullPath(), row.Kind) {
			continue
		}
		delete(m.rows, rowKey{row.Dir, row.FileName, row.Kind})
		removed = append(removed, row)
	}
	return removed, nil
}

// Taxonomy implements TaxonomyStore.
func (m *MemoryStore) Taxonomy(ctx context.Context) ([]taxonomy.ResolvedCategory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]taxonomy.ResolvedCategory, 0, len(m.pairs))
	for id, p := range m.pairs {
		out = append(out, taxonomy.ResolvedCategory{ID: id, Category: p.category, Subcategory: p.subcategory})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Close implements TaxonomyStore.
func (m *MemoryStore) Close() error {
	return nil
}

// toRow must be called with mu held.
func (m *MemoryStore) toRow(key rowKey, r memoryRow) taxonomy.CacheRow {
	p := m.pairs[r.id]
	return taxonomy.CacheRow{
		Dir:           key.dir,
		FileName:      key.fileName,
		Kind:          key.kind,
		TaxonomyID:    r.id,
		Category:      p.category,
		Subcategory:   p.subcategory,
		SuggestedName: r.suggestedName,
		NeedsReview:   r.needsReview,
		UpdatedAt:     r.updatedAt,
	}
}

func sortRows(rows []taxonomy.CacheRow) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Dir != b.Dir {
			return a.Dir < b.Dir
		}
		if a.FileName != b.FileName {
			return a.FileName < b.FileName
		}
		return a.Kind < b.Kind
	})
}

var _ TaxonomyStore = (*MemoryStore)(nil)
