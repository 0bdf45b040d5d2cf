package maintenance

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	fserrors "fsort/internal/errors"
	"fsort/internal/storage"
	"fsort/internal/taxonomy"
)

func seed(t *testing.T, store storage.TaxonomyStore, dir, name string, cat, sub string) {
	t.Helper()
	ctx := context.Background()
	id := taxonomy.Uncategorized
	if cat != "" {
		var err error
		id, err = store.Resolve(ctx, cat, sub)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
	}
	if err := store.UpsertFile(ctx, dir, name, taxonomy.File, id, id == taxonomy.Uncategorized, ""); err != nil {
		t.Fatalf("UpsertFile: %v", err)
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadCachedEntries(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	root := filepath.Join(string(filepath.Separator), "data")
	child := filepath.Join(root, "child")

	seed(t, store, root, "a.png", "Images", "Photos")
	seed(t, store, child, "b.pdf", "Documents", "Invoices")
	seed(t, store, root+"-other", "c.txt", "Text", "Notes")

	tests := []struct {
		name      string
		recursive bool
		want      []string
	}{
		{"flat", false, []string{"a.png"}},
		{"recursive", true, []string{"a.png", "b.pdf"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := LoadCachedEntries(ctx, store, root, tt.recursive)
			if err != nil {
				t.Fatalf("LoadCachedEntries: %v", err)
			}
			if len(entries) != len(tt.want) {
				t.Fatalf("got %d entries, want %d: %+v", len(entries), len(tt.want), entries)
			}
			for i, name := range tt.want {
				if entries[i].FileName != name {
					t.Errorf("entries[%d] = %s, want %s", i, entries[i].FileName, name)
				}
			}
		})
	}

	entries, _ := LoadCachedEntries(ctx, store, root, false)
	e := entries[0]
	if e.FilePath != root || e.Category != "Images" || e.Subcategory != "Photos" || e.Kind != taxonomy.File {
		t.Errorf("entry = %+v", e)
	}
	if e.Label() != "Images : Photos" || e.FullPath() != filepath.Join(root, "a.png") {
		t.Errorf("Label = %q, FullPath = %q", e.Label(), e.FullPath())
	}
}

func TestLoadCachedEntriesInvalid(t *testing.T) {
	ctx := context.Background()
	if _, err := LoadCachedEntries(ctx, nil, "/data", false); !fserrors.Is(err, fserrors.InvalidInput) {
		t.Errorf("nil store err = %v", err)
	}
	if _, err := LoadCachedEntries(ctx, storage.NewMemoryStore(), "", false); !fserrors.Is(err, fserrors.InvalidInput) {
		t.Errorf("empty dir err = %v", err)
	}
}

func TestPendingReview(t *testing.T) {
	entries := []CachedEntry{
		{FileName: "a", TaxonomyID: 1},
		{FileName: "b", TaxonomyID: taxonomy.Uncategorized, NeedsReview: true},
		{FileName: "c", TaxonomyID: 2, NeedsReview: true},
	}
	got := PendingReview(entries)
	if len(got) != 2 || got[0].FileName != "b" || got[1].FileName != "c" {
		t.Errorf("PendingReview = %+v", got)
	}
	if (CachedEntry{}).Label() != "" {
		t.Error("pending entry should have no label")
	}
}

func TestPruneEmptyCachedEntries(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	dir := t.TempDir()

	touch(t, filepath.Join(dir, "kept.png"))
	seed(t, store, dir, "kept.png", "Images", "Photos")
	seed(t, store, dir, "gone.png", "Images", "Photos")
	seed(t, store, dir, "pending.bin", "", "")

	removed, err := PruneEmptyCachedEntries(ctx, store, dir)
	if err != nil {
		t.Fatalf("PruneEmptyCachedEntries: %v", err)
	}
	if len(removed) != 2 {
		t.Fatalf("removed = %+v, want gone.png and pending.bin", removed)
	}
	names := map[string]bool{}
	for _, r := range removed {
		names[r.FileName] = true
	}
	if !names["gone.png"] || !names["pending.bin"] {
		t.Errorf("removed = %+v", removed)
	}

	left, _ := LoadCachedEntries(ctx, store, dir, false)
	if len(left) != 1 || left[0].FileName != "kept.png" {
		t.Errorf("left = %+v", left)
	}

	again, err := PruneEmptyCachedEntries(ctx, store, dir)
	if err != nil || len(again) != 0 {
		t.Errorf("second prune = %+v, %v", again, err)
	}
}
