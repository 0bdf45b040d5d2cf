package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fsort/internal/export"
	"fsort/internal/storage"
	"fsort/internal/taxonomy"
)

func mkfile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestListEntries(t *testing.T) {
	dir := t.TempDir()
	mkfile(t, filepath.Join(dir, "b.txt"))
	mkfile(t, filepath.Join(dir, "a.png"))
	mkfile(t, filepath.Join(dir, ".hidden"))
	if err := os.Mkdir(filepath.Join(dir, "photos"), 0755); err != nil {
		t.Fatal(err)
	}

	entries, err := listEntries(dir)
	if err != nil {
		t.Fatalf("listEntries: %v", err)
	}

	want := []taxonomy.Entry{
		{FullPath: filepath.Join(dir, "a.png"), Name: "a.png", Kind: taxonomy.File},
		{FullPath: filepath.Join(dir, "b.txt"), Name: "b.txt", Kind: taxonomy.File},
		{FullPath: filepath.Join(dir, "photos"), Name: "photos", Kind: taxonomy.Directory},
	}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d: %+v", len(entries), len(want), entries)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entries[%d] = %+v, want %+v", i, entries[i], want[i])
		}
	}
}

func TestRequireDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	mkfile(t, file)

	if got, err := requireDir(dir + string(filepath.Separator)); err != nil || got != dir {
		t.Errorf("requireDir(dir/) = %q, %v", got, err)
	}
	if _, err := requireDir(file); err == nil {
		t.Error("expected error for a regular file")
	}
	if _, err := requireDir(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for a missing path")
	}
}

func TestDetectKind(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	mkfile(t, file)

	tests := []struct {
		name    string
		path    string
		flag    string
		want    taxonomy.EntryKind
		wantErr bool
	}{
		{"file on disk", file, "", taxonomy.File, false},
		{"dir on disk", dir, "", taxonomy.Directory, false},
		{"flag wins", file, "directory", taxonomy.Directory, false},
		{"missing without flag", filepath.Join(dir, "gone"), "", "", true},
		{"missing with flag", filepath.Join(dir, "gone"), "file", taxonomy.File, false},
		{"bad flag", file, "symlink", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := detectKind(tt.path, tt.flag)
			if (err != nil) != tt.wantErr {
				t.Fatalf("detectKind error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("detectKind = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAssign(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	if err := assign(ctx, store, "/d", "a.png", taxonomy.File, "Images", "Photos", "beach.png"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	row, err := store.Lookup(ctx, "/d", "a.png", taxonomy.File)
	if err != nil || row == nil {
		t.Fatalf("Lookup = %v, %v", row, err)
	}
	if row.Category != "Images" || row.Subcategory != "Photos" || row.NeedsReview || row.SuggestedName != "beach.png" {
		t.Errorf("row = %+v", row)
	}
}

func TestPromptRecategorizer(t *testing.T) {
	ctx := context.Background()
	row := taxonomy.CacheRow{Dir: "/d", FileName: "scan.pdf", Kind: taxonomy.File, NeedsReview: true}

	t.Run("answer is stored", func(t *testing.T) {
		store := storage.NewMemoryStore()
		var out strings.Builder
		recat := promptRecategorizer(store, strings.NewReader("nonsense\nDocuments : Scans\n"), &out)
		recat(row, "unparseable response")

		got, err := store.Lookup(ctx, "/d", "scan.pdf", taxonomy.File)
		if err != nil || got == nil {
			t.Fatalf("Lookup = %v, %v", got, err)
		}
		if got.Category != "Documents" || got.Subcategory != "Scans" || got.NeedsReview {
			t.Errorf("row = %+v", got)
		}
		if !strings.Contains(out.String(), "scan.pdf needs a category: unparseable response") {
			t.Errorf("prompt output:\n%s", out.String())
		}
		if !strings.Contains(out.String(), `"Category : Subcategory"`) {
			t.Errorf("expected a retry hint:\n%s", out.String())
		}
	})

	t.Run("empty answer skips", func(t *testing.T) {
		store := storage.NewMemoryStore()
		var out strings.Builder
		promptRecategorizer(store, strings.NewReader("\n"), &out)(row, "timeout")

		got, err := store.Lookup(ctx, "/d", "scan.pdf", taxonomy.File)
		if err != nil {
			t.Fatal(err)
		}
		if got != nil {
			t.Errorf("expected no row, got %+v", got)
		}
	})

	t.Run("eof stops asking", func(t *testing.T) {
		store := storage.NewMemoryStore()
		var out strings.Builder
		promptRecategorizer(store, strings.NewReader("still nonsense"), &out)(row, "timeout")

		if got, _ := store.Lookup(ctx, "/d", "scan.pdf", taxonomy.File); got != nil {
			t.Errorf("expected no row, got %+v", got)
		}
	})
}

func TestWatchTargets(t *testing.T) {
	dir := t.TempDir()
	mkfile(t, filepath.Join(dir, "a", "b", "f.txt"))
	mkfile(t, filepath.Join(dir, ".git", "HEAD"))

	flat, err := watchTargets(dir, false)
	if err != nil || len(flat) != 1 || flat[0] != dir {
		t.Fatalf("watchTargets(flat) = %v, %v", flat, err)
	}

	all, err := watchTargets(dir, true)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{dir, filepath.Join(dir, "a"), filepath.Join(dir, "a", "b")}
	if strings.Join(all, ",") != strings.Join(want, ",") {
		t.Errorf("watchTargets(recursive) = %v, want %v", all, want)
	}
}

func TestCachedDirs(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	for _, dir := range []string{"/d", "/d/sub", "/d/sub", "/other"} {
		if err := store.UpsertFile(ctx, dir, "f"+filepath.Base(dir), taxonomy.File, taxonomy.Uncategorized, true, ""); err != nil {
			t.Fatal(err)
		}
	}

	dirs, err := cachedDirs(ctx, store, "/d")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(dirs, ",") != "/d,/d/sub" {
		t.Errorf("cachedDirs = %v", dirs)
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		out        string
		format     export.Format
		compressed bool
		want       string
	}{
		{"", export.FormatJSON, false, ""},
		{"plan", export.FormatYAML, false, "plan.yaml"},
		{"plan", export.FormatJSON, true, "plan.json.zst"},
		{"plan.", export.FormatTOML, false, "plan.toml"},
		{"custom.out", export.FormatJSON, true, "custom.out"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := outputPath(tt.out, tt.format, tt.compressed); got != tt.want {
				t.Errorf("outputPath(%q) = %q, want %q", tt.out, got, tt.want)
			}
		})
	}
}
