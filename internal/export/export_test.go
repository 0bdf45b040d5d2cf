package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	fserrors "fsort/internal/errors"
	"fsort/internal/maintenance"
	"fsort/internal/taxonomy"
)

func sampleEntries() []maintenance.CachedEntry {
	return []maintenance.CachedEntry{
		{FilePath: "/data", FileName: "a.png", Kind: taxonomy.File, Category: "Images", Subcategory: "Photos", TaxonomyID: 1},
		{FilePath: "/data", FileName: "b.png", Kind: taxonomy.File, Category: "Images", Subcategory: "Photos", TaxonomyID: 1, SuggestedName: "beach.png"},
		{FilePath: "/data", FileName: "bills", Kind: taxonomy.Directory, Category: "Documents", Subcategory: "Invoices", TaxonomyID: 2},
		{FilePath: "/data", FileName: "x.bin", Kind: taxonomy.File, NeedsReview: true},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"yml", FormatYAML, false},
		{"yaml", FormatYAML, false},
		{" toml ", FormatTOML, false},
		{"markdown", FormatMarkdown, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				if !fserrors.Is(err, fserrors.InvalidInput) {
					t.Errorf("ParseFormat(%q) err = %v", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestExtension(t *testing.T) {
	if got := Extension(FormatYAML, false); got != ".yaml" {
		t.Errorf("Extension = %q", got)
	}
	if got := Extension(FormatJSON, true); got != ".json.zst" {
		t.Errorf("Extension = %q", got)
	}
}

func TestNewPlan(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	plan := NewPlan("/data", true, sampleEntries(), now)

	if plan.Pending != 1 {
		t.Errorf("Pending = %d, want 1", plan.Pending)
	}
	if len(plan.Summary) != 2 {
		t.Fatalf("Summary = %+v", plan.Summary)
	}
	if plan.Summary[0] != (CategoryCount{"Images", "Photos", 2}) {
		t.Errorf("Summary[0] = %+v", plan.Summary[0])
	}
	if plan.GeneratedAt.Location() != time.UTC {
		t.Error("GeneratedAt should be UTC")
	}

	empty := NewPlan("/empty", false, nil, now)
	if empty.Entries == nil || len(empty.Summary) != 0 {
		t.Errorf("empty plan = %+v", empty)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	plan := NewPlan("/data", false, sampleEntries(), now)

	for _, format := range []Format{FormatJSON, FormatYAML, FormatTOML} {
		for _, compressed := range []bool{false, true} {
			name := string(format) + Extension(format, compressed)
			t.Run(name, func(t *testing.T) {
				var buf bytes.Buffer
				if err := Write(&buf, plan, format, compressed); err != nil {
					t.Fatalf("Write: %v", err)
				}
				if !compressed && !strings.Contains(buf.String(), "beach.png") {
					t.Errorf("output missing suggested name:\n%s", buf.String())
				}

				got, err := Read(&buf, format, compressed)
				if err != nil {
					t.Fatalf("Read: %v", err)
				}
				if got.Directory != plan.Directory || !got.GeneratedAt.Equal(plan.GeneratedAt) {
					t.Errorf("header = %+v", got)
				}
				if len(got.Entries) != len(plan.Entries) || got.Pending != 1 {
					t.Fatalf("entries = %+v", got.Entries)
				}
				if got.Entries[2].Kind != taxonomy.Directory || got.Entries[1].SuggestedName != "beach.png" {
					t.Errorf("entries = %+v", got.Entries)
				}
				if got.Entries[3].NeedsReview != true || got.Entries[0].TaxonomyID != 1 {
					t.Errorf("entries = %+v", got.Entries)
				}
			})
		}
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, Plan{}, Format("csv"), false); !fserrors.Is(err, fserrors.InvalidInput) {
		t.Errorf("Write err = %v", err)
	}
	if _, err := Read(&buf, Format("csv"), false); !fserrors.Is(err, fserrors.InvalidInput) {
		t.Errorf("Read err = %v", err)
	}
}

func TestRenderMarkdown(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	out := RenderMarkdown(NewPlan("/data", false, sampleEntries(), now))

	for _, want := range []string{
		"# Categorization plan: /data",
		"| Images | Photos | 2 |",
		"### Documents : Invoices\n\n  - bills/\n",
		"  - b.png (rename to beach.png)",
		"### Needs review\n\n  - x.bin\n",
		"Total: 4 entries, 2 categories, 1 pending",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "### Documents") > strings.Index(out, "### Images") {
		t.Error("category sections should be sorted")
	}

	var buf bytes.Buffer
	if err := Write(&buf, NewPlan("/data", false, nil, now), FormatMarkdown, false); err != nil {
		t.Fatalf("Write markdown: %v", err)
	}
	if _, err := Read(&buf, FormatMarkdown, false); !fserrors.Is(err, fserrors.InvalidInput) {
		t.Errorf("markdown should not be readable, err = %v", err)
	}
}
