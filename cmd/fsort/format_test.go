package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"fsort/internal/categorize"
	fserrors "fsort/internal/errors"
	"fsort/internal/maintenance"
	"fsort/internal/taxonomy"
)

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatHuman, false},
		{"human", FormatHuman, false},
		{"JSON", FormatJSON, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseOutputFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseOutputFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseOutputFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if tt.wantErr && !fserrors.Is(err, fserrors.InvalidInput) {
				t.Errorf("expected INVALID_INPUT, got %v", err)
			}
		})
	}
}

func TestFormatJSON(t *testing.T) {
	resp := struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}{Name: "test", Value: 123}

	result, err := formatJSON(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(result, `"name": "test"`) {
		t.Error("missing name field")
	}
	if !strings.Contains(result, `"value": 123`) {
		t.Error("missing value field")
	}
}

func sampleResults() []categorize.ResolvedEntry {
	return []categorize.ResolvedEntry{
		{
			Entry:    taxonomy.Entry{FullPath: "/d/a.png", Name: "a.png", Kind: taxonomy.File},
			Category: taxonomy.ResolvedCategory{ID: 1, Category: "Images", Subcategory: "Photos"},
			Source:   categorize.SourceCache,
		},
		{
			Entry:    taxonomy.Entry{FullPath: "/d/b.pdf", Name: "b.pdf", Kind: taxonomy.File},
			Category: taxonomy.ResolvedCategory{ID: 2, Category: "Documents", Subcategory: "Invoices"},
			Source:   categorize.SourceClassifier,
		},
		{
			Entry:       taxonomy.Entry{FullPath: "/d/misc", Name: "misc", Kind: taxonomy.Directory},
			Source:      categorize.SourceReview,
			NeedsReview: true,
			Reason:      "unparseable response",
		},
	}
}

func TestNewCategorizeResponse(t *testing.T) {
	resp := newCategorizeResponse("/d", "job-1", "completed", 4, sampleResults())
	if resp.Counts["cache"] != 1 || resp.Counts["classifier"] != 1 || resp.Counts["review"] != 1 {
		t.Errorf("Counts = %v", resp.Counts)
	}

	empty := newCategorizeResponse("/d", "job-2", "cancelled", 0, nil)
	if empty.Results == nil {
		t.Error("Results should be an empty slice, not nil")
	}
	out, err := formatJSON(empty)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"results": []`) {
		t.Errorf("expected empty results array, got %s", out)
	}
}

func TestFormatCategorizeHuman(t *testing.T) {
	out := formatCategorizeHuman(newCategorizeResponse("/d", "job-1", "completed", 4, sampleResults()))

	for _, want := range []string{
		"Directory: /d",
		"a.png",
		"-> Images : Photos [cache]",
		"-> Documents : Invoices [classifier]",
		"misc/",
		"needs review (unparseable response)",
		"3 of 4 entries resolved (completed), cache: 1, classifier: 1, review: 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatCachedHuman(t *testing.T) {
	entries := []maintenance.CachedEntry{
		{FilePath: "/d", FileName: "a.png", Kind: taxonomy.File, Category: "Images", Subcategory: "Photos", TaxonomyID: 1, SuggestedName: "beach.png"},
		{FilePath: "/d/sub", FileName: "x", Kind: taxonomy.Directory, NeedsReview: true},
	}

	flat := formatCachedHuman("/d", entries, false)
	if !strings.Contains(flat, "a.png -> Images : Photos (rename to beach.png)") {
		t.Errorf("flat output:\n%s", flat)
	}
	if !strings.Contains(flat, "x/ -> (needs review)") {
		t.Errorf("flat output:\n%s", flat)
	}
	if !strings.Contains(flat, "2 cached entries") {
		t.Errorf("flat output:\n%s", flat)
	}

	recursive := formatCachedHuman("/d", entries, true)
	if !strings.Contains(recursive, "/d/sub/x/") {
		t.Errorf("recursive output should use full paths:\n%s", recursive)
	}

	if got := formatCachedHuman("/empty", nil, false); !strings.Contains(got, "No cached entries for /empty") {
		t.Errorf("empty output = %q", got)
	}
}

func TestPrintError(t *testing.T) {
	t.Run("coded error lists fixes", func(t *testing.T) {
		var buf bytes.Buffer
		printError(&buf, fserrors.New(fserrors.WhitelistNotFound, `whitelist "media" not found`, nil))
		out := buf.String()
		if !strings.Contains(out, "Suggested fixes:") || !strings.Contains(out, "$ fsort whitelist list") {
			t.Errorf("output:\n%s", out)
		}
	})

	t.Run("plain error", func(t *testing.T) {
		var buf bytes.Buffer
		printError(&buf, errors.New("boom"))
		if got := buf.String(); got != "Error: boom\n" {
			t.Errorf("output = %q", got)
		}
	})
}

func TestFormatWhitelistHuman(t *testing.T) {
	out := formatWhitelistHuman(taxonomy.NewWhitelist("media", []string{"Images", "Video"}, nil))
	if !strings.Contains(out, "Categories:    Images, Video") {
		t.Errorf("output:\n%s", out)
	}
	if !strings.Contains(out, "Subcategories: (any)") {
		t.Errorf("output:\n%s", out)
	}
}

func TestRedact(t *testing.T) {
	tests := map[string]string{
		"":                 "",
		"short":            "****",
		"sk-abcdefgh12345": "****2345",
	}
	for in, want := range tests {
		if got := redact(in); got != want {
			t.Errorf("redact(%q) = %q, want %q", in, got, want)
		}
	}
}
