package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"fsort/internal/categorize"
	fserrors "fsort/internal/errors"
	"fsort/internal/maintenance"
	"fsort/internal/taxonomy"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

func parseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatHuman, "":
		return FormatHuman, nil
	}
	return "", fserrors.New(fserrors.InvalidInput, fmt.Sprintf("unsupported format: %s (want human or json)", s), nil)
}

// formatJSON formats the response as JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func writeJSON(w io.Writer, resp interface{}) error {
	out, err := formatJSON(resp)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

// CategorizeResponse is the output of the categorize command.
type CategorizeResponse struct {
	Directory string                     `json:"directory"`
	JobID     string                     `json:"jobId"`
	Status    string                     `json:"status"`
	Total     int                        `json:"total"`
	Counts    map[string]int             `json:"counts"`
	Results   []categorize.ResolvedEntry `json:"results"`
}

func newCategorizeResponse(dir, jobID, status string, total int, results []categorize.ResolvedEntry) *CategorizeResponse {
	counts := make(map[string]int)
	for _, r := range results {
		counts[string(r.Source)]++
	}
	if results == nil {
		results = []categorize.ResolvedEntry{}
	}
	return &CategorizeResponse{
		Directory: dir,
		JobID:     jobID,
		Status:    status,
		Total:     total,
		Counts:    counts,
		Results:   results,
	}
}

func formatCategorizeHuman(resp *CategorizeResponse) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Directory: %s\n", resp.Directory)
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	width := 0
	for _, r := range resp.Results {
		width = max(width, len(displayName(r.Entry.Name, r.Entry.Kind)))
	}
	for _, r := range resp.Results {
		name := displayName(r.Entry.Name, r.Entry.Kind)
		if r.NeedsReview {
			fmt.Fprintf(&b, "  %-*s  ?  needs review (%s)\n", width, name, r.Reason)
			continue
		}
		fmt.Fprintf(&b, "  %-*s  -> %s [%s]\n", width, name, r.Category.Label(), r.Source)
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "%d of %d entries resolved (%s)", len(resp.Results), resp.Total, resp.Status)
	for _, src := range []categorize.Source{categorize.SourceCache, categorize.SourceClassifier, categorize.SourceManual, categorize.SourceReview} {
		if n := resp.Counts[string(src)]; n > 0 {
			fmt.Fprintf(&b, ", %s: %d", src, n)
		}
	}
	b.WriteString("\n")
	return b.String()
}

func formatCachedHuman(dir string, entries []maintenance.CachedEntry, recursive bool) string {
	var b strings.Builder
	if len(entries) == 0 {
		fmt.Fprintf(&b, "No cached entries for %s\n", dir)
		return b.String()
	}

	for _, e := range entries {
		name := displayName(e.FileName, e.Kind)
		if recursive {
			name = displayName(e.FullPath(), e.Kind)
		}
		label := e.Label()
		if label == "" {
			label = "(needs review)"
		}
		line := fmt.Sprintf("  %s -> %s", name, label)
		if e.SuggestedName != "" {
			line += fmt.Sprintf(" (rename to %s)", e.SuggestedName)
		}
		b.WriteString(line + "\n")
	}
	fmt.Fprintf(&b, "\n%d cached entries\n", len(entries))
	return b.String()
}

func displayName(name string, kind taxonomy.EntryKind) string {
	if kind == taxonomy.Directory {
		return name + "/"
	}
	return name
}

// printError writes err and, for coded errors, the suggested fixes.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)

	var fe *fserrors.FsortError
	if !errors.As(err, &fe) || len(fe.SuggestedFixes) == 0 {
		return
	}
	fmt.Fprintln(w, "Suggested fixes:")
	for _, fix := range fe.SuggestedFixes {
		switch {
		case fix.Command != "":
			fmt.Fprintf(w, "  - %s\n    $ %s\n", fix.Description, fix.Command)
		case fix.Key != "":
			fmt.Fprintf(w, "  - %s (config key: %s)\n", fix.Description, fix.Key)
		default:
			fmt.Fprintf(w, "  - %s\n", fix.Description)
		}
	}
}
