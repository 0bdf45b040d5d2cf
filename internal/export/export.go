// Package export writes categorization plans for a directory as JSON, YAML
// or TOML, optionally zstd-compressed.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	fserrors "fsort/internal/errors"
	"fsort/internal/maintenance"
)

// Format is an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	// FormatMarkdown is write-only.
	FormatMarkdown Format = "md"
)

// ParseFormat accepts json, yaml/yml, toml and md/markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	}
	return "", fserrors.New(fserrors.InvalidInput, fmt.Sprintf("unknown export format %q (want json, yaml, toml or md)", s), nil)
}

// Extension returns the file extension for format, with ".zst" appended
// when compressed.
func Extension(format Format, compressed bool) string {
	ext := "." + string(format)
	if compressed {
		ext += ".zst"
	}
	return ext
}

// CategoryCount is one line of a plan summary.
type CategoryCount struct {
	Category    string `json:"category" yaml:"category" toml:"category"`
	Subcategory string `json:"subcategory" yaml:"subcategory" toml:"subcategory"`
	Count       int    `json:"count" yaml:"count" toml:"count"`
}

// Plan is the exported view of a directory's cache rows.
type Plan struct {
	Directory   string                    `json:"directory" yaml:"directory" toml:"directory"`
	Recursive   bool                      `json:"recursive" yaml:"recursive" toml:"recursive"`
	GeneratedAt time.Time                 `json:"generatedAt" yaml:"generatedAt" toml:"generatedAt"`
	Pending     int                       `json:"pending" yaml:"pending" toml:"pending"`
	Summary     []CategoryCount           `json:"summary" yaml:"summary" toml:"summary"`
	Entries     []maintenance.CachedEntry `json:"entries" yaml:"entries" toml:"entries"`
}

// NewPlan builds a plan and its per-category summary. Pending rows are
// counted but not summarized.
func NewPlan(dir string, recursive bool, entries []maintenance.CachedEntry, now time.Time) Plan {
	counts := make(map[[2]string]int)
	pending := 0
	for _, e := range entries {
		if e.Label() == "" {
			pending++
			continue
		}
		counts[[2]string{e.Category, e.Subcategory}]++
	}

	summary := make([]CategoryCount, 0, len(counts))
	for k, n := range counts {
		summary = append(summary, CategoryCount{Category: k[0], Subcategory: k[1], Count: n})
	}
	sort.Slice(summary, func(i, j int) bool {
		if summary[i].Count != summary[j].Count {
			return summary[i].Count > summary[j].Count
		}
		if summary[i].Category != summary[j].Category {
			return summary[i].Category < summary[j].Category
		}
		return summary[i].Subcategory < summary[j].Subcategory
	})

	if entries == nil {
		entries = []maintenance.CachedEntry{}
	}
	return Plan{
		Directory:   dir,
		Recursive:   recursive,
		GeneratedAt: now.UTC(),
		Pending:     pending,
		Summary:     summary,
		Entries:     entries,
	}
}

// Write encodes plan to w.
func Write(w io.Writer, plan Plan, format Format, compressed bool) (err error) {
	if compressed {
		zw, zerr := zstd.NewWriter(w)
		if zerr != nil {
			return fmt.Errorf("failed to create zstd writer: %w", zerr)
		}
		defer func() {
			if cerr := zw.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to finish zstd stream: %w", cerr)
			}
		}()
		w = zw
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(plan)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		err = enc.Encode(plan)
		if err == nil {
			err = enc.Close()
		}
	case FormatTOML:
		err = toml.NewEncoder(w).Encode(plan)
	case FormatMarkdown:
		err = writeMarkdown(w, plan)
	default:
		return fserrors.New(fserrors.InvalidInput, fmt.Sprintf("unknown export format %q", format), nil)
	}
	if err != nil {
		return fmt.Errorf("failed to encode plan as %s: %w", format, err)
	}
	return nil
}

// Read decodes a plan written by Write.
func Read(r io.Reader, format Format, compressed bool) (Plan, error) {
	if compressed {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return Plan{}, fmt.Errorf("failed to open zstd stream: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	var plan Plan
	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&plan)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&plan)
	case FormatTOML:
		err = toml.NewDecoder(r).Decode(&plan)
	default:
		return Plan{}, fserrors.New(fserrors.InvalidInput, fmt.Sprintf("unknown export format %q", format), nil)
	}
	if err != nil {
		return Plan{}, fmt.Errorf("failed to decode plan as %s: %w", format, err)
	}
	return plan, nil
}
