package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"fsort/internal/maintenance"
	"fsort/internal/taxonomy"
)

// RenderMarkdown renders a plan for people: a category map, the entries
// grouped by category, then the pending ones.
func RenderMarkdown(plan Plan) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Categorization plan: %s\n", plan.Directory)
	fmt.Fprintf(&sb, "# Generated: %s\n\n", plan.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"))

	if len(plan.Summary) > 0 {
		sb.WriteString("## Category Map\n\n")
		sb.WriteString("| Category | Subcategory | Entries |\n")
		sb.WriteString("|----------|-------------|---------|\n")
		for _, c := range plan.Summary {
			fmt.Fprintf(&sb, "| %s | %s | %d |\n", c.Category, c.Subcategory, c.Count)
		}
		sb.WriteString("\n")
	}

	groups := make(map[string][]maintenance.CachedEntry)
	var pending []maintenance.CachedEntry
	for _, e := range plan.Entries {
		label := e.Label()
		if label == "" {
			pending = append(pending, e)
			continue
		}
		groups[label] = append(groups[label], e)
	}

	labels := make([]string, 0, len(groups))
	for l := range groups {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	for _, label := range labels {
		fmt.Fprintf(&sb, "### %s\n\n", label)
		for _, e := range groups[label] {
			sb.WriteString(entryLine(e, plan.Recursive) + "\n")
		}
		sb.WriteString("\n")
	}

	if len(pending) > 0 {
		sb.WriteString("### Needs review\n\n")
		for _, e := range pending {
			sb.WriteString(entryLine(e, plan.Recursive) + "\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("---\n")
	fmt.Fprintf(&sb, "Total: %d entries, %d categories, %d pending\n", len(plan.Entries), len(plan.Summary), plan.Pending)
	return sb.String()
}

func entryLine(e maintenance.CachedEntry, withPath bool) string {
	name := e.FileName
	if withPath {
		name = e.FullPath()
	}
	line := "  - " + name
	if e.Kind == taxonomy.Directory {
		line += "/"
	}
	if e.SuggestedName != "" {
		line += fmt.Sprintf(" (rename to %s)", e.SuggestedName)
	}
	return line
}

func writeMarkdown(w io.Writer, plan Plan) error {
	_, err := io.WriteString(w, RenderMarkdown(plan))
	return err
}
