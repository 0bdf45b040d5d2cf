// Package prompt builds the context blocks appended to classifier prompts.
// Every builder is deterministic: equal input yields byte-identical output.
package prompt

import (
	"fmt"
	"strings"

	"fsort/internal/taxonomy"
)

const (
	categoriesHeader    = "Allowed main categories:"
	subcategoriesHeader = "Allowed subcategories:"
	anyCategories       = "Allowed main categories: any"
	// AnySubcategories is matched literally by collaborators.
	AnySubcategories   = "Allowed subcategories: any"
	closestInstruction = "Choose the closest allowed option."
)

// BuildWhitelistContext describes the allowed categories. It returns "" when
// the whitelist restricts nothing.
func BuildWhitelistContext(wl taxonomy.Whitelist) string {
	wl = wl.Normalized()
	if wl.Empty() {
		return ""
	}

	var b strings.Builder
	if len(wl.Categories) > 0 {
		writeEnumerated(&b, categoriesHeader, wl.Categories)
	} else {
		b.WriteString(anyCategories)
	}
	b.WriteByte('\n')

	if len(wl.Subcategories) > 0 {
		writeEnumerated(&b, subcategoriesHeader, wl.Subcategories)
	} else {
		b.WriteString(AnySubcategories)
	}
	b.WriteByte('\n')

	b.WriteString(closestInstruction)
	return b.String()
}

func writeEnumerated(b *strings.Builder, header string, items []string) {
	b.WriteString(header)
	for i, item := range items {
		fmt.Fprintf(b, "\n%d) %s", i+1, item)
	}
}

// Join concatenates context parts with a blank line between them, skipping
// empty parts. Callers pass whitelist, language and hint in that order.
func Join(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}
