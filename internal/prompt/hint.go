package prompt

import (
	"strings"

	"fsort/internal/taxonomy"
)

const hintHeader = "Files in this folder were recently categorized as follows; stay consistent when it fits:"

// BuildConsistencyHint lists up to maxCount distinct pairs from siblings,
// most recent first. siblings is ordered oldest to newest.
func BuildConsistencyHint(siblings []taxonomy.ResolvedCategory, maxCount int) string {
	if maxCount <= 0 || len(siblings) == 0 {
		return ""
	}

	seen := make(map[[2]string]struct{}, maxCount)
	lines := make([]string, 0, maxCount)
	for i := len(siblings) - 1; i >= 0 && len(lines) < maxCount; i-- {
		s := siblings[i]
		if s.Category == "" || s.Subcategory == "" {
			continue
		}
		key := [2]string{s.Category, s.Subcategory}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		lines = append(lines, "- "+s.Label())
	}
	if len(lines) == 0 {
		return ""
	}
	return hintHeader + "\n" + strings.Join(lines, "\n")
}
