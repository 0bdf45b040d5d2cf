package taxonomy

import "strings"

// Whitelist restricts the categories a classifier may answer with.
// Empty Categories or Subcategories means that side is unrestricted.
type Whitelist struct {
	Name          string   `json:"name" toml:"name" yaml:"name"`
	Categories    []string `json:"categories" toml:"categories" yaml:"categories"`
	Subcategories []string `json:"subcategories,omitempty" toml:"subcategories" yaml:"subcategories,omitempty"`
}

// NewWhitelist trims and deduplicates both lists, keeping first-occurrence
// order and dropping blanks.
func NewWhitelist(name string, categories, subcategories []string) Whitelist {
	return Whitelist{
		Name:          strings.TrimSpace(name),
		Categories:    dedup(categories),
		Subcategories: dedup(subcategories),
	}
}

// Normalized returns w passed through NewWhitelist.
func (w Whitelist) Normalized() Whitelist {
	return NewWhitelist(w.Name, w.Categories, w.Subcategories)
}

// Empty reports whether neither side is restricted.
func (w Whitelist) Empty() bool {
	return len(w.Categories) == 0 && len(w.Subcategories) == 0
}

// AllowsCategory reports whether c is allowed. Matching ignores case.
func (w Whitelist) AllowsCategory(c string) bool {
	return allows(w.Categories, c)
}

// AllowsSubcategory reports whether s is allowed. Matching ignores case.
func (w Whitelist) AllowsSubcategory(s string) bool {
	return allows(w.Subcategories, s)
}

func allows(list []string, v string) bool {
	if len(list) == 0 {
		return true
	}
	v = strings.TrimSpace(v)
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}

func dedup(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
