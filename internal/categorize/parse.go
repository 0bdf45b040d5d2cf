package categorize

import (
	"errors"
	"strings"
	"unicode"
)

// ErrUnparseable means no category pair could be extracted from a response.
var ErrUnparseable = errors.New("no category pair in response")

// ParseResponse extracts (category, subcategory) from free-form classifier
// output. In order of precedence it looks for
//
//	Category: X / Subcategory: Y on separate lines
//	a line "X : Y"
//	a line "X:Y"
//
// Leading "-" and "*" bullets are ignored and both tokens are sanitized for
// use as path segments.
func ParseResponse(response string) (category, subcategory string, err error) {
	lines := responseLines(response)

	var labeledCat, labeledSub string
	var hasLabel bool
	for _, line := range lines {
		if v, ok := labeledValue(line, "subcategory"); ok {
			hasLabel = true
			if labeledSub == "" {
				labeledSub = v
			}
			continue
		}
		if v, ok := labeledValue(line, "category"); ok {
			hasLabel = true
			if labeledCat == "" {
				labeledCat = v
			}
		}
	}
	if c, s := Sanitize(labeledCat), Sanitize(labeledSub); c != "" && s != "" {
		return c, s, nil
	}

	for _, sep := range []string{" : ", ":"} {
		for _, line := range lines {
			if hasLabel && isLabelLine(line) {
				continue
			}
			left, right, ok := strings.Cut(line, sep)
			if !ok {
				continue
			}
			if c, s := Sanitize(left), Sanitize(right); c != "" && s != "" {
				return c, s, nil
			}
		}
	}
	return "", "", ErrUnparseable
}

func responseLines(response string) []string {
	raw := strings.Split(strings.ReplaceAll(response, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-* \t")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// labeledValue matches "<label>:" at the start of line, ignoring case and
// markdown emphasis around the label.
func labeledValue(line, label string) (string, bool) {
	trimmed := strings.TrimLeft(line, "*_ ")
	if len(trimmed) < len(label) || !strings.EqualFold(trimmed[:len(label)], label) {
		return "", false
	}
	rest := strings.TrimLeft(trimmed[len(label):], "*_ \t")
	if !strings.HasPrefix(rest, ":") {
		return "", false
	}
	return strings.TrimSpace(rest[1:]), true
}

func isLabelLine(line string) bool {
	_, cat := labeledValue(line, "category")
	_, sub := labeledValue(line, "subcategory")
	return cat || sub
}

const invalidPathChars = `<>:"/\|?*`

// Sanitize trims a token and removes characters that are invalid in a path
// segment on common filesystems, along with wrapping quotes and emphasis.
func Sanitize(token string) string {
	var b strings.Builder
	for _, r := range token {
		if unicode.IsControl(r) || strings.ContainsRune(invalidPathChars, r) {
			continue
		}
		b.WriteRune(r)
	}
	s := strings.Join(strings.Fields(b.String()), " ")
	s = strings.Trim(s, "'`*_ ")
	// trailing dots and spaces are rejected by Windows
	s = strings.TrimRight(s, ". ")
	return s
}
