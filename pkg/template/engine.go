// Package template renders {{ name }} placeholders from a flat variable
// map. It has no escaping, no conditionals, no iteration, and no nested
// type.path references: every placeholder is a single variable name.
package template

import (
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)

// Render expands every {{ name }} placeholder in tmpl using vars. A missing
// or nil value renders as the empty string. A template with no placeholders
// is returned unchanged.
func Render(tmpl string, vars map[string]string) string {
	if !HasPlaceholders(tmpl) {
		return tmpl
	}
	return placeholderPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := extractName(match)
		return vars[name]
	})
}

// HasPlaceholders reports whether tmpl contains any {{ name }} token.
func HasPlaceholders(tmpl string) bool {
	return placeholderPattern.MatchString(tmpl)
}

// Variables returns the distinct variable names referenced by tmpl, in
// order of first appearance.
func Variables(tmpl string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(tmpl, -1)
	seen := make(map[string]bool, len(matches))
	var names []string
	for _, m := range matches {
		name := m[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

func extractName(match string) string {
	inner := strings.TrimPrefix(match, "{{")
	inner = strings.TrimSuffix(inner, "}}")
	return strings.TrimSpace(inner)
}
