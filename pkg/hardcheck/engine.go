// Package hardcheck implements the deterministic, rule-based checks run
// over every candidate translation.
package hardcheck

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/2nod/evalrunner/pkg/models"
)

// Toggles enables or disables each rule independently.
type Toggles struct {
	NoDisallowedJapanese bool
	GlossaryStrictMatches bool
	MaxLength            bool
	NoMetaTalk           bool
	FormatPreserved      bool
}

// DefaultToggles enables every rule.
func DefaultToggles() Toggles {
	return Toggles{true, true, true, true, true}
}

var metaTalkPattern = regexp.MustCompile(`(?i)as an ai`)

// Run evaluates every enabled rule against the translation and returns the
// ordered results plus the Issues synthesized from failures.
func Run(sourceText, translation string, constraints models.ConstraintSet, toggles Toggles, globalMaxLength int) ([]models.HardCheckResult, []models.Issue) {
	var results []models.HardCheckResult
	var issues []models.Issue

	add := func(id string, passed bool, desc, details string, issueType models.IssueType, severity models.Severity) {
		results = append(results, models.HardCheckResult{ID: id, Passed: passed, Description: desc, Details: details})
		if !passed {
			issues = append(issues, models.Issue{
				Type:          issueType,
				Severity:      severity,
				Rationale:     desc,
				FixSuggestion: "Revise the translation to satisfy: " + desc,
				Confidence:    0.8,
			})
		}
	}

	if toggles.NoDisallowedJapanese {
		passed, details := checkNoDisallowedJapanese(translation, constraints.AllowJapaneseTokens)
		add("noDisallowedJapanese", passed, "translation must contain no disallowed Japanese tokens", details, models.IssueStyleViolation, models.SeverityMajor)
	}

	if toggles.GlossaryStrictMatches {
		passed, details := checkGlossaryStrictMatches(translation, constraints.Glossary)
		add("glossaryStrictMatches", passed, "every strict glossary entry must appear in the translation", details, models.IssueStyleViolation, models.SeverityMinor)
	}

	if toggles.MaxLength {
		if bound, ok := effectiveMaxLength(constraints.Format.MaxChars, globalMaxLength); ok {
			passed := len(translation) <= bound
			add("maxLength", passed, "translation must not exceed the configured length bound", "", models.IssueStyleViolation, models.SeverityMinor)
		}
	}

	if toggles.NoMetaTalk {
		passed := !metaTalkPattern.MatchString(translation)
		add("noMetaTalk", passed, "translation must not contain meta commentary about being an AI", "", models.IssueStyleViolation, models.SeverityMinor)
	}

	if toggles.FormatPreserved {
		if constraints.Format.KeepLineBreaks {
			passed := strings.Count(translation, "\n") == strings.Count(sourceText, "\n")
			add("formatPreserved", passed, "line break count must be preserved", "", models.IssueFormatViolation, models.SeverityMinor)
		}
	}

	return results, issues
}

// effectiveMaxLength computes min(format.maxChars, settings.maxLength)
// when either bound is set.
func effectiveMaxLength(formatMax, globalMax int) (int, bool) {
	switch {
	case formatMax > 0 && globalMax > 0:
		if formatMax < globalMax {
			return formatMax, true
		}
		return globalMax, true
	case formatMax > 0:
		return formatMax, true
	case globalMax > 0:
		return globalMax, true
	default:
		return 0, false
	}
}

func checkNoDisallowedJapanese(translation string, allowed []string) (bool, string) {
	allowedSet := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		allowedSet[a] = true
	}
	for _, tok := range strings.Fields(translation) {
		if allowedSet[tok] {
			continue
		}
		if containsJapanese(tok) {
			return false, "disallowed token: " + tok
		}
	}
	return true, ""
}

func containsJapanese(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r) || unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

func checkGlossaryStrictMatches(translation string, glossary []models.GlossaryEntry) (bool, string) {
	for _, g := range glossary {
		if !g.Strict {
			continue
		}
		if !strings.Contains(translation, g.EN) {
			return false, "missing required term: " + g.EN
		}
	}
	return true, ""
}
