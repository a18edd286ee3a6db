// Package constraints merges default and per-sample constraint partials
// into a fully populated constraint record.
package constraints

import (
	"regexp"

	"github.com/2nod/evalrunner/pkg/models"
)

// Normalize merges defaults and sample partials per the field-by-field
// merge semantics: scalars take the sample override when set (falling back
// to defaults, then to "en" for target language); format is shallow-merged;
// list fields are concatenated defaults-then-sample, duplicates retained.
func Normalize(defaults, sample models.ConstraintPartial) (models.ConstraintSet, error) {
	out := models.ConstraintSet{
		TargetLang:   firstNonEmpty(sample.TargetLang, defaults.TargetLang, "en"),
		Tone:         firstNonEmpty(sample.Tone, defaults.Tone),
		Register:     firstNonEmpty(sample.Register, defaults.Register),
		ReadingLevel: firstNonEmpty(sample.ReadingLevel, defaults.ReadingLevel),
		Format:       mergeFormat(defaults.Format, sample.Format),
	}

	out.Glossary = append(append([]models.GlossaryEntry{}, defaults.Glossary...), sample.Glossary...)
	out.BannedPatterns = append(append([]string{}, defaults.BannedPatterns...), sample.BannedPatterns...)
	out.AllowJapaneseTokens = append(append([]string{}, defaults.AllowJapaneseTokens...), sample.AllowJapaneseTokens...)

	if err := validate(out); err != nil {
		return models.ConstraintSet{}, err
	}
	return out, nil
}

func mergeFormat(defaults, sample models.FormatConstraints) models.FormatConstraints {
	merged := defaults
	if sample.KeepLineBreaks {
		merged.KeepLineBreaks = true
	}
	if sample.MaxChars != 0 {
		merged.MaxChars = sample.MaxChars
	}
	if sample.NoExtraPrefixSuffix {
		merged.NoExtraPrefixSuffix = true
	}
	return merged
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func validate(c models.ConstraintSet) error {
	if c.Format.MaxChars < 0 {
		return &models.ValidationError{
			Field:   "format.maxChars",
			Message: "must not be negative",
			Status:  422,
		}
	}
	for _, p := range c.BannedPatterns {
		if _, err := regexp.Compile(p); err != nil {
			return &models.ValidationError{
				Field:   "bannedPatterns",
				Message: "invalid regular expression " + p + ": " + err.Error(),
				Status:  422,
			}
		}
	}
	return nil
}
