package models

// FormatConstraints controls mechanical shape requirements on a translation.
type FormatConstraints struct {
	KeepLineBreaks    bool `json:"keepLineBreaks,omitempty" yaml:"keepLineBreaks,omitempty"`
	MaxChars          int  `json:"maxChars,omitempty" yaml:"maxChars,omitempty"`
	NoExtraPrefixSuffix bool `json:"noExtraPrefixSuffix,omitempty" yaml:"noExtraPrefixSuffix,omitempty"`
}

// GlossaryEntry pins a single source term to a target rendering.
type GlossaryEntry struct {
	JA     string `json:"ja" yaml:"ja"`
	EN     string `json:"en" yaml:"en"`
	Strict bool   `json:"strict,omitempty" yaml:"strict,omitempty"`
}

// ConstraintPartial is a possibly-incomplete constraint fragment, as found
// on a Scene or in the defaults section of a configuration document. Every
// field is optional; the normalizer merges two partials into a ConstraintSet.
type ConstraintPartial struct {
	TargetLang          string            `json:"targetLang,omitempty" yaml:"targetLang,omitempty"`
	Tone                string            `json:"tone,omitempty" yaml:"tone,omitempty"`
	Register            string            `json:"register,omitempty" yaml:"register,omitempty"`
	ReadingLevel        string            `json:"readingLevel,omitempty" yaml:"readingLevel,omitempty"`
	Format              FormatConstraints `json:"format,omitempty" yaml:"format,omitempty"`
	Glossary            []GlossaryEntry   `json:"glossary,omitempty" yaml:"glossary,omitempty"`
	BannedPatterns      []string          `json:"bannedPatterns,omitempty" yaml:"bannedPatterns,omitempty"`
	AllowJapaneseTokens []string          `json:"allowJapaneseTokens,omitempty" yaml:"allowJapaneseTokens,omitempty"`
}

// ConstraintSet is the fully populated constraint record produced by the
// normalizer (see pkg/constraints) and carried on every Sample.
type ConstraintSet struct {
	TargetLang          string            `json:"targetLang"`
	Tone                string            `json:"tone,omitempty"`
	Register            string            `json:"register,omitempty"`
	ReadingLevel        string            `json:"readingLevel,omitempty"`
	Format              FormatConstraints `json:"format"`
	Glossary            []GlossaryEntry   `json:"glossary,omitempty"`
	BannedPatterns      []string          `json:"bannedPatterns,omitempty"`
	AllowJapaneseTokens []string          `json:"allowJapaneseTokens,omitempty"`
}
