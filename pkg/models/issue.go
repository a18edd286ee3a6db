package models

// IssueType classifies a reviewer-found defect in a candidate translation.
type IssueType string

const (
	IssueMistranslation     IssueType = "MISTRANSLATION"
	IssueOmission           IssueType = "OMISSION"
	IssueAddition           IssueType = "ADDITION"
	IssueTermInconsistency  IssueType = "TERM_INCONSISTENCY"
	IssuePronounReference   IssueType = "PRONOUN_REFERENCE"
	IssueSpeakerMismatch    IssueType = "SPEAKER_MISMATCH"
	IssueStyleViolation     IssueType = "STYLE_VIOLATION"
	IssueFormatViolation    IssueType = "FORMAT_VIOLATION"
	IssueSafetyOrPolicy     IssueType = "SAFETY_OR_POLICY"
	IssueOther              IssueType = "OTHER"
)

// Severity ranks how much an Issue should weigh on the final status.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
)

// Issue is one reviewer-found defect, emitted by the verifier and consumed
// by the repairer.
type Issue struct {
	ID            string    `json:"id"`
	Type          IssueType `json:"type"`
	Severity      Severity  `json:"severity"`
	Rationale     string    `json:"rationale"`
	FixSuggestion string    `json:"fixSuggestion,omitempty"`
	Confidence    float64   `json:"confidence"`
}

// HasCritical reports whether any issue in the slice is severity=critical.
func HasCritical(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
