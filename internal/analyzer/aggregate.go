package analyzer

import "detector/pkg/domain"

const (
	ReasonNoMatches   = "no matching images were found"
	ReasonNeedsReview = "one or more links need manual review"
	ReasonClear       = "no problematic reposts were detected"
)

// Aggregate derives the overall judgment of an item from its records. The
// first × in record order wins with its own reason. Otherwise any △ or ?
// makes the item △, and only all-○ (or no records) yields ○.
func Aggregate(records []domain.AnalysisRecord) (domain.Judgment, string) {
	review := false
	for _, r := range records {
		switch r.Judgment {
		case domain.JudgmentViolation:
			return domain.JudgmentViolation, r.Reason
		case domain.JudgmentClear:
		default:
			review = true
		}
	}

	if review {
		return domain.JudgmentSuspicious, ReasonNeedsReview
	}

	return domain.JudgmentClear, ReasonClear
}
