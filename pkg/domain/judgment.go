package domain

import "strings"

// Judgment is the four-valued verdict attached to a single URL or to a whole item.
type Judgment string

const (
	// JudgmentClear means no problem was found.
	JudgmentClear Judgment = "○"
	// JudgmentSuspicious means the link needs a manual look.
	JudgmentSuspicious Judgment = "△"
	// JudgmentViolation means the link was confirmed as an unauthorized repost.
	JudgmentViolation Judgment = "×"
	// JudgmentUnknown means no verdict could be reached.
	JudgmentUnknown Judgment = "?"
)

// Severity orders judgments for aggregation: × > △ > ? > ○.
// Unrecognized values rank below ○.
func (j Judgment) Severity() int {
	switch j {
	case JudgmentViolation:
		return 3
	case JudgmentSuspicious:
		return 2
	case JudgmentUnknown:
		return 1
	case JudgmentClear:
		return 0
	default:
		return -1
	}
}

// Valid reports whether j is one of the four known symbols.
func (j Judgment) Valid() bool { return j.Severity() >= 0 }

// judgmentAliases maps look-alike symbols produced by free-form text to the
// canonical judgment.
var judgmentAliases = map[string]Judgment{ //nolint: gochecknoglobals
	"○": JudgmentClear,
	"〇": JudgmentClear,
	"◯": JudgmentClear,
	"o": JudgmentClear,
	"△": JudgmentSuspicious,
	"▲": JudgmentSuspicious,
	"×": JudgmentViolation,
	"✕": JudgmentViolation,
	"✖": JudgmentViolation,
	"x": JudgmentViolation,
	"?": JudgmentUnknown,
	"？": JudgmentUnknown,
}

// ParseJudgment maps s (a symbol, optionally wrapped in brackets) to a
// judgment. The second return value is false when s is not recognized.
func ParseJudgment(s string) (Judgment, bool) {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "[]【】()（）「」*` ")
	j, ok := judgmentAliases[strings.ToLower(s)]

	return j, ok
}
