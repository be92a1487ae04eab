// Package reply extracts labeled fields from the free-form text returned by a
// generative model. The model is asked to answer with lines such as
//
//	VERDICT: ×
//	REASON: the page offers the whole volume as a download
//
// but its prose is not trusted: a field that cannot be found falls back to a
// fixed value instead of failing.
package reply

import (
	"detector/pkg/domain"
	"strings"
	"unicode"
)

// FallbackReason is used when no reason line can be found.
const FallbackReason = "could not extract a reason from the analysis reply"

// Label aliases accepted for each field, compared case-insensitively.
var (
	VerdictLabels    = []string{"VERDICT", "JUDGMENT", "判定"}            //nolint: gochecknoglobals
	ReasonLabels     = []string{"REASON", "COMMENT", "理由"}              //nolint: gochecknoglobals
	NoteLabels       = []string{"NOTE", "SUPPLEMENT", "補足"}             //nolint: gochecknoglobals
	SimilarityLabels = []string{"SIMILARITY", "類似度"}                     //nolint: gochecknoglobals
	allLabels        = concat(VerdictLabels, ReasonLabels, NoteLabels, SimilarityLabels) //nolint: gochecknoglobals
)

// Verdict is the parsed answer to a content judgment request.
type Verdict struct {
	Judgment domain.Judgment
	Reason   string
	Note     string
	// Parsed is false when the verdict line was missing or unreadable and
	// Judgment holds the fallback.
	Parsed bool
}

// ParseVerdict extracts the verdict, reason and optional note from text.
func ParseVerdict(text string) Verdict {
	out := Verdict{Judgment: domain.JudgmentUnknown, Reason: FallbackReason}

	if v, ok := Field(text, VerdictLabels...); ok {
		if j, ok := domain.ParseJudgment(firstToken(v)); ok {
			out.Judgment = j
			out.Parsed = true
		} else if j, ok := domain.ParseJudgment(v); ok {
			out.Judgment = j
			out.Parsed = true
		}
	}
	if r, ok := Field(text, ReasonLabels...); ok {
		out.Reason = r
	}
	if n, ok := Field(text, NoteLabels...); ok {
		out.Note = n
	}

	return out
}

// Comparison is the parsed answer to an image comparison request.
type Comparison struct {
	Similarity domain.Similarity
	Reason     string
}

// ParseComparison extracts the similarity and reason from text. An unknown
// similarity word yields domain.SimilarityUnknown.
func ParseComparison(text string) Comparison {
	out := Comparison{Similarity: domain.SimilarityUnknown, Reason: FallbackReason}

	if v, ok := Field(text, SimilarityLabels...); ok {
		out.Similarity = parseSimilarity(v)
	}
	if r, ok := Field(text, ReasonLabels...); ok {
		out.Reason = r
	}

	return out
}

// Field returns the value of the first line starting with one of labels
// followed by a colon (ASCII or full-width). Markdown emphasis and list
// markers around the label are ignored. When the value on the label line is
// empty, the next non-empty line that is not itself labeled is used.
func Field(text string, labels ...string) (string, bool) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, line := range lines {
		value, ok := matchLabel(line, labels)
		if !ok {
			continue
		}
		if value != "" {
			return value, true
		}

		for _, next := range lines[i+1:] {
			next = cleanValue(next)
			if next == "" {
				continue
			}
			if _, labeled := matchLabel(next, allLabels); labeled {
				break
			}

			return next, true
		}
	}

	return "", false
}

func matchLabel(line string, labels []string) (string, bool) {
	s := strings.TrimLeftFunc(line, func(r rune) bool {
		return unicode.IsSpace(r) || r == '*' || r == '-' || r == '#' || r == '>' || r == '_'
	})

	for _, label := range labels {
		if len(s) < len(label) || !strings.EqualFold(s[:len(label)], label) {
			continue
		}

		rest := strings.TrimLeft(s[len(label):], " \t*_")
		switch {
		case strings.HasPrefix(rest, ":"):
			rest = rest[len(":"):]
		case strings.HasPrefix(rest, "："):
			rest = rest[len("："):]
		default:
			continue
		}

		return cleanValue(rest), true
	}

	return "", false
}

func cleanValue(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "*_`"))
}

func firstToken(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '(' || r == '（' || r == ',' || r == '、'
	})
	if len(fields) == 0 {
		return ""
	}

	return fields[0]
}

func parseSimilarity(s string) domain.Similarity {
	s = strings.ToLower(firstToken(strings.Trim(s, "[]【】")))
	switch {
	case strings.HasPrefix(s, "identical"), s == "同一":
		return domain.SimilarityIdentical
	case strings.HasPrefix(s, "similar"), s == "類似":
		return domain.SimilaritySimilar
	case strings.HasPrefix(s, "different"), s == "異なる", s == "別物":
		return domain.SimilarityDifferent
	default:
		return domain.SimilarityUnknown
	}
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}

	return out
}
