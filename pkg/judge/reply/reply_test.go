package reply_test

import (
	"detector/pkg/domain"
	"detector/pkg/judge/reply"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name string
		text string
		want reply.Verdict
	}{
		{
			name: "plain labels",
			text: "VERDICT: ×\nREASON: The page offers every volume as a free download.\nNOTE: mirrors a known piracy site",
			want: reply.Verdict{
				Judgment: domain.JudgmentViolation,
				Reason:   "The page offers every volume as a free download.",
				Note:     "mirrors a known piracy site",
				Parsed:   true,
			},
		},
		{
			name: "japanese labels with full-width colon",
			text: "判定：○\n理由：出版社公式アカウントの告知です。",
			want: reply.Verdict{
				Judgment: domain.JudgmentClear,
				Reason:   "出版社公式アカウントの告知です。",
				Parsed:   true,
			},
		},
		{
			name: "markdown decoration and trailing words",
			text: "Here is my analysis.\n\n**Verdict:** △ (needs review)\n- **Reason:** Only a cropped panel is shown.",
			want: reply.Verdict{
				Judgment: domain.JudgmentSuspicious,
				Reason:   "Only a cropped panel is shown.",
				Parsed:   true,
			},
		},
		{
			name: "value on the next line",
			text: "VERDICT:\n\n[?]\nREASON:\nThe page could not be loaded.",
			want: reply.Verdict{
				Judgment: domain.JudgmentUnknown,
				Reason:   "The page could not be loaded.",
				Parsed:   true,
			},
		},
		{
			name: "missing verdict falls back",
			text: "I think this is probably fine.",
			want: reply.Verdict{Judgment: domain.JudgmentUnknown, Reason: reply.FallbackReason},
		},
		{
			name: "unreadable verdict keeps reason",
			text: "VERDICT: maybe\nREASON: unclear",
			want: reply.Verdict{Judgment: domain.JudgmentUnknown, Reason: "unclear"},
		},
		{
			name: "empty",
			text: "",
			want: reply.Verdict{Judgment: domain.JudgmentUnknown, Reason: reply.FallbackReason},
		},
		{
			name: "label must be followed by a colon",
			text: "Verdicts vary.\nREASONING: none\nVERDICT: ○",
			want: reply.Verdict{Judgment: domain.JudgmentClear, Reason: reply.FallbackReason, Parsed: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, reply.ParseVerdict(tt.text))
		})
	}
}

func TestParseComparison(t *testing.T) {
	tests := []struct {
		text string
		want reply.Comparison
	}{
		{
			text: "SIMILARITY: different\nREASON: The candidate shows another character.",
			want: reply.Comparison{Similarity: domain.SimilarityDifferent, Reason: "The candidate shows another character."},
		},
		{
			text: "Similarity: Identical.\nReason: same cover",
			want: reply.Comparison{Similarity: domain.SimilarityIdentical, Reason: "same cover"},
		},
		{
			text: "類似度: 類似\n理由: 色調のみ異なる",
			want: reply.Comparison{Similarity: domain.SimilaritySimilar, Reason: "色調のみ異なる"},
		},
		{
			text: "SIMILARITY: can't tell",
			want: reply.Comparison{Similarity: domain.SimilarityUnknown, Reason: reply.FallbackReason},
		},
		{
			text: "no labels at all",
			want: reply.Comparison{Similarity: domain.SimilarityUnknown, Reason: reply.FallbackReason},
		},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			require.Equal(t, tt.want, reply.ParseComparison(tt.text))
		})
	}
}

func TestField_NextLineStopsAtLabel(t *testing.T) {
	_, ok := reply.Field("NOTE:\nVERDICT: ○", reply.NoteLabels...)
	require.False(t, ok)
}
