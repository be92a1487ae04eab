package domain_test

import (
	"detector/pkg/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJudgment_Severity(t *testing.T) {
	require.Greater(t, domain.JudgmentViolation.Severity(), domain.JudgmentSuspicious.Severity())
	require.Greater(t, domain.JudgmentSuspicious.Severity(), domain.JudgmentUnknown.Severity())
	require.Greater(t, domain.JudgmentUnknown.Severity(), domain.JudgmentClear.Severity())
	require.False(t, domain.Judgment("maybe").Valid())
}

func TestParseJudgment(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Judgment
		ok   bool
	}{
		{in: "○", want: domain.JudgmentClear, ok: true},
		{in: " 〇 ", want: domain.JudgmentClear, ok: true},
		{in: "[×]", want: domain.JudgmentViolation, ok: true},
		{in: "X", want: domain.JudgmentViolation, ok: true},
		{in: "△", want: domain.JudgmentSuspicious, ok: true},
		{in: "？", want: domain.JudgmentUnknown, ok: true},
		{in: "**?**", want: domain.JudgmentUnknown, ok: true},
		{in: "probably fine", ok: false},
		{in: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := domain.ParseJudgment(tt.in)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}
