package analyzer_test

import (
	"detector/internal/analyzer"
	"detector/pkg/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

func records(js ...domain.Judgment) []domain.AnalysisRecord {
	out := make([]domain.AnalysisRecord, len(js))
	for i, j := range js {
		out[i] = domain.AnalysisRecord{Judgment: j, Reason: "reason " + string(j)}
	}

	return out
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name       string
		records    []domain.AnalysisRecord
		want       domain.Judgment
		wantReason string
	}{
		{"empty", nil, domain.JudgmentClear, analyzer.ReasonClear},
		{"all clear", records("○", "○"), domain.JudgmentClear, analyzer.ReasonClear},
		{"unknown taints", records("○", "?"), domain.JudgmentSuspicious, analyzer.ReasonNeedsReview},
		{"suspicious taints", records("△", "○"), domain.JudgmentSuspicious, analyzer.ReasonNeedsReview},
		{"violation wins", records("○", "△", "×", "?"), domain.JudgmentViolation, "reason ×"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := analyzer.Aggregate(tt.records)
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.wantReason, reason)
		})
	}
}

func TestAggregate_FirstViolationReason(t *testing.T) {
	recs := []domain.AnalysisRecord{
		{Judgment: domain.JudgmentClear, Reason: "fine"},
		{Judgment: domain.JudgmentViolation, Reason: "first"},
		{Judgment: domain.JudgmentViolation, Reason: "second"},
	}

	got, reason := analyzer.Aggregate(recs)
	require.Equal(t, domain.JudgmentViolation, got)
	require.Equal(t, "first", reason)
}

func TestAggregate_ViolationRegardlessOfClearCount(t *testing.T) {
	recs := records("○", "○", "○", "○", "○", "○", "○", "○", "×")
	got, _ := analyzer.Aggregate(recs)
	require.Equal(t, domain.JudgmentViolation, got)
}
