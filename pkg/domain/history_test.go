package domain_test

import (
	"detector/pkg/domain"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestHistory_RoundTrip(t *testing.T) {
	ts := time.Date(2025, 3, 4, 5, 6, 7, 891011121, time.FixedZone("JST", 9*60*60))
	items := []domain.Item{
		{
			ID:        domain.ItemID(uuid.MustParse("11111111-2222-3333-4444-555555555555")),
			Filename:  "cover.png",
			MediaType: "image/png",
			Size:      1024,
			Status:    domain.ItemStatusCompleted,
			Result: &domain.ProcessingResult{
				Judgment: domain.JudgmentSuspicious,
				Reason:   "one or more links need manual review",
				Records: []domain.AnalysisRecord{
					{
						URL:             "https://www.shueisha.co.jp/xyz",
						Domain:          "shueisha.co.jp",
						Classification:  domain.ClassificationOfficial,
						InitialJudgment: domain.JudgmentClear,
						Judgment:        domain.JudgmentClear,
						MatchType:       domain.MatchTypeExact,
					},
					{
						URL:             "https://x.com/someone/status/1",
						Domain:          "x.com",
						Classification:  domain.ClassificationSNS,
						InitialJudgment: domain.JudgmentSuspicious,
						Judgment:        domain.JudgmentSuspicious,
						Note:            "page scans",
						MatchType:       domain.MatchTypePartial,
					},
				},
				Timestamp: ts,
			},
			CreatedAt: ts.Add(-time.Minute),
		},
	}

	b, err := domain.MarshalHistory(items)
	require.NoError(t, err)

	require.Contains(t, string(b), `"id": "11111111-2222-3333-4444-555555555555"`)

	got, err := domain.UnmarshalHistory(b)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, items[0].ID, got[0].ID)
	require.NotNil(t, got[0].Result)
	require.True(t, got[0].Result.Timestamp.Equal(ts))
	require.Len(t, got[0].Result.Records, 2)
	for i, rec := range got[0].Result.Records {
		want := items[0].Result.Records[i]
		require.Equal(t, want.URL, rec.URL)
		require.Equal(t, want.Domain, rec.Domain)
		require.Equal(t, want.Judgment, rec.Judgment)
	}
}

func TestMarshalHistory_Empty(t *testing.T) {
	b, err := domain.MarshalHistory(nil)
	require.NoError(t, err)
	require.JSONEq(t, `[]`, string(b))
}

func TestHistoryFilename(t *testing.T) {
	require.Equal(t, "detection-history-2025-01-31.json",
		domain.HistoryFilename(time.Date(2025, 1, 31, 23, 0, 0, 0, time.UTC)))
}

func TestUnmarshalHistory_InvalidID(t *testing.T) {
	_, err := domain.UnmarshalHistory([]byte(`[{"id": "not-a-uuid"}]`))
	require.Error(t, err)
}

func TestUserID_Text(t *testing.T) {
	id := domain.UserID(uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"))
	b, err := id.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee", string(b))

	var got domain.UserID
	require.NoError(t, got.UnmarshalText(b))
	require.Equal(t, id, got)
}
