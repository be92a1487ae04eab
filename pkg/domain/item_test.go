package domain_test

import (
	"detector/pkg/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	all := []domain.ItemStatus{
		domain.ItemStatusWaiting,
		domain.ItemStatusProcessing,
		domain.ItemStatusCompleted,
		domain.ItemStatusError,
	}
	allowed := map[[2]domain.ItemStatus]bool{
		{domain.ItemStatusWaiting, domain.ItemStatusProcessing}:   true,
		{domain.ItemStatusWaiting, domain.ItemStatusError}:        true,
		{domain.ItemStatusProcessing, domain.ItemStatusCompleted}: true,
		{domain.ItemStatusProcessing, domain.ItemStatusError}:     true,
	}

	for _, from := range all {
		for _, to := range all {
			require.Equal(t, allowed[[2]domain.ItemStatus{from, to}], domain.CanTransition(from, to),
				"%s -> %s", from, to)
		}
	}
}

func TestItemStatus_Terminal(t *testing.T) {
	require.False(t, domain.ItemStatusWaiting.Terminal())
	require.False(t, domain.ItemStatusProcessing.Terminal())
	require.True(t, domain.ItemStatusCompleted.Terminal())
	require.True(t, domain.ItemStatusError.Terminal())
	require.False(t, domain.ItemStatus("DONE").Valid())
}
