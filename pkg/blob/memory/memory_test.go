package memory_test

import (
	"context"
	"detector/pkg/blob/memory"
	"detector/pkg/serrors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	data := []byte("payload")
	require.NoError(t, s.Put(ctx, "a", data, "image/png"))
	data[0] = 'X'

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), got)
	require.Equal(t, 1, s.Len())

	require.NoError(t, s.Delete(ctx, "a"))
	require.NoError(t, s.Delete(ctx, "a"))

	_, err = s.Get(ctx, "a")
	require.ErrorIs(t, err, serrors.ErrNotFound)
	require.Zero(t, s.Len())
}
