package metrics_test

import (
	"context"
	"detector/pkg/metrics"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestSetupAndRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	mp, err := metrics.Setup(reg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	rec := metrics.NewGatewayRecorder("vision")
	rec.Record(context.Background(), "search", time.Now().Add(-time.Second), nil)
	rec.Record(context.Background(), "search", time.Now(), errors.New("boom"))

	families, err := reg.Gather()
	require.NoError(t, err)

	found := false
	for _, f := range families {
		if strings.HasPrefix(f.GetName(), "detector_gateway_request_duration") {
			found = true
			require.Len(t, f.GetMetric(), 2)
		}
	}
	require.True(t, found, "gateway histogram not exported")
}

func TestRecord_NilRecorder(t *testing.T) {
	var rec *metrics.GatewayRecorder
	require.NotPanics(t, func() { rec.Record(context.Background(), "op", time.Now(), nil) })
}
