package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/dmehra2102/payment-status-service/internal/payment/application"
)

func checkCounts(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "payment.completion.checks" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "counter data should be an int64 sum")
			for _, dp := range sum.DataPoints {
				status, _ := dp.Attributes.Value("status")
				counts[status.AsString()] += dp.Value
			}
		}
	}
	return counts
}

func TestService_RecordCheck_CountsByStatus(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	svc := application.NewService(&fakeRepo{}, application.WithMeterProvider(mp))
	ctx := context.Background()

	_, err := svc.RecordCheck(ctx, "txn-1", true, nil, "")
	require.NoError(t, err)

	assert.Equal(t, map[string]int64{"completed": 1}, checkCounts(t, reader))

	_, err = svc.RecordCheck(ctx, "txn-2", false, nil, "")
	require.NoError(t, err)
	_, err = svc.RecordCheck(ctx, " ", true, nil, "")
	require.ErrorIs(t, err, application.ErrMissingTransactionID)

	assert.Equal(t, map[string]int64{"completed": 1, "not_completed": 1}, checkCounts(t, reader))
}

func TestService_RecordCheck_FailedSaveIsNotCounted(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	svc := application.NewService(&fakeRepo{saveErr: assert.AnError}, application.WithMeterProvider(mp))

	_, err := svc.RecordCheck(context.Background(), "txn-1", true, nil, "")
	require.Error(t, err)

	assert.Empty(t, checkCounts(t, reader))
}
