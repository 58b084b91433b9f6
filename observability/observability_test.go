package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockwatch/stockwatch/logger"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	assert.Equal(t, "localhost:4318", cfg.Endpoint)
	assert.Equal(t, 1.0, cfg.SampleRate)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidateRejectsBadSampleRate(t *testing.T) {
	cfg := Config{SampleRate: 2.0}
	assert.Error(t, cfg.Validate())
}

func TestInitDisabledIsNoOp(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{}, ServiceInfo{Name: "test"}, logger.NewDefault())
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestMetricsRecordWithoutProvider(t *testing.T) {
	metrics, err := NewMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordRequestStart(ctx)
	metrics.RecordRequestEnd(ctx, "GET", "/stocks", 200, 5*time.Millisecond)
	metrics.RecordJobRun(ctx, "stock_refresh", nil, time.Second)
}
