package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sphinxcode/sagecalculator-api/internal/calculator"
	"github.com/sphinxcode/sagecalculator-api/internal/config"
	"github.com/sphinxcode/sagecalculator-api/internal/errs"
	"github.com/sphinxcode/sagecalculator-api/internal/server"
)

func newTestServer(t *testing.T, opts ...server.Option) *server.Server {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.CORS.AllowOrigins = []string{"*"}
	cfg.Observability = config.DefaultObservabilityConfig()

	log := zerolog.Nop()
	s, err := server.New(cfg, &log, nil, opts...)
	require.NoError(t, err)
	return s
}

func TestHealthService_Snapshot(t *testing.T) {
	s := newTestServer(t)
	hs := NewHealthService(s)
	hs.now = func() time.Time { return s.StartedAt.Add(1500 * time.Millisecond) }

	snapshot := hs.Snapshot(context.Background())

	assert.True(t, snapshot.Success)
	assert.Equal(t, StatusHealthy, snapshot.Status)
	assert.Equal(t, "1.0.0", snapshot.Version)
	assert.InDelta(t, 1.5, snapshot.Uptime, 1e-9)
	assert.Equal(t, map[string]string{
		"ephemeris":           ServiceOperational,
		"geocoding":           ServiceOperational,
		"human_design_engine": ServiceOperational,
	}, snapshot.Services)

	_, err := time.Parse(time.RFC3339Nano, snapshot.Timestamp)
	assert.NoError(t, err)

	assert.Positive(t, snapshot.Memory.RSS)
	assert.Positive(t, snapshot.Memory.HeapTotal)
	assert.Positive(t, snapshot.Memory.HeapUsed)
	assert.GreaterOrEqual(t, snapshot.Memory.Sys, snapshot.Memory.HeapTotal)
}

func TestHealthService_UptimeNeverNegative(t *testing.T) {
	s := newTestServer(t)
	hs := NewHealthService(s)
	hs.now = func() time.Time { return s.StartedAt.Add(-time.Second) }

	assert.Zero(t, hs.Snapshot(context.Background()).Uptime)
}

func TestHealthService_ConcurrentSnapshots(t *testing.T) {
	hs := NewHealthService(newTestServer(t))

	const workers = 8
	snapshots := make([]*HealthSnapshot, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snapshots[i] = hs.Snapshot(context.Background())
		}(i)
	}
	wg.Wait()

	for i := range snapshots {
		require.NotNil(t, snapshots[i])
		assert.GreaterOrEqual(t, snapshots[i].Uptime, 0.0)
		for j := i + 1; j < workers; j++ {
			assert.NotSame(t, snapshots[i], snapshots[j])
		}
	}

	// Sequential calls observe a non-decreasing uptime.
	first := hs.Snapshot(context.Background())
	second := hs.Snapshot(context.Background())
	assert.GreaterOrEqual(t, second.Uptime, first.Uptime)
}

func TestCalculateService_Unavailable(t *testing.T) {
	cs := NewCalculateService(newTestServer(t))

	_, err := cs.Calculate(context.Background(), calculator.Input{})

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.Status)
}

func TestCalculateService_Delegates(t *testing.T) {
	var got calculator.Input
	calc := calculator.Func(func(_ context.Context, in calculator.Input) (calculator.Result, error) {
		got = in
		return map[string]any{"type": "Projector"}, nil
	})
	cs := NewCalculateService(newTestServer(t, server.WithCalculator(calc)))

	in := calculator.Input{Method: http.MethodPost, SubPath: "bodygraph", Body: map[string]any{"date": "2000-01-01"}}
	result, err := cs.Calculate(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"type": "Projector"}, result)
	assert.Equal(t, in, got)
}

func TestCalculateService_KeepsCause(t *testing.T) {
	cause := errors.New("ephemeris file missing")
	calc := calculator.Func(func(context.Context, calculator.Input) (calculator.Result, error) {
		return nil, cause
	})
	cs := NewCalculateService(newTestServer(t, server.WithCalculator(calc)))

	_, err := cs.Calculate(context.Background(), calculator.Input{})

	assert.ErrorIs(t, err, cause)
}

func TestNewServices(t *testing.T) {
	services := NewServices(newTestServer(t))

	assert.NotNil(t, services.Health)
	assert.NotNil(t, services.Calculate)
}
