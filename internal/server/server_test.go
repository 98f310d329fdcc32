package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sphinxcode/sagecalculator-api/internal/calculator"
	"github.com/sphinxcode/sagecalculator-api/internal/config"
	"github.com/sphinxcode/sagecalculator-api/internal/metrics"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Server.Port = "0"
	cfg.CORS.AllowOrigins = []string{"*"}
	cfg.Observability = config.DefaultObservabilityConfig()
	return cfg
}

func TestNew_Defaults(t *testing.T) {
	s, err := New(testConfig(), nil, nil)
	require.NoError(t, err)

	assert.IsType(t, calculator.Unavailable{}, s.Calculator)
	assert.NotNil(t, s.Metrics)
	assert.NotNil(t, s.Logger)
	assert.False(t, s.StartedAt.IsZero())
	assert.Nil(t, s.metricsServer)
	assert.Equal(t, 5*time.Second, s.ShutdownTimeout())
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(nil, nil, nil)
	assert.Error(t, err)
}

func TestNew_Options(t *testing.T) {
	calc := calculator.Func(func(context.Context, calculator.Input) (calculator.Result, error) {
		return nil, nil
	})
	m := metrics.New()

	cfg := testConfig()
	cfg.Metrics.Addr = "127.0.0.1:0"

	s, err := New(cfg, nil, nil, WithCalculator(calc), WithMetrics(m), WithCalculator(nil))
	require.NoError(t, err)

	assert.IsType(t, calculator.Func(nil), s.Calculator)
	assert.Same(t, m, s.Metrics)
	require.NotNil(t, s.metricsServer)
	assert.Equal(t, "127.0.0.1:0", s.metricsServer.Addr)
}

func TestStart_RequiresSetup(t *testing.T) {
	s, err := New(testConfig(), nil, nil)
	require.NoError(t, err)

	assert.EqualError(t, s.Start(), "HTTP server not initialized")
}

func TestStartAndShutdown(t *testing.T) {
	s, err := New(testConfig(), nil, nil)
	require.NoError(t, err)
	s.SetupHTTPServer(nil)

	done := make(chan error, 1)
	go func() { done <- s.Start() }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
