package service

import (
	"context"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"

	"github.com/sphinxcode/sagecalculator-api/internal/calculator"
	"github.com/sphinxcode/sagecalculator-api/internal/middleware"
	"github.com/sphinxcode/sagecalculator-api/internal/server"
)

// CalculateService delegates chart calculations to the configured engine.
type CalculateService struct {
	calculator calculator.Calculator
}

// NewCalculateService uses the calculator held by the server.
func NewCalculateService(s *server.Server) *CalculateService {
	calc := s.Calculator
	if calc == nil {
		calc = calculator.Unavailable{}
	}
	return &CalculateService{calculator: calc}
}

// Calculate runs the engine inside a New Relic segment when a transaction
// is active. Engine errors keep their type so the error handler can map
// them, and gain a stack trace for the logs.
func (cs *CalculateService) Calculate(ctx context.Context, in calculator.Input) (calculator.Result, error) {
	if txn := newrelic.FromContext(ctx); txn != nil {
		defer txn.StartSegment("calculator.Calculate").End()
	}

	start := time.Now()
	result, err := cs.calculator.Calculate(ctx, in)

	logger := middleware.LoggerFromContext(ctx)
	if err != nil {
		logger.Debug().
			Err(err).
			Str("sub_path", in.SubPath).
			Dur("duration", time.Since(start)).
			Msg("calculation failed")
		return nil, errors.WithStack(err)
	}

	logger.Debug().
		Str("sub_path", in.SubPath).
		Dur("duration", time.Since(start)).
		Msg("calculation completed")

	return result, nil
}
