package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type outcome int

const (
	outcomeNext outcome = iota
	outcomeDone
	outcomeFail
)

// Result tells the Pipeline what to do after a stage ran.
type Result struct {
	outcome outcome
	err     error
}

// Next continues with the following stage.
func Next() Result { return Result{outcome: outcomeNext} }

// Done stops the chain; the stage already wrote the response.
func Done() Result { return Result{outcome: outcomeDone} }

// Fail stops the chain and hands err to the global error handler.
func Fail(err error) Result { return Result{outcome: outcomeFail, err: err} }

// Stage is one named step of the request pipeline.
type Stage struct {
	Name string
	Run  func(c echo.Context) Result
}

// Pipeline runs its stages in order before the routed handler.
//
// The order is fixed at construction and never changes while serving.
type Pipeline struct {
	stages []Stage
}

// NewPipeline returns a Pipeline running stages in the given order.
func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{stages: append([]Stage(nil), stages...)}
}

// Names returns the stage names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, 0, len(p.stages))
	for _, stage := range p.stages {
		names = append(names, stage.Name)
	}
	return names
}

// Run drives the stages for one request.
//
// It reports whether the request should proceed to the routed handler.
// A non-nil error always means the chain stopped.
func (p *Pipeline) Run(c echo.Context) (bool, error) {
	for _, stage := range p.stages {
		result := stage.Run(c)

		switch result.outcome {
		case outcomeDone:
			return false, nil
		case outcomeFail:
			if result.err == nil {
				// A failing stage must always carry an error.
				return false, errStageFailed(stage.Name)
			}
			return false, result.err
		}
	}
	return true, nil
}

// Middleware exposes the pipeline as a single echo middleware.
func (p *Pipeline) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			proceed, err := p.Run(c)
			if err != nil || !proceed {
				return err
			}
			return next(c)
		}
	}
}

// FromEcho turns an echo middleware that only acts before calling next
// into a Stage.
//
// If the middleware calls next the stage continues, if it returns without
// calling next the stage is Done, and a returned error makes it Fail.
// Middleware that needs to run code after next returns cannot be adapted.
func FromEcho(name string, mw echo.MiddlewareFunc) Stage {
	return Stage{
		Name: name,
		Run: func(c echo.Context) Result {
			reached := false
			handler := mw(func(echo.Context) error {
				reached = true
				return nil
			})

			if err := handler(c); err != nil {
				return Fail(err)
			}
			if reached {
				return Next()
			}
			return Done()
		},
	}
}

func errStageFailed(name string) error {
	return errors.Errorf("pipeline stage %q failed without an error", name)
}
