package service

import (
	"context"
	"fmt"

	"storefront-api/internal/util"

	"go.uber.org/zap"
)

// SagaStep is one step of a saga. Compensate, when set, undoes Run after a
// later critical step fails. A failing BestEffort step is logged and skipped.
type SagaStep struct {
	Name       string
	Run        func(ctx context.Context) error
	Compensate func(ctx context.Context) error
	BestEffort bool
}

// StepError reports the critical step that aborted a saga
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Saga runs an ordered list of steps with compensation
type Saga struct {
	name   string
	steps  []SagaStep
	logger *zap.Logger
}

// NewSaga creates an empty saga
func NewSaga(name string, logger *zap.Logger) *Saga {
	return &Saga{name: name, logger: logger}
}

// AddStep appends a step
func (s *Saga) AddStep(step SagaStep) *Saga {
	s.steps = append(s.steps, step)
	return s
}

// Execute runs the steps in order. When a critical step fails, the
// compensations of the completed steps run in reverse order and the failure
// is returned as a *StepError.
func (s *Saga) Execute(ctx context.Context) error {
	completed := make([]SagaStep, 0, len(s.steps))

	for _, step := range s.steps {
		err := step.Run(ctx)
		if err == nil {
			completed = append(completed, step)
			continue
		}

		if step.BestEffort {
			util.SagaStepFailuresTotal.WithLabelValues(s.name, step.Name, "best_effort").Inc()
			s.logger.Warn("Best-effort saga step failed",
				zap.String("saga", s.name),
				zap.String("step", step.Name),
				zap.Error(err))
			continue
		}

		util.SagaStepFailuresTotal.WithLabelValues(s.name, step.Name, "critical").Inc()
		s.logger.Warn("Saga step failed, compensating",
			zap.String("saga", s.name),
			zap.String("step", step.Name),
			zap.Error(err))
		s.compensate(context.WithoutCancel(ctx), completed)
		return &StepError{Step: step.Name, Err: err}
	}

	return nil
}

// compensate undoes completed steps, newest first
func (s *Saga) compensate(ctx context.Context, completed []SagaStep) {
	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			s.logger.Error("Failed to compensate saga step",
				zap.String("saga", s.name),
				zap.String("step", step.Name),
				zap.Error(err))
		}
	}
}
