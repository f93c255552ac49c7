package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/multierr"

	"github.com/polkiloo/procuremart/internal/metrics"
)

type sagaStep struct {
	name string
	do   func(ctx context.Context) error
	undo func(ctx context.Context) error
}

// saga runs steps in order. When a step fails, the undo of every completed
// step runs in reverse order on a context detached from cancellation, and
// undo failures are combined with the step error.
type saga struct {
	steps   []sagaStep
	logger  *slog.Logger
	metrics *metrics.Procurement
}

func (s *saga) add(step sagaStep) {
	s.steps = append(s.steps, step)
}

func (s *saga) run(ctx context.Context) error {
	completed := make([]sagaStep, 0, len(s.steps))
	for _, step := range s.steps {
		if err := step.do(ctx); err != nil {
			return s.compensate(ctx, completed, step.name, err)
		}
		completed = append(completed, step)
	}
	return nil
}

func (s *saga) compensate(ctx context.Context, completed []sagaStep, failed string, cause error) error {
	undoCtx := context.WithoutCancel(ctx)
	err := cause
	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		if step.undo == nil {
			continue
		}
		undoErr := step.undo(undoCtx)
		s.metrics.Compensated(step.name, undoErr != nil)
		if undoErr != nil {
			s.logger.Error("compensation failed", "step", step.name, "failed_step", failed, "error", undoErr)
			err = multierr.Append(err, fmt.Errorf("undo %s: %w", step.name, undoErr))
			continue
		}
		s.logger.Warn("compensation applied", "step", step.name, "failed_step", failed, "error", cause)
	}
	return err
}
