package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/fx"

	domainErrors "github.com/polkiloo/procuremart/internal/domain/errors"
	"github.com/polkiloo/procuremart/internal/domain/model"
	"github.com/polkiloo/procuremart/internal/domain/repository"
	"github.com/polkiloo/procuremart/internal/metrics"
)

// change is what an update wants to write against a given current order.
type change struct {
	patch model.OrderPatch
	audit *model.PaymentAuditEntry
	// noop marks the current order as already in the desired state.
	noop bool
}

// planFunc validates the request against current and returns the change
// to apply. It runs once per attempt, so every attempt re-validates against
// the latest persisted order.
type planFunc func(ctx context.Context, current *model.Order) (change, error)

// OrderUpdater is the optimistic-concurrency write path shared by every
// order mutation.
type OrderUpdater struct {
	orders  repository.OrderRepository
	policy  RetryPolicy
	metrics *metrics.Procurement
	logger  *slog.Logger
	now     func() time.Time
}

type OrderUpdaterParams struct {
	fx.In

	Orders  repository.OrderRepository
	Policy  RetryPolicy
	Metrics *metrics.Procurement
	Logger  *slog.Logger
}

func NewOrderUpdater(p OrderUpdaterParams) *OrderUpdater {
	return &OrderUpdater{
		orders:  p.Orders,
		policy:  p.Policy,
		metrics: p.Metrics,
		logger:  p.Logger,
		now:     time.Now,
	}
}

// apply runs the conditional-write protocol:
//  1. read the order,
//  2. plan the change against it (transition and guard checks, no I/O write),
//  3. write conditionally on the status read in step 1,
//  4. on a lost race re-read; an unchanged status fails with
//     ConcurrentUpdateFailed, a changed one is re-planned within the
//     retry budget.
func (u *OrderUpdater) apply(ctx context.Context, op string, id uuid.UUID, plan planFunc) (*model.Order, error) {
	current, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	written := false
	err = u.policy.Run(ctx, func(ctx context.Context, attempt int) error {
		if attempt > 1 {
			u.metrics.Retry(op)
		}

		next, err := plan(ctx, current)
		if err != nil {
			return err
		}
		if next.noop {
			return nil
		}

		expected := current.Status
		applied, err := u.orders.Update(ctx, id, &expected, next.patch, next.audit)
		if err != nil {
			return err
		}
		if applied {
			if next.patch.Status != nil {
				u.metrics.Transition(string(expected), string(*next.patch.Status))
			}
			if next.audit != nil {
				u.metrics.PaymentAction(string(next.audit.Action))
			}
			written = true
			return nil
		}

		u.metrics.Conflict(op)
		latest, err := u.orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if latest.Status == expected {
			u.logger.Warn("conditional order write matched no row", "operation", op, "order_id", id.String(), "status", expected)
			return domainErrors.ErrConcurrentUpdateFailed
		}
		u.logger.Debug("order changed concurrently, revalidating",
			"operation", op, "order_id", id.String(), "from", expected, "now", latest.Status, "attempt", attempt)
		current = latest
		return retry.RetryableError(domainErrors.ErrConcurrentUpdateFailed)
	})
	if err != nil {
		return nil, err
	}
	if !written {
		return current, nil
	}
	return u.orders.GetByID(ctx, id)
}
