package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/procuremart/internal/domain/errors"
	"github.com/polkiloo/procuremart/internal/domain/lifecycle"
	"github.com/polkiloo/procuremart/internal/domain/model"
	"github.com/polkiloo/procuremart/internal/domain/repository"
)

// OrderUseCase serves reads and non-payment mutations of orders.
type OrderUseCase struct {
	orders  repository.OrderRepository
	updater *OrderUpdater
	now     func() time.Time
}

func NewOrderUseCase(orders repository.OrderRepository, updater *OrderUpdater) *OrderUseCase {
	return &OrderUseCase{orders: orders, updater: updater, now: time.Now}
}

// Get returns an order visible to actor.
func (u *OrderUseCase) Get(ctx context.Context, id uuid.UUID, actor model.Actor) (*model.Order, error) {
	if err := requireRole(actor, model.RoleAdmin, model.RoleClient, model.RoleSupplier); err != nil {
		return nil, err
	}
	order, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canViewOrder(actor, order) {
		return nil, domainErrors.ErrUnauthorized
	}
	return order, nil
}

// UpdateStatus is the generic status edit available to operators.
func (u *OrderUseCase) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, actor model.Actor) (*model.Order, error) {
	return u.Update(ctx, id, model.OrderPatch{Status: &status}, actor)
}

// Update applies a generic patch. Admins may edit any order, suppliers only
// their own. Payment and verification fields are owned by their workflows
// and cannot be written here, and neither can payment-controlled edges.
func (u *OrderUseCase) Update(ctx context.Context, id uuid.UUID, patch model.OrderPatch, actor model.Actor) (*model.Order, error) {
	if err := requireRole(actor, model.RoleAdmin, model.RoleSupplier); err != nil {
		return nil, err
	}
	if err := checkGenericPatch(patch); err != nil {
		return nil, err
	}
	if patch.Status != nil {
		target := *patch.Status
		if !target.IsValid() {
			return nil, domainErrors.New(domainErrors.KindInvalidInput, fmt.Sprintf("unknown status %q", target))
		}
		if target == model.OrderStatusAwaitingConfirmation || target == model.OrderStatusPaymentConfirmed {
			return nil, paymentControlled("", target)
		}
	}

	return u.updater.apply(ctx, "update_order", id, func(_ context.Context, current *model.Order) (change, error) {
		if actor.Role == model.RoleSupplier && !current.SuppliedBy(actor.UserID) {
			return change{}, domainErrors.ErrUnauthorized
		}
		if patch.Status != nil {
			target := *patch.Status
			if lifecycle.IsPaymentControlled(current.Status, target) {
				return change{}, paymentControlled(current.Status, target)
			}
			if !lifecycle.CanTransition(current.Status, target) {
				return change{}, domainErrors.InvalidTransition(current.Status, target)
			}
		}
		return change{patch: patch}, nil
	})
}

// Verify records the purchase-order verification and advances an order
// waiting for it to PENDING_PAYMENT in the same write.
func (u *OrderUseCase) Verify(ctx context.Context, id uuid.UUID, actor model.Actor) (*model.Order, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}

	return u.updater.apply(ctx, "verify_order", id, func(_ context.Context, current *model.Order) (change, error) {
		if current.AdminVerified {
			return change{noop: true}, nil
		}
		target := model.OrderStatusPendingPayment
		if current.Status != lifecycle.Initial || !lifecycle.CanTransition(current.Status, target) {
			return change{}, domainErrors.InvalidTransition(current.Status, target)
		}
		verified := true
		return change{patch: model.OrderPatch{
			Status:          &target,
			AdminVerified:   &verified,
			AdminVerifiedBy: model.Value(actor.UserID),
			AdminVerifiedAt: model.Value(u.now()),
		}}, nil
	})
}

func checkGenericPatch(p model.OrderPatch) error {
	switch {
	case p.IsEmpty():
		return domainErrors.New(domainErrors.KindInvalidInput, "nothing to update")
	case p.PaymentReference.Set, p.PaymentSubmittedAt.Set, p.PaymentConfirmedAt.Set, p.PaymentConfirmedBy.Set:
		return domainErrors.New(domainErrors.KindInvalidInput, "payment fields are managed by the payment workflow")
	case p.AdminVerified != nil, p.AdminVerifiedBy.Set, p.AdminVerifiedAt.Set:
		return domainErrors.New(domainErrors.KindInvalidInput, "verification fields are managed by order verification")
	}
	return nil
}

func paymentControlled(from, to model.OrderStatus) error {
	e := domainErrors.InvalidTransition(from, to)
	e.Reason = fmt.Sprintf("transition to %s is reserved for the payment workflow", to)
	if from == model.OrderStatusAwaitingConfirmation && to == model.OrderStatusPendingPayment {
		e.Reason = "returning an order under payment review to PENDING_PAYMENT requires a payment rejection"
	}
	return e
}
