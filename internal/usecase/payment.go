package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/procuremart/internal/domain/errors"
	"github.com/polkiloo/procuremart/internal/domain/lifecycle"
	"github.com/polkiloo/procuremart/internal/domain/model"
	"github.com/polkiloo/procuremart/internal/domain/repository"
)

// PaymentUseCase reconciles client payment evidence with admin review.
// Every applied action writes exactly one audit entry alongside the order.
type PaymentUseCase struct {
	orders  repository.OrderRepository
	audit   repository.AuditRepository
	updater *OrderUpdater
	now     func() time.Time
}

func NewPaymentUseCase(orders repository.OrderRepository, audit repository.AuditRepository, updater *OrderUpdater) *PaymentUseCase {
	return &PaymentUseCase{orders: orders, audit: audit, updater: updater, now: time.Now}
}

// SubmitReference records the client's bank reference and moves the order to
// AWAITING_CONFIRMATION.
func (u *PaymentUseCase) SubmitReference(ctx context.Context, id uuid.UUID, actor model.Actor, reference string, notes *string) (*model.Order, error) {
	if err := requireRole(actor, model.RoleClient); err != nil {
		return nil, err
	}
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, domainErrors.ErrEmptyReference
	}
	notes = trimOptional(notes)

	target := model.OrderStatusAwaitingConfirmation
	return u.updater.apply(ctx, "submit_reference", id, func(ctx context.Context, current *model.Order) (change, error) {
		if !current.BelongsTo(actor.UserID) {
			return change{}, domainErrors.ErrUnauthorized
		}
		if !lifecycle.CanTransition(current.Status, target) {
			return change{}, domainErrors.InvalidTransition(current.Status, target)
		}
		previous := current.CurrentReference()
		if reference != previous {
			inUse, err := u.orders.PaymentReferenceInUse(ctx, reference, current.ID)
			if err != nil {
				return change{}, err
			}
			if inUse {
				return change{}, domainErrors.ErrDuplicateReference
			}
		}

		now := u.now()
		action := model.PaymentActionReferenceSubmitted
		metadata := map[string]any{}
		if current.PaymentSubmittedAt != nil || current.PaymentReference != nil {
			action = model.PaymentActionReferenceResubmitted
			if previous != "" {
				metadata["previous_reference"] = previous
			}
		}

		patch := model.OrderPatch{
			Status:             &target,
			PaymentReference:   model.Value(reference),
			PaymentSubmittedAt: model.Value(now),
			PaymentConfirmedAt: model.Null[time.Time](),
			PaymentConfirmedBy: model.Null[int64](),
		}
		if notes != nil {
			patch.PaymentNotes = model.Value(*notes)
		}
		return change{
			patch: patch,
			audit: u.entry(current, actor, action, target, &reference, notes, metadata, now),
		}, nil
	})
}

// ConfirmPayment accepts the submitted evidence. Confirming an order that is
// already PAYMENT_CONFIRMED succeeds without writing anything.
func (u *PaymentUseCase) ConfirmPayment(ctx context.Context, id uuid.UUID, actor model.Actor, reference, notes *string) (*model.Order, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}
	reference = trimOptional(reference)
	notes = trimOptional(notes)

	target := model.OrderStatusPaymentConfirmed
	return u.updater.apply(ctx, "confirm_payment", id, func(ctx context.Context, current *model.Order) (change, error) {
		if current.Status == target {
			return change{noop: true}, nil
		}
		if !lifecycle.CanTransition(current.Status, target) {
			return change{}, domainErrors.InvalidTransition(current.Status, target)
		}

		now := u.now()
		patch := model.OrderPatch{
			Status:             &target,
			PaymentConfirmedAt: model.Value(now),
			PaymentConfirmedBy: model.Value(actor.UserID),
		}
		recorded := current.PaymentReference
		if reference != nil && *reference != current.CurrentReference() {
			inUse, err := u.orders.PaymentReferenceInUse(ctx, *reference, current.ID)
			if err != nil {
				return change{}, err
			}
			if inUse {
				return change{}, domainErrors.ErrDuplicateReference
			}
			patch.PaymentReference = model.Value(*reference)
			recorded = reference
		}
		if notes != nil {
			patch.PaymentNotes = model.Value(*notes)
		}

		metadata := map[string]any{}
		if current.Status == model.OrderStatusDisputed {
			metadata["dispute_resolved"] = true
		}
		return change{
			patch: patch,
			audit: u.entry(current, actor, model.PaymentActionPaymentConfirmed, target, recorded, notes, metadata, now),
		}, nil
	})
}

// RejectPayment sends an order under review back to PENDING_PAYMENT with the
// reason in paymentNotes, so the client can resubmit.
func (u *PaymentUseCase) RejectPayment(ctx context.Context, id uuid.UUID, actor model.Actor, reason string) (*model.Order, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domainErrors.ErrEmptyReason
	}

	target := model.OrderStatusPendingPayment
	return u.updater.apply(ctx, "reject_payment", id, func(_ context.Context, current *model.Order) (change, error) {
		if current.Status != model.OrderStatusAwaitingConfirmation {
			return change{}, domainErrors.InvalidTransition(current.Status, target)
		}
		now := u.now()
		return change{
			patch: model.OrderPatch{
				Status:             &target,
				PaymentNotes:       model.Value(reason),
				PaymentConfirmedAt: model.Null[time.Time](),
				PaymentConfirmedBy: model.Null[int64](),
			},
			audit: u.entry(current, actor, model.PaymentActionPaymentRejected, target, current.PaymentReference, &reason, nil, now),
		}, nil
	})
}

// AuditLog returns the order's payment audit entries oldest first.
func (u *PaymentUseCase) AuditLog(ctx context.Context, id uuid.UUID, actor model.Actor) ([]model.PaymentAuditEntry, error) {
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
	return u.audit.ListByOrder(ctx, id)
}

func (u *PaymentUseCase) entry(
	current *model.Order,
	actor model.Actor,
	action model.PaymentAction,
	to model.OrderStatus,
	reference, notes *string,
	metadata map[string]any,
	at time.Time,
) *model.PaymentAuditEntry {
	return &model.PaymentAuditEntry{
		ID:               uuid.New(),
		OrderID:          current.ID,
		ActorUserID:      actor.UserID,
		ActorRole:        actor.Role,
		Action:           action,
		FromStatus:       current.Status,
		ToStatus:         to,
		PaymentReference: reference,
		Notes:            notes,
		Metadata:         metadata,
		CreatedAt:        at,
	}
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
