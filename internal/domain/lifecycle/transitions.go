// Package lifecycle holds the order status transition table.
package lifecycle

import "github.com/polkiloo/procuremart/internal/domain/model"

// Initial is the status every order is created with.
const Initial = model.OrderStatusPendingAdminConfirmation

// AllowedTransitions maps a current status to the statuses it may move to.
// Terminal statuses map to nothing.
var AllowedTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusPendingAdminConfirmation: {
		model.OrderStatusPendingPayment,
		model.OrderStatusCancelled,
	},
	model.OrderStatusPendingPayment: {
		model.OrderStatusAwaitingConfirmation,
		model.OrderStatusCancelled,
	},
	model.OrderStatusAwaitingConfirmation: {
		model.OrderStatusPaymentConfirmed,
		model.OrderStatusPendingPayment,
		model.OrderStatusCancelled,
	},
	model.OrderStatusPaymentConfirmed: {
		model.OrderStatusProcessing,
		model.OrderStatusCancelled,
	},
	model.OrderStatusProcessing: {
		model.OrderStatusReadyForPickup,
		model.OrderStatusCancelled,
	},
	model.OrderStatusReadyForPickup: {
		model.OrderStatusPickupScheduled,
		model.OrderStatusCancelled,
	},
	model.OrderStatusPickupScheduled: {
		model.OrderStatusPickedUp,
		model.OrderStatusOutForDelivery,
		model.OrderStatusCancelled,
	},
	model.OrderStatusPickedUp: {
		model.OrderStatusInTransit,
		model.OrderStatusShipped,
	},
	model.OrderStatusOutForDelivery: {
		model.OrderStatusInTransit,
		model.OrderStatusShipped,
	},
	model.OrderStatusInTransit: {model.OrderStatusDelivered},
	model.OrderStatusShipped:   {model.OrderStatusDelivered},
	model.OrderStatusDelivered: {
		model.OrderStatusCompleted,
		model.OrderStatusDisputed,
	},
	model.OrderStatusDisputed: {
		model.OrderStatusRefunded,
		model.OrderStatusPaymentConfirmed,
	},
	model.OrderStatusCompleted: {},
	model.OrderStatusCancelled: {},
	model.OrderStatusRefunded:  {},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to model.OrderStatus) bool {
	for _, s := range AllowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no edge leaves the status.
func IsTerminal(s model.OrderStatus) bool {
	next, ok := AllowedTransitions[s]
	return ok && len(next) == 0
}

// IsPaymentControlled reports whether the edge may only be taken by the
// payment workflow: entering AWAITING_CONFIRMATION or PAYMENT_CONFIRMED, or
// falling back from AWAITING_CONFIRMATION to PENDING_PAYMENT.
func IsPaymentControlled(from, to model.OrderStatus) bool {
	switch to {
	case model.OrderStatusAwaitingConfirmation, model.OrderStatusPaymentConfirmed:
		return true
	case model.OrderStatusPendingPayment:
		return from == model.OrderStatusAwaitingConfirmation
	}
	return false
}
