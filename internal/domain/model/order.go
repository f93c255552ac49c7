package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus describes the order fulfillment and payment lifecycle.
type OrderStatus string

const (
	OrderStatusPendingAdminConfirmation OrderStatus = "PENDING_ADMIN_CONFIRMATION"
	OrderStatusPendingPayment           OrderStatus = "PENDING_PAYMENT"
	OrderStatusAwaitingConfirmation     OrderStatus = "AWAITING_CONFIRMATION"
	OrderStatusPaymentConfirmed         OrderStatus = "PAYMENT_CONFIRMED"
	OrderStatusProcessing               OrderStatus = "PROCESSING"
	OrderStatusReadyForPickup           OrderStatus = "READY_FOR_PICKUP"
	OrderStatusPickupScheduled          OrderStatus = "PICKUP_SCHEDULED"
	OrderStatusPickedUp                 OrderStatus = "PICKED_UP"
	OrderStatusOutForDelivery           OrderStatus = "OUT_FOR_DELIVERY"
	OrderStatusInTransit                OrderStatus = "IN_TRANSIT"
	OrderStatusShipped                  OrderStatus = "SHIPPED"
	OrderStatusDelivered                OrderStatus = "DELIVERED"
	OrderStatusCompleted                OrderStatus = "COMPLETED"
	OrderStatusDisputed                 OrderStatus = "DISPUTED"
	OrderStatusCancelled                OrderStatus = "CANCELLED"
	OrderStatusRefunded                 OrderStatus = "REFUNDED"
)

var orderStatuses = []OrderStatus{
	OrderStatusPendingAdminConfirmation,
	OrderStatusPendingPayment,
	OrderStatusAwaitingConfirmation,
	OrderStatusPaymentConfirmed,
	OrderStatusProcessing,
	OrderStatusReadyForPickup,
	OrderStatusPickupScheduled,
	OrderStatusPickedUp,
	OrderStatusOutForDelivery,
	OrderStatusInTransit,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCompleted,
	OrderStatusDisputed,
	OrderStatusCancelled,
	OrderStatusRefunded,
}

// OrderStatuses returns every known status in lifecycle order.
func OrderStatuses() []OrderStatus {
	out := make([]OrderStatus, len(orderStatuses))
	copy(out, orderStatuses)
	return out
}

func (s OrderStatus) IsValid() bool {
	for _, known := range orderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s OrderStatus) String() string { return string(s) }

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	s := OrderStatus(value)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid order status %q", value)
	}
	return s, nil
}

// Order is the unit of fulfillment and payment created from an accepted quote.
type Order struct {
	ID         uuid.UUID
	QuoteID    *uuid.UUID
	ClientID   int64
	SupplierID int64
	Amount     decimal.Decimal
	Status     OrderStatus
	Items      json.RawMessage

	PaymentReference   *string
	PaymentNotes       *string
	PaymentSubmittedAt *time.Time
	PaymentConfirmedAt *time.Time
	PaymentConfirmedBy *int64
	PaymentReceiptURL  *string

	AdminVerified   bool
	AdminVerifiedBy *int64
	AdminVerifiedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BelongsTo reports whether the order was placed by the given client.
func (o *Order) BelongsTo(clientID int64) bool {
	return o != nil && o.ClientID == clientID
}

// SuppliedBy reports whether the order is fulfilled by the given supplier.
func (o *Order) SuppliedBy(supplierID int64) bool {
	return o != nil && o.SupplierID == supplierID
}

// CurrentReference returns the stored payment reference or an empty string.
func (o *Order) CurrentReference() string {
	if o == nil || o.PaymentReference == nil {
		return ""
	}
	return *o.PaymentReference
}

// OrderCursor is a keyset position in the (UpdatedAt, ID) ordering of orders.
type OrderCursor struct {
	UpdatedAt time.Time
	ID        uuid.UUID
}

// Cursor returns the keyset position of o.
func (o Order) Cursor() OrderCursor {
	return OrderCursor{UpdatedAt: o.UpdatedAt, ID: o.ID}
}

// Less reports whether c sorts before other.
func (c OrderCursor) Less(other OrderCursor) bool {
	if !c.UpdatedAt.Equal(other.UpdatedAt) {
		return c.UpdatedAt.Before(other.UpdatedAt)
	}
	return bytes.Compare(c.ID[:], other.ID[:]) < 0
}
