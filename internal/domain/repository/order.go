package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/procuremart/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	GetByQuoteID(ctx context.Context, quoteID uuid.UUID) (*model.Order, error)
	// Update writes patch to the order. When expected is non-nil the write
	// applies only while the stored status equals *expected. audit, when
	// given, is appended in the same transaction as an applied write.
	// The returned flag is false when the condition matched no row.
	Update(ctx context.Context, id uuid.UUID, expected *model.OrderStatus, patch model.OrderPatch, audit *model.PaymentAuditEntry) (bool, error)
	// PaymentReferenceInUse reports whether any order other than excludeID
	// carries reference.
	PaymentReferenceInUse(ctx context.Context, reference string, excludeID uuid.UUID) (bool, error)
	// ListUpdatedAfter pages through orders in (UpdatedAt, ID) order,
	// returning up to limit orders strictly after the cursor.
	ListUpdatedAfter(ctx context.Context, after model.OrderCursor, limit int) ([]model.Order, error)
}
