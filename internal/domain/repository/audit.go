package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/procuremart/internal/domain/model"
)

// AuditRepository reads the append-only payment audit log. Entries are
// written only through OrderRepository.Update.
type AuditRepository interface {
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.PaymentAuditEntry, error)
}
