package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/polkiloo/procuremart/internal/domain/model"
)

func insertAudit(ctx context.Context, tx pgx.Tx, e *model.PaymentAuditEntry) error {
	metadata := []byte("{}")
	if len(e.Metadata) > 0 {
		encoded, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("encode audit metadata: %w", err)
		}
		metadata = encoded
	}

	// created_at comes from the database clock so entries written by
	// different instances share one time source.
	const query = `INSERT INTO payment_audit_log
                   (id, order_id, actor_user_id, actor_role, action, from_status, to_status, payment_reference, notes, metadata, created_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, clock_timestamp())
                   RETURNING seq, created_at`
	return tx.QueryRow(ctx, query,
		e.ID, e.OrderID, e.ActorUserID, e.ActorRole, e.Action, e.FromStatus, e.ToStatus,
		e.PaymentReference, e.Notes, metadata,
	).Scan(&e.Seq, &e.CreatedAt)
}

func (r *auditRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.PaymentAuditEntry, error) {
	const query = `SELECT seq, id, order_id, actor_user_id, actor_role, action, from_status, to_status, payment_reference, notes, metadata, created_at
                   FROM payment_audit_log WHERE order_id=$1 ORDER BY seq`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.PaymentAuditEntry
	for rows.Next() {
		var (
			e        model.PaymentAuditEntry
			metadata []byte
		)
		if err := rows.Scan(&e.Seq, &e.ID, &e.OrderID, &e.ActorUserID, &e.ActorRole, &e.Action, &e.FromStatus, &e.ToStatus,
			&e.PaymentReference, &e.Notes, &metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
				return nil, fmt.Errorf("decode audit metadata: %w", err)
			}
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
