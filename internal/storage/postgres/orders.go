package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/procuremart/internal/domain/errors"
	"github.com/polkiloo/procuremart/internal/domain/model"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.QuoteID, &o.ClientID, &o.SupplierID, &o.Amount, &o.Status, &o.Items,
		&o.PaymentReference, &o.PaymentNotes, &o.PaymentSubmittedAt, &o.PaymentConfirmedAt,
		&o.PaymentConfirmedBy, &o.PaymentReceiptURL,
		&o.AdminVerified, &o.AdminVerifiedBy, &o.AdminVerifiedAt,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + r.storage.columns.selectList() + ` FROM orders WHERE id=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return order, nil
}

func (r *orderRepository) GetByQuoteID(ctx context.Context, quoteID uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + r.storage.columns.selectList() + ` FROM orders WHERE quote_id=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, quoteID))
	if err != nil {
		return nil, notFound(err)
	}
	return order, nil
}

func (r *orderRepository) ListUpdatedAfter(ctx context.Context, after model.OrderCursor, limit int) ([]model.Order, error) {
	query := `SELECT ` + r.storage.columns.selectList() + ` FROM orders
              WHERE (updated_at, id) > ($1, $2) ORDER BY updated_at, id LIMIT $3`
	rows, err := r.storage.pool.Query(ctx, query, after.UpdatedAt, after.ID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) PaymentReferenceInUse(ctx context.Context, reference string, excludeID uuid.UUID) (bool, error) {
	if !r.storage.columns.has("payment_reference") {
		return false, nil
	}
	const query = `SELECT EXISTS (SELECT 1 FROM orders WHERE payment_reference=$1 AND id<>$2)`
	var inUse bool
	if err := r.storage.pool.QueryRow(ctx, query, reference, excludeID).Scan(&inUse); err != nil {
		return false, err
	}
	return inUse, nil
}

type assignment struct {
	column string
	value  any
}

func appendAssign[T any](out []assignment, column string, a model.Assign[T]) []assignment {
	if !a.Set {
		return out
	}
	var v any
	if a.Value != nil {
		v = *a.Value
	}
	return append(out, assignment{column: column, value: v})
}

func patchAssignments(p model.OrderPatch) []assignment {
	var out []assignment
	if p.Status != nil {
		out = append(out, assignment{column: "status", value: *p.Status})
	}
	if p.Items != nil {
		out = append(out, assignment{column: "items", value: []byte(p.Items)})
	}
	out = appendAssign(out, "payment_reference", p.PaymentReference)
	out = appendAssign(out, "payment_notes", p.PaymentNotes)
	out = appendAssign(out, "payment_submitted_at", p.PaymentSubmittedAt)
	out = appendAssign(out, "payment_confirmed_at", p.PaymentConfirmedAt)
	out = appendAssign(out, "payment_confirmed_by", p.PaymentConfirmedBy)
	out = appendAssign(out, "payment_receipt_url", p.PaymentReceiptURL)
	if p.AdminVerified != nil {
		out = append(out, assignment{column: "admin_verified", value: *p.AdminVerified})
	}
	out = appendAssign(out, "admin_verified_by", p.AdminVerifiedBy)
	out = appendAssign(out, "admin_verified_at", p.AdminVerifiedAt)
	return out
}

func without(assigns []assignment, column string) []assignment {
	out := make([]assignment, 0, len(assigns))
	for _, a := range assigns {
		if a.column != column {
			out = append(out, a)
		}
	}
	return out
}

// supported drops assignments to optional columns the probe found missing.
func (r *orderRepository) supported(id uuid.UUID, assigns []assignment) []assignment {
	out := assigns[:0:0]
	for _, a := range assigns {
		if _, optional := optionalOrderColumns[a.column]; optional && !r.storage.columns.has(a.column) {
			r.storage.logger.Warn("dropping unsupported order field", "field", a.column, "order_id", id.String())
			continue
		}
		out = append(out, a)
	}
	return out
}

func buildOrderUpdate(id uuid.UUID, expected *model.OrderStatus, assigns []assignment) (string, []any) {
	var b strings.Builder
	args := make([]any, 0, len(assigns)+2)
	b.WriteString("UPDATE orders SET ")
	for _, a := range assigns {
		args = append(args, a.value)
		fmt.Fprintf(&b, "%s=$%d, ", a.column, len(args))
	}
	args = append(args, id)
	fmt.Fprintf(&b, "updated_at=NOW() WHERE id=$%d", len(args))
	if expected != nil {
		args = append(args, *expected)
		fmt.Fprintf(&b, " AND status=$%d", len(args))
	}
	return b.String(), args
}

func (r *orderRepository) Update(ctx context.Context, id uuid.UUID, expected *model.OrderStatus, patch model.OrderPatch, audit *model.PaymentAuditEntry) (bool, error) {
	assigns := r.supported(id, patchAssignments(patch))
	for {
		applied, err := r.apply(ctx, id, expected, assigns, audit)
		if err == nil {
			return applied, nil
		}
		if isUniqueViolation(err, constraintPaymentReference) {
			return false, domainErrors.Wrap(domainErrors.KindDuplicateReference, err, "payment reference already in use")
		}

		// Fallback for drift that happened after the startup probe.
		col, ok := undefinedColumn(err)
		if !ok {
			return false, err
		}
		if _, optional := optionalOrderColumns[col]; !optional {
			return false, err
		}
		next := without(assigns, col)
		if len(next) == len(assigns) {
			return false, err
		}
		r.storage.columns.forget(col)
		r.storage.logger.Warn("dropping unsupported order field", "field", col, "order_id", id.String())
		assigns = next
	}
}

func (r *orderRepository) apply(ctx context.Context, id uuid.UUID, expected *model.OrderStatus, assigns []assignment, audit *model.PaymentAuditEntry) (bool, error) {
	query, args := buildOrderUpdate(id, expected, assigns)
	var applied bool
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		applied = true
		if audit != nil {
			return insertAudit(ctx, tx, audit)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}
