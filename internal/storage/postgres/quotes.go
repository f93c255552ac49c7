package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/procuremart/internal/domain/errors"
	"github.com/polkiloo/procuremart/internal/domain/model"
)

func (r *quoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Quote, error) {
	const query = `SELECT id, rfq_id, supplier_id, supplier_price, margin_percent, final_price, status, created_at, updated_at
                   FROM quotes WHERE id=$1`
	var q model.Quote
	err := r.storage.pool.QueryRow(ctx, query, id).Scan(
		&q.ID, &q.RFQID, &q.SupplierID, &q.SupplierPrice, &q.MarginPercent, &q.FinalPrice, &q.Status, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &q, nil
}

func (r *quoteRepository) GetRFQ(ctx context.Context, id uuid.UUID) (*model.RFQ, error) {
	const query = `SELECT id, client_id, status, items, created_at, updated_at FROM rfqs WHERE id=$1`
	var rfq model.RFQ
	err := r.storage.pool.QueryRow(ctx, query, id).Scan(&rfq.ID, &rfq.ClientID, &rfq.Status, &rfq.Items, &rfq.CreatedAt, &rfq.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &rfq, nil
}

func (r *quoteRepository) CommitAcceptance(ctx context.Context, quote *model.Quote, order *model.Order) (*model.Order, error) {
	created := *order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		insert := `INSERT INTO orders (id, quote_id, client_id, supplier_id, amount, status) VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at, updated_at`
		args := []any{created.ID, created.QuoteID, created.ClientID, created.SupplierID, created.Amount, created.Status}
		if created.Items != nil && r.storage.columns.has("items") {
			insert = `INSERT INTO orders (id, quote_id, client_id, supplier_id, amount, status, items) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at, updated_at`
			args = append(args, []byte(created.Items))
		}
		if err := tx.QueryRow(ctx, insert, args...).Scan(&created.CreatedAt, &created.UpdatedAt); err != nil {
			if isUniqueViolation(err, constraintOrderQuote) {
				return domainErrors.ErrAlreadyExists
			}
			return err
		}

		tag, err := tx.Exec(ctx, `UPDATE quotes SET status=$1, updated_at=NOW() WHERE id=$2 AND status=$3`,
			model.QuoteStatusAccepted, quote.ID, model.QuoteStatusSentToClient)
		if err != nil {
			if isUniqueViolation(err, constraintAcceptedQuote) {
				return domainErrors.New(domainErrors.KindQuoteNotAcceptable, "another quote of this rfq is already accepted")
			}
			return err
		}
		if tag.RowsAffected() == 0 {
			return domainErrors.New(domainErrors.KindQuoteNotAcceptable, "quote is no longer awaiting client acceptance")
		}

		if _, err := tx.Exec(ctx, `UPDATE rfqs SET status=$1, updated_at=NOW() WHERE id=$2`, model.RFQStatusClosed, quote.RFQID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *quoteRepository) RejectSiblings(ctx context.Context, rfqID, acceptedID uuid.UUID) (int64, error) {
	const query = `UPDATE quotes SET status=$1, updated_at=NOW()
                   WHERE rfq_id=$2 AND id<>$3 AND status IN ($4, $5)`
	tag, err := r.storage.pool.Exec(ctx, query, model.QuoteStatusRejected, rfqID, acceptedID,
		model.QuoteStatusPendingAdmin, model.QuoteStatusSentToClient)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
