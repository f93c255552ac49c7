package postgres

import (
	"context"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/procuremart/internal/domain/errors"
	"github.com/polkiloo/procuremart/internal/domain/model"
)

func (r *creditRepository) GetProfile(ctx context.Context, clientID int64) (*model.CreditProfile, error) {
	const query = `SELECT id, credit_limit, credit_used FROM users WHERE id=$1 AND role=$2`
	var p model.CreditProfile
	if err := r.storage.pool.QueryRow(ctx, query, clientID, model.RoleClient).Scan(&p.ClientID, &p.CreditLimit, &p.CreditUsed); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *creditRepository) Reserve(ctx context.Context, clientID int64, expectedUsed, amount decimal.Decimal) (bool, error) {
	const query = `UPDATE users SET credit_used = credit_used + $3
                   WHERE id=$1 AND credit_used=$2 AND credit_used + $3 <= credit_limit`
	tag, err := r.storage.pool.Exec(ctx, query, clientID, expectedUsed, amount)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *creditRepository) Release(ctx context.Context, clientID int64, amount decimal.Decimal) error {
	const query = `UPDATE users SET credit_used = GREATEST(credit_used - $2, 0) WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, clientID, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

// SetLimit only touches client rows, and only while credit_used fits the new
// limit.
func (r *creditRepository) SetLimit(ctx context.Context, clientID int64, limit decimal.Decimal) (bool, error) {
	const query = `UPDATE users SET credit_limit=$2 WHERE id=$1 AND role=$3 AND credit_used <= $2`
	tag, err := r.storage.pool.Exec(ctx, query, clientID, limit, model.RoleClient)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
