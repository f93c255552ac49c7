package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/procuremart/internal/domain/model"
)

// CreditRepository manages the per-client credit ledger.
type CreditRepository interface {
	GetProfile(ctx context.Context, clientID int64) (*model.CreditProfile, error)
	// Reserve adds amount to creditUsed only if creditUsed still equals
	// expectedUsed and the result stays within the limit.
	Reserve(ctx context.Context, clientID int64, expectedUsed, amount decimal.Decimal) (bool, error)
	// Release subtracts amount from creditUsed.
	Release(ctx context.Context, clientID int64, amount decimal.Decimal) error
	// SetLimit changes the limit only if it is not below creditUsed.
	SetLimit(ctx context.Context, clientID int64, limit decimal.Decimal) (bool, error)
}
