package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/procuremart/internal/domain/errors"
	"github.com/polkiloo/procuremart/internal/domain/model"
	"github.com/polkiloo/procuremart/internal/domain/repository"
)

// CreditUseCase exposes the client credit ledger.
type CreditUseCase struct {
	credit repository.CreditRepository
}

func NewCreditUseCase(credit repository.CreditRepository) *CreditUseCase {
	return &CreditUseCase{credit: credit}
}

// Profile returns the ledger of clientID to an admin or to that client.
func (u *CreditUseCase) Profile(ctx context.Context, clientID int64, actor model.Actor) (*model.CreditProfile, error) {
	if err := requireRole(actor, model.RoleAdmin, model.RoleClient); err != nil {
		return nil, err
	}
	if actor.Role == model.RoleClient && actor.UserID != clientID {
		return nil, domainErrors.ErrUnauthorized
	}
	return u.credit.GetProfile(ctx, clientID)
}

// SetLimit changes the credit limit of a client. A limit below the credit
// already in use is refused, so zero (no limit) can only be set while the
// client has no credit in use. Non-client users have no ledger and report
// NotFound.
func (u *CreditUseCase) SetLimit(ctx context.Context, clientID int64, limit decimal.Decimal, actor model.Actor) (*model.CreditProfile, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}
	if limit.IsNegative() {
		return nil, domainErrors.New(domainErrors.KindInvalidCreditLimit, "credit limit must not be negative")
	}

	applied, err := u.credit.SetLimit(ctx, clientID, limit)
	if err != nil {
		return nil, err
	}
	profile, err := u.credit.GetProfile(ctx, clientID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	if !applied {
		return nil, domainErrors.New(domainErrors.KindInvalidCreditLimit,
			fmt.Sprintf("credit limit %s is below credit in use %s", limit.StringFixed(2), profile.CreditUsed.StringFixed(2)))
	}
	return profile, nil
}
