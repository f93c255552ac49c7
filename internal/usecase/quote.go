package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"

	domainErrors "github.com/polkiloo/procuremart/internal/domain/errors"
	"github.com/polkiloo/procuremart/internal/domain/lifecycle"
	"github.com/polkiloo/procuremart/internal/domain/model"
	"github.com/polkiloo/procuremart/internal/domain/repository"
	"github.com/polkiloo/procuremart/internal/metrics"
)

// QuoteUseCase owns the only path that creates orders.
type QuoteUseCase struct {
	quotes  repository.QuoteRepository
	orders  repository.OrderRepository
	credit  repository.CreditRepository
	policy  RetryPolicy
	metrics *metrics.Procurement
	logger  *slog.Logger
	now     func() time.Time
}

type QuoteUseCaseParams struct {
	fx.In

	Quotes  repository.QuoteRepository
	Orders  repository.OrderRepository
	Credit  repository.CreditRepository
	Policy  RetryPolicy
	Metrics *metrics.Procurement
	Logger  *slog.Logger
}

func NewQuoteUseCase(p QuoteUseCaseParams) *QuoteUseCase {
	return &QuoteUseCase{
		quotes:  p.Quotes,
		orders:  p.Orders,
		credit:  p.Credit,
		policy:  p.Policy,
		metrics: p.Metrics,
		logger:  p.Logger,
		now:     time.Now,
	}
}

// Accept turns a quote sent to the client into an order. Re-accepting a quote
// that already produced an order returns that order without touching credit.
func (u *QuoteUseCase) Accept(ctx context.Context, quoteID uuid.UUID, actor model.Actor) (*model.QuoteAcceptance, error) {
	if err := requireRole(actor, model.RoleClient); err != nil {
		return nil, err
	}

	quote, err := u.quotes.GetByID(ctx, quoteID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.ErrQuoteNotFound
		}
		return nil, err
	}
	if !quote.FinalPrice.IsPositive() {
		return nil, domainErrors.New(domainErrors.KindInvalidQuoteAmount,
			fmt.Sprintf("quote price %s must be positive", quote.FinalPrice.StringFixed(2)))
	}

	rfq, err := u.quotes.GetRFQ(ctx, quote.RFQID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.ErrQuoteNotFound
		}
		return nil, err
	}
	if rfq.ClientID != actor.UserID {
		return nil, domainErrors.ErrUnauthorized
	}

	if existing, err := u.existingOrder(ctx, quote.ID); err != nil || existing != nil {
		if err != nil {
			return nil, err
		}
		return &model.QuoteAcceptance{Quote: quote, Order: existing}, nil
	}

	if quote.Status != model.QuoteStatusSentToClient {
		return nil, domainErrors.New(domainErrors.KindQuoteNotAcceptable,
			fmt.Sprintf("quote is %s, expected %s", quote.Status, model.QuoteStatusSentToClient))
	}

	price := quote.FinalPrice
	profile, err := u.credit.GetProfile(ctx, rfq.ClientID)
	if err != nil {
		return nil, err
	}
	if err := u.admit(*profile, price); err != nil {
		return nil, err
	}

	now := u.now()
	order := &model.Order{
		ID:         uuid.New(),
		QuoteID:    &quote.ID,
		ClientID:   rfq.ClientID,
		SupplierID: quote.SupplierID,
		Amount:     price,
		Status:     lifecycle.Initial,
		Items:      rfq.Items,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	var (
		created  *model.Order
		reserved bool
	)
	tx := &saga{logger: u.logger, metrics: u.metrics}
	if !profile.Unconstrained() {
		tx.add(sagaStep{
			name: "reserve_credit",
			do: func(ctx context.Context) error {
				var err error
				reserved, err = u.reserve(ctx, *profile, price)
				return err
			},
			undo: func(ctx context.Context) error {
				if !reserved {
					return nil
				}
				return u.credit.Release(ctx, rfq.ClientID, price)
			},
		})
	}
	tx.add(sagaStep{
		name: "create_order",
		do: func(ctx context.Context) error {
			var err error
			created, err = u.quotes.CommitAcceptance(ctx, quote, order)
			return err
		},
	})

	if err := tx.run(ctx); err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrAlreadyExists):
			// Lost the race to a concurrent acceptance of the same quote.
			existing, lookupErr := u.existingOrder(ctx, quote.ID)
			if lookupErr == nil && existing != nil {
				return &model.QuoteAcceptance{Quote: quote, Order: existing}, nil
			}
			return nil, domainErrors.Wrap(domainErrors.KindOrderCreationFailed, err, "order creation failed")
		case errors.Is(err, domainErrors.ErrQuoteNotAcceptable),
			errors.Is(err, domainErrors.ErrCreditLimitExceeded),
			errors.Is(err, domainErrors.ErrConcurrentUpdateFailed):
			return nil, err
		default:
			return nil, domainErrors.Wrap(domainErrors.KindOrderCreationFailed, err, "order creation failed")
		}
	}

	if rejected, err := u.quotes.RejectSiblings(ctx, rfq.ID, quote.ID); err != nil {
		u.logger.Warn("failed to reject sibling quotes", "rfq_id", rfq.ID.String(), "quote_id", quote.ID.String(), "error", err)
	} else if rejected > 0 {
		u.logger.Info("sibling quotes rejected", "rfq_id", rfq.ID.String(), "count", rejected)
	}

	quote.Status = model.QuoteStatusAccepted
	return &model.QuoteAcceptance{Quote: quote, Order: created, Created: true}, nil
}

func (u *QuoteUseCase) existingOrder(ctx context.Context, quoteID uuid.UUID) (*model.Order, error) {
	order, err := u.orders.GetByQuoteID(ctx, quoteID)
	if errors.Is(err, domainErrors.ErrNotFound) {
		return nil, nil
	}
	return order, err
}

func (u *QuoteUseCase) admit(profile model.CreditProfile, price decimal.Decimal) error {
	if profile.Unconstrained() || profile.Covers(price) {
		return nil
	}
	u.metrics.CreditRejected()
	return domainErrors.New(domainErrors.KindCreditLimitExceeded,
		fmt.Sprintf("price %s exceeds available credit %s", price.StringFixed(2), profile.Available().StringFixed(2)))
}

// reserve adds price to creditUsed conditionally on the value last read, so a
// concurrent acceptance or limit change forces a fresh admission check. It
// reports false when the limit was removed in the meantime and nothing
// needed reserving.
func (u *QuoteUseCase) reserve(ctx context.Context, profile model.CreditProfile, price decimal.Decimal) (bool, error) {
	reserved := false
	err := u.policy.Run(ctx, func(ctx context.Context, attempt int) error {
		if attempt > 1 {
			u.metrics.Retry("reserve_credit")
			fresh, err := u.credit.GetProfile(ctx, profile.ClientID)
			if err != nil {
				return err
			}
			profile = *fresh
			if profile.Unconstrained() {
				return nil
			}
			if err := u.admit(profile, price); err != nil {
				return err
			}
		}
		applied, err := u.credit.Reserve(ctx, profile.ClientID, profile.CreditUsed, price)
		if err != nil {
			return err
		}
		if applied {
			reserved = true
			return nil
		}
		u.metrics.Conflict("reserve_credit")
		return retry.RetryableError(domainErrors.ErrConcurrentUpdateFailed)
	})
	return reserved, err
}
