package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/procuremart/internal/domain/errors"
	"github.com/polkiloo/procuremart/internal/domain/lifecycle"
	"github.com/polkiloo/procuremart/internal/domain/model"
	"github.com/polkiloo/procuremart/internal/domain/repository"
	testhelpers "github.com/polkiloo/procuremart/internal/test"
)

func (f *fixture) sentQuote(price string) (rfqID, quoteID uuid.UUID) {
	rfqID = f.store.AddRFQ(f.client.UserID)
	quoteID = f.store.AddQuote(rfqID, f.supplier.UserID, dec(price), model.QuoteStatusSentToClient)
	return rfqID, quoteID
}

func TestAcceptQuoteOverLimit(t *testing.T) {
	f := newFixture(t)
	_, quoteID := f.sentQuote("1200")

	_, err := f.quotes.Accept(context.Background(), quoteID, f.client)
	require.ErrorIs(t, err, domainErrors.ErrCreditLimitExceeded)
	assert.True(t, f.store.CreditUsed(f.client.UserID).IsZero())
	assert.Equal(t, 0, f.store.OrderCount())
	assert.Equal(t, model.QuoteStatusSentToClient, f.store.Quote(quoteID).Status)
	assert.Equal(t, float64(1), f.counter(t, "procuremart_credit_limit_rejections_total", nil))
}

func TestAcceptQuoteWithinLimit(t *testing.T) {
	f := newFixture(t)
	rfqID, quoteID := f.sentQuote("800")
	sibling := f.store.AddQuote(rfqID, f.supplier.UserID, dec("900"), model.QuoteStatusPendingAdmin)
	closed := f.store.AddQuote(rfqID, f.supplier.UserID, dec("950"), model.QuoteStatusRejected)

	res, err := f.quotes.Accept(context.Background(), quoteID, f.client)
	require.NoError(t, err)
	require.True(t, res.Created)
	assert.Equal(t, model.QuoteStatusAccepted, res.Quote.Status)
	assert.Equal(t, lifecycle.Initial, res.Order.Status)
	assert.True(t, res.Order.Amount.Equal(dec("800")))
	assert.Equal(t, f.client.UserID, res.Order.ClientID)
	assert.Equal(t, f.supplier.UserID, res.Order.SupplierID)
	require.NotNil(t, res.Order.QuoteID)
	assert.Equal(t, quoteID, *res.Order.QuoteID)
	assert.JSONEq(t, `[{"sku":"A-1","qty":10}]`, string(res.Order.Items))

	assert.True(t, f.store.CreditUsed(f.client.UserID).Equal(dec("800")))
	assert.Equal(t, model.QuoteStatusAccepted, f.store.Quote(quoteID).Status)
	assert.Equal(t, model.QuoteStatusRejected, f.store.Quote(sibling).Status)
	assert.Equal(t, model.QuoteStatusRejected, f.store.Quote(closed).Status)
	assert.Equal(t, model.RFQStatusClosed, f.store.RFQ(rfqID).Status)
}

func TestAcceptQuoteReservesExactPrice(t *testing.T) {
	f := newFixture(t)
	price := testhelpers.RandomAmount(1000)
	rfqID := f.store.AddRFQ(f.client.UserID)
	quoteID := f.store.AddQuote(rfqID, f.supplier.UserID, price, model.QuoteStatusSentToClient)

	res, err := f.quotes.Accept(context.Background(), quoteID, f.client)
	require.NoError(t, err)
	assert.True(t, res.Order.Amount.Equal(price))
	assert.True(t, f.store.CreditUsed(f.client.UserID).Equal(price), "used %s, price %s", f.store.CreditUsed(f.client.UserID), price)
}

func TestAcceptQuoteIsIdempotent(t *testing.T) {
	f := newFixture(t)
	_, quoteID := f.sentQuote("300")

	first, err := f.quotes.Accept(context.Background(), quoteID, f.client)
	require.NoError(t, err)
	second, err := f.quotes.Accept(context.Background(), quoteID, f.client)
	require.NoError(t, err)

	assert.False(t, second.Created)
	assert.Equal(t, first.Order.ID, second.Order.ID)
	assert.Equal(t, 1, f.store.Reserves)
	assert.True(t, f.store.CreditUsed(f.client.UserID).Equal(dec("300")))
	assert.Equal(t, 1, f.store.OrderCount())
}

func TestAcceptQuoteUnconstrainedClient(t *testing.T) {
	f := newFixture(t)
	free := model.Actor{UserID: f.store.AddUser("free", model.RoleClient, decimal.Zero, decimal.Zero), Role: model.RoleClient}
	rfqID := f.store.AddRFQ(free.UserID)
	quoteID := f.store.AddQuote(rfqID, f.supplier.UserID, dec("1000000"), model.QuoteStatusSentToClient)

	res, err := f.quotes.Accept(context.Background(), quoteID, free)
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, 0, f.store.Reserves)
	assert.True(t, f.store.CreditUsed(free.UserID).IsZero())
}

func TestAcceptQuotePreconditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stranger := model.Actor{UserID: f.store.AddUser("stranger", model.RoleClient, dec("1000"), decimal.Zero), Role: model.RoleClient}
	rfqID, quoteID := f.sentQuote("100")
	zero := f.store.AddQuote(rfqID, f.supplier.UserID, decimal.Zero, model.QuoteStatusSentToClient)
	pending := f.store.AddQuote(rfqID, f.supplier.UserID, dec("50"), model.QuoteStatusPendingAdmin)

	_, err := f.quotes.Accept(ctx, quoteID, f.admin)
	require.ErrorIs(t, err, domainErrors.ErrUnauthorized)

	_, err = f.quotes.Accept(ctx, uuid.New(), f.client)
	require.ErrorIs(t, err, domainErrors.ErrQuoteNotFound)

	_, err = f.quotes.Accept(ctx, zero, f.client)
	require.ErrorIs(t, err, domainErrors.ErrInvalidQuoteAmount)

	_, err = f.quotes.Accept(ctx, quoteID, stranger)
	require.ErrorIs(t, err, domainErrors.ErrUnauthorized)

	_, err = f.quotes.Accept(ctx, pending, f.client)
	require.ErrorIs(t, err, domainErrors.ErrQuoteNotAcceptable)

	assert.Equal(t, 0, f.store.OrderCount())
	assert.Equal(t, 0, f.store.Reserves)
}

func TestAcceptQuoteCompensatesFailedInsert(t *testing.T) {
	f := newFixture(t)
	f.store.ForceCreditUsed(f.client.UserID, dec("150"))
	_, quoteID := f.sentQuote("400")
	f.store.CommitErr = errors.New("connection reset")

	_, err := f.quotes.Accept(context.Background(), quoteID, f.client)
	require.ErrorIs(t, err, domainErrors.ErrOrderCreationFailed)
	assert.True(t, f.store.CreditUsed(f.client.UserID).Equal(dec("150")))
	assert.Equal(t, 1, f.store.Reserves)
	assert.Equal(t, 1, f.store.Releases)
	assert.Equal(t, float64(1), f.counter(t, "procuremart_compensations_total",
		map[string]string{"step": "reserve_credit", "result": "ok"}))
}

func TestAcceptQuoteReportsFailedCompensation(t *testing.T) {
	f := newFixture(t)
	_, quoteID := f.sentQuote("400")
	errInsert := errors.New("connection reset")
	errRelease := errors.New("release timed out")
	f.store.CommitErr = errInsert
	f.store.ReleaseErr = errRelease

	_, err := f.quotes.Accept(context.Background(), quoteID, f.client)
	require.ErrorIs(t, err, domainErrors.ErrOrderCreationFailed)
	require.ErrorIs(t, err, errInsert)
	require.ErrorIs(t, err, errRelease)
}

func TestAcceptQuoteLostAcceptanceRace(t *testing.T) {
	f := newFixture(t)
	_, quoteID := f.sentQuote("400")
	f.store.CommitErr = domainErrors.ErrQuoteNotAcceptable

	_, err := f.quotes.Accept(context.Background(), quoteID, f.client)
	require.ErrorIs(t, err, domainErrors.ErrQuoteNotAcceptable)
	assert.True(t, f.store.CreditUsed(f.client.UserID).IsZero())
}

// racingQuotes lets a concurrent acceptance of the same quote win right
// before our own insert.
type racingQuotes struct {
	repository.QuoteRepository
	winner *model.Order
}

func (r *racingQuotes) CommitAcceptance(ctx context.Context, quote *model.Quote, order *model.Order) (*model.Order, error) {
	rival := *order
	rival.ID = uuid.New()
	won, err := r.QuoteRepository.CommitAcceptance(ctx, quote, &rival)
	if err != nil {
		return nil, err
	}
	r.winner = won
	return r.QuoteRepository.CommitAcceptance(ctx, quote, order)
}

func TestAcceptQuoteReturnsConcurrentWinner(t *testing.T) {
	f := newFixture(t)
	_, quoteID := f.sentQuote("400")
	racing := &racingQuotes{QuoteRepository: f.store.Quotes()}
	f.quotes.quotes = racing

	res, err := f.quotes.Accept(context.Background(), quoteID, f.client)
	require.NoError(t, err)
	assert.False(t, res.Created)
	require.NotNil(t, racing.winner)
	assert.Equal(t, racing.winner.ID, res.Order.ID)
	assert.Equal(t, 1, f.store.Releases)
	assert.Equal(t, 1, f.store.OrderCount())
}

func TestAcceptQuoteSiblingFailureIsBestEffort(t *testing.T) {
	f := newFixture(t)
	_, quoteID := f.sentQuote("100")
	f.store.RejectErr = errors.New("timeout")

	res, err := f.quotes.Accept(context.Background(), quoteID, f.client)
	require.NoError(t, err)
	assert.True(t, res.Created)
}

func TestAcceptQuoteRetriesCreditConflict(t *testing.T) {
	f := newFixture(t)
	_, quoteID := f.sentQuote("300")
	bumped := false
	f.store.BeforeReserve = func(clientID int64) {
		if !bumped {
			bumped = true
			f.store.ForceCreditUsed(clientID, dec("200"))
		}
	}

	_, err := f.quotes.Accept(context.Background(), quoteID, f.client)
	require.NoError(t, err)
	assert.True(t, f.store.CreditUsed(f.client.UserID).Equal(dec("500")))
	assert.Equal(t, float64(1), f.counter(t, "procuremart_concurrency_retries_total", map[string]string{"operation": "reserve_credit"}))
}

func TestAcceptQuoteRecheckedLimitAfterConflict(t *testing.T) {
	f := newFixture(t)
	_, quoteID := f.sentQuote("300")
	bumped := false
	f.store.BeforeReserve = func(clientID int64) {
		if !bumped {
			bumped = true
			f.store.ForceCreditUsed(clientID, dec("900"))
		}
	}

	_, err := f.quotes.Accept(context.Background(), quoteID, f.client)
	require.ErrorIs(t, err, domainErrors.ErrCreditLimitExceeded)
	assert.True(t, f.store.CreditUsed(f.client.UserID).Equal(dec("900")))
	assert.Equal(t, 0, f.store.OrderCount())
}

func TestConcurrentAcceptancesStayWithinLimit(t *testing.T) {
	f := newFixture(t)
	var quotes []uuid.UUID
	for i := 0; i < 6; i++ {
		_, id := f.sentQuote("300")
		quotes = append(quotes, id)
	}

	var wg sync.WaitGroup
	for _, id := range quotes {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, _ = f.quotes.Accept(context.Background(), id, f.client)
		}(id)
	}
	wg.Wait()

	used := f.store.CreditUsed(f.client.UserID)
	assert.True(t, used.LessThanOrEqual(dec("1000")), "credit used %s", used)
	assert.True(t, used.Equal(dec("300").Mul(decimal.NewFromInt(int64(f.store.OrderCount())))))
}
