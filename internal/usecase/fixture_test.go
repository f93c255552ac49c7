package usecase

import (
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/polkiloo/procuremart/internal/domain/model"
	"github.com/polkiloo/procuremart/internal/domain/repository"
	"github.com/polkiloo/procuremart/internal/metrics"
	testhelpers "github.com/polkiloo/procuremart/internal/test"
)

type fixture struct {
	store    *testhelpers.MemoryStore
	registry *prometheus.Registry
	updater  *OrderUpdater
	orders   *OrderUseCase
	payments *PaymentUseCase
	quotes   *QuoteUseCase
	credit   *CreditUseCase

	admin    model.Actor
	client   model.Actor
	supplier model.Actor
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, nil)
}

// newFixtureWith builds use cases over the memory store; wrap, when given,
// decorates the order repository the updater writes through.
func newFixtureWith(t *testing.T, wrap func(repository.OrderRepository) repository.OrderRepository) *fixture {
	t.Helper()
	store := testhelpers.NewMemoryStore()
	reg := prometheus.NewRegistry()
	m := metrics.NewProcurement(reg)
	logger := discardLogger()
	policy := RetryPolicy{MaxAttempts: 2}

	orders := store.Orders()
	if wrap != nil {
		orders = wrap(orders)
	}

	updater := NewOrderUpdater(OrderUpdaterParams{Orders: orders, Policy: policy, Metrics: m, Logger: logger})
	updater.now = store.Now

	orderUC := NewOrderUseCase(store.Orders(), updater)
	orderUC.now = store.Now
	paymentUC := NewPaymentUseCase(store.Orders(), store.Audit(), updater)
	paymentUC.now = store.Now
	quoteUC := NewQuoteUseCase(QuoteUseCaseParams{
		Quotes:  store.Quotes(),
		Orders:  store.Orders(),
		Credit:  store.Credit(),
		Policy:  policy,
		Metrics: m,
		Logger:  logger,
	})
	quoteUC.now = store.Now

	f := &fixture{
		store:    store,
		registry: reg,
		updater:  updater,
		orders:   orderUC,
		payments: paymentUC,
		quotes:   quoteUC,
		credit:   NewCreditUseCase(store.Credit()),
	}
	f.admin = model.Actor{UserID: store.AddUser("admin", model.RoleAdmin, decimal.Zero, decimal.Zero), Role: model.RoleAdmin}
	f.client = model.Actor{UserID: store.AddUser("client", model.RoleClient, dec("1000"), decimal.Zero), Role: model.RoleClient}
	f.supplier = model.Actor{UserID: store.AddUser("supplier", model.RoleSupplier, decimal.Zero, decimal.Zero), Role: model.RoleSupplier}
	return f
}

func (f *fixture) order(status model.OrderStatus) uuid.UUID {
	return f.store.AddOrder(f.client.UserID, f.supplier.UserID, dec("500"), status)
}

func (f *fixture) counter(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	mfs, err := f.registry.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if hasLabels(metric, labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func hasLabels(metric *dto.Metric, labels map[string]string) bool {
	for key, want := range labels {
		found := false
		for _, pair := range metric.GetLabel() {
			if pair.GetName() == key && pair.GetValue() == want {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	return true
}
