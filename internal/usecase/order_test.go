package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/procuremart/internal/domain/errors"
	"github.com/polkiloo/procuremart/internal/domain/lifecycle"
	"github.com/polkiloo/procuremart/internal/domain/model"
	"github.com/polkiloo/procuremart/internal/domain/repository"
)

// missingWrites reports a lost conditional write without changing anything,
// the way a transient store fault looks to the caller.
type missingWrites struct {
	repository.OrderRepository
	misses int
	calls  int
}

func (m *missingWrites) Update(ctx context.Context, id uuid.UUID, expected *model.OrderStatus, patch model.OrderPatch, audit *model.PaymentAuditEntry) (bool, error) {
	m.calls++
	if m.misses > 0 {
		m.misses--
		return false, nil
	}
	return m.OrderRepository.Update(ctx, id, expected, patch, audit)
}

func TestUpdateStatusAppliesLegalTransition(t *testing.T) {
	f := newFixture(t)
	id := f.order(model.OrderStatusPaymentConfirmed)

	order, err := f.orders.UpdateStatus(context.Background(), id, model.OrderStatusProcessing, f.admin)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusProcessing, order.Status)
	assert.Equal(t, model.OrderStatusProcessing, f.store.Order(id).Status)
	assert.Equal(t, float64(1), f.counter(t, "procuremart_order_transitions_total",
		map[string]string{"from": "PAYMENT_CONFIRMED", "to": "PROCESSING"}))
}

func TestUpdateStatusRejectsIllegalTransitionWithoutWriting(t *testing.T) {
	f := newFixture(t)
	id := f.order(model.OrderStatusPendingPayment)
	f.store.BeforeUpdate = func(uuid.UUID) { t.Fatal("no write expected for an illegal edge") }

	_, err := f.orders.UpdateStatus(context.Background(), id, model.OrderStatusShipped, f.admin)
	require.ErrorIs(t, err, domainErrors.ErrInvalidTransition)
	typed, ok := domainErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, model.OrderStatusPendingPayment, typed.From)
	assert.Equal(t, model.OrderStatusShipped, typed.To)
}

func TestUpdateStatusNeverEntersPaymentConfirmed(t *testing.T) {
	f := newFixture(t)
	f.store.BeforeUpdate = func(uuid.UUID) { t.Fatal("payment-controlled edits must not reach the store") }

	for _, status := range model.OrderStatuses() {
		id := f.order(status)
		for _, target := range []model.OrderStatus{model.OrderStatusPaymentConfirmed, model.OrderStatusAwaitingConfirmation} {
			_, err := f.orders.UpdateStatus(context.Background(), id, target, f.admin)
			require.ErrorIs(t, err, domainErrors.ErrInvalidTransition, "from %s to %s", status, target)
		}
		assert.Equal(t, status, f.store.Order(id).Status)
	}
}

func TestUpdateStatusCannotUndoPaymentReview(t *testing.T) {
	f := newFixture(t)
	id := f.order(model.OrderStatusAwaitingConfirmation)

	_, err := f.orders.UpdateStatus(context.Background(), id, model.OrderStatusPendingPayment, f.admin)
	require.ErrorIs(t, err, domainErrors.ErrInvalidTransition)
	assert.Equal(t, model.OrderStatusAwaitingConfirmation, f.store.Order(id).Status)

	order, err := f.orders.UpdateStatus(context.Background(), id, model.OrderStatusCancelled, f.admin)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, order.Status)
}

func TestUpdateStatusAuthorization(t *testing.T) {
	f := newFixture(t)
	id := f.order(model.OrderStatusProcessing)
	otherSupplier := model.Actor{UserID: f.store.AddUser("other", model.RoleSupplier, dec("0"), dec("0")), Role: model.RoleSupplier}

	_, err := f.orders.UpdateStatus(context.Background(), id, model.OrderStatusReadyForPickup, f.client)
	require.ErrorIs(t, err, domainErrors.ErrUnauthorized)

	_, err = f.orders.UpdateStatus(context.Background(), id, model.OrderStatusReadyForPickup, otherSupplier)
	require.ErrorIs(t, err, domainErrors.ErrUnauthorized)

	order, err := f.orders.UpdateStatus(context.Background(), id, model.OrderStatusReadyForPickup, f.supplier)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusReadyForPickup, order.Status)
}

func TestUpdateRejectsUnknownAndManagedFields(t *testing.T) {
	f := newFixture(t)
	id := f.order(model.OrderStatusProcessing)
	verified := true

	cases := []model.OrderPatch{
		{},
		{Status: statusPtr("LOST")},
		{PaymentReference: model.Value("REF")},
		{PaymentConfirmedAt: model.Null[time.Time]()},
		{AdminVerified: &verified},
	}
	for _, patch := range cases {
		_, err := f.orders.Update(context.Background(), id, patch, f.admin)
		require.ErrorIs(t, err, domainErrors.ErrInvalidInput)
	}
}

func TestUpdateWritesItemsWithoutStatusChange(t *testing.T) {
	f := newFixture(t)
	id := f.order(model.OrderStatusProcessing)
	items := json.RawMessage(`[{"sku":"B-2","qty":3}]`)

	order, err := f.orders.Update(context.Background(), id, model.OrderPatch{Items: items}, f.admin)
	require.NoError(t, err)
	assert.JSONEq(t, string(items), string(order.Items))
	assert.Equal(t, model.OrderStatusProcessing, order.Status)
}

func TestUpdateStatusRetriesWhenStillLegal(t *testing.T) {
	f := newFixture(t)
	id := f.order(model.OrderStatusPendingPayment)
	raced := false
	f.store.BeforeUpdate = func(target uuid.UUID) {
		if !raced {
			raced = true
			f.store.ForceStatus(target, model.OrderStatusAwaitingConfirmation)
		}
	}

	order, err := f.orders.UpdateStatus(context.Background(), id, model.OrderStatusCancelled, f.admin)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, order.Status)
	assert.Equal(t, float64(1), f.counter(t, "procuremart_concurrency_retries_total", map[string]string{"operation": "update_order"}))
	assert.Equal(t, float64(1), f.counter(t, "procuremart_order_transitions_total",
		map[string]string{"from": "AWAITING_CONFIRMATION", "to": "CANCELLED"}))
}

func TestUpdateStatusRevalidatesAgainstNewState(t *testing.T) {
	f := newFixture(t)
	id := f.order(model.OrderStatusPaymentConfirmed)
	raced := false
	f.store.BeforeUpdate = func(target uuid.UUID) {
		if !raced {
			raced = true
			f.store.ForceStatus(target, model.OrderStatusCancelled)
		}
	}

	_, err := f.orders.UpdateStatus(context.Background(), id, model.OrderStatusProcessing, f.admin)
	require.ErrorIs(t, err, domainErrors.ErrInvalidTransition)
	assert.Equal(t, model.OrderStatusCancelled, f.store.Order(id).Status)
}

func TestUpdateStatusFailsWhenRetriesExhausted(t *testing.T) {
	f := newFixture(t)
	id := f.order(model.OrderStatusPendingPayment)
	flip := []model.OrderStatus{model.OrderStatusAwaitingConfirmation, model.OrderStatusPendingPayment}
	calls := 0
	f.store.BeforeUpdate = func(target uuid.UUID) {
		f.store.ForceStatus(target, flip[calls%2])
		calls++
	}

	_, err := f.orders.UpdateStatus(context.Background(), id, model.OrderStatusCancelled, f.admin)
	require.ErrorIs(t, err, domainErrors.ErrConcurrentUpdateFailed)
	assert.Equal(t, 2, calls)
	assert.NotEqual(t, model.OrderStatusCancelled, f.store.Order(id).Status)
}

func TestUpdateStatusUnchangedAfterMissFails(t *testing.T) {
	var flaky *missingWrites
	f := newFixtureWith(t, func(inner repository.OrderRepository) repository.OrderRepository {
		flaky = &missingWrites{OrderRepository: inner, misses: 1}
		return flaky
	})
	id := f.order(model.OrderStatusPaymentConfirmed)

	_, err := f.orders.UpdateStatus(context.Background(), id, model.OrderStatusProcessing, f.admin)
	require.ErrorIs(t, err, domainErrors.ErrConcurrentUpdateFailed)
	assert.Equal(t, 1, flaky.calls)
	assert.Equal(t, float64(1), f.counter(t, "procuremart_concurrent_update_conflicts_total", map[string]string{"operation": "update_order"}))
}

func TestUpdateStatusNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.orders.UpdateStatus(context.Background(), uuid.New(), model.OrderStatusCancelled, f.admin)
	require.ErrorIs(t, err, domainErrors.ErrNotFound)
}

func TestUpdateStatusCannotSkipAhead(t *testing.T) {
	f := newFixture(t)
	id := f.order(lifecycle.Initial)
	path := []model.OrderStatus{
		model.OrderStatusProcessing,
		model.OrderStatusPickupScheduled,
		model.OrderStatusCompleted,
	}
	for _, target := range path {
		_, err := f.orders.UpdateStatus(context.Background(), id, target, f.admin)
		require.Error(t, err)
		assert.Equal(t, lifecycle.Initial, f.store.Order(id).Status)
	}
}

func TestGetOrderVisibility(t *testing.T) {
	f := newFixture(t)
	id := f.order(model.OrderStatusPendingPayment)
	stranger := model.Actor{UserID: f.store.AddUser("stranger", model.RoleClient, dec("0"), dec("0")), Role: model.RoleClient}

	for _, actor := range []model.Actor{f.admin, f.client, f.supplier} {
		order, err := f.orders.Get(context.Background(), id, actor)
		require.NoError(t, err)
		assert.Equal(t, id, order.ID)
	}
	_, err := f.orders.Get(context.Background(), id, stranger)
	require.ErrorIs(t, err, domainErrors.ErrUnauthorized)
	_, err = f.orders.Get(context.Background(), id, model.Actor{})
	require.ErrorIs(t, err, domainErrors.ErrUnauthorized)
}

func TestVerifyOrder(t *testing.T) {
	f := newFixture(t)
	id := f.order(model.OrderStatusPendingAdminConfirmation)

	_, err := f.orders.Verify(context.Background(), id, f.supplier)
	require.ErrorIs(t, err, domainErrors.ErrUnauthorized)

	order, err := f.orders.Verify(context.Background(), id, f.admin)
	require.NoError(t, err)
	assert.True(t, order.AdminVerified)
	assert.Equal(t, model.OrderStatusPendingPayment, order.Status)
	require.NotNil(t, order.AdminVerifiedBy)
	assert.Equal(t, f.admin.UserID, *order.AdminVerifiedBy)
	require.NotNil(t, order.AdminVerifiedAt)

	again, err := f.orders.Verify(context.Background(), id, f.admin)
	require.NoError(t, err)
	assert.Equal(t, order.UpdatedAt, again.UpdatedAt)
}

func TestVerifyOrderRequiresInitialStatus(t *testing.T) {
	f := newFixture(t)
	id := f.order(model.OrderStatusCancelled)
	_, err := f.orders.Verify(context.Background(), id, f.admin)
	require.ErrorIs(t, err, domainErrors.ErrInvalidTransition)
}

func statusPtr(s model.OrderStatus) *model.OrderStatus {
	return &s
}
