package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/procuremart/internal/domain/model"
	pkgAuth "github.com/polkiloo/procuremart/internal/pkg/auth"
)

// AuthFacadeStub provides controllable authentication behaviour.
type AuthFacadeStub struct {
	RegisterFn func(context.Context, string, string, model.Role) (string, error)
	LoginFn    func(context.Context, string, string) (string, error)
	ParseFn    func(string) (pkgAuth.Claims, error)
	ResolveFn  func(context.Context, pkgAuth.Claims) (model.Actor, error)
}

func (s AuthFacadeStub) Register(ctx context.Context, login, password string, role model.Role) (string, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, login, password, role)
	}
	return "token", nil
}

func (s AuthFacadeStub) Authenticate(ctx context.Context, login, password string) (string, error) {
	if s.LoginFn != nil {
		return s.LoginFn(ctx, login, password)
	}
	return "token", nil
}

// ParseToken accepts any token as an admin with id 1 unless overridden.
func (s AuthFacadeStub) ParseToken(token string) (pkgAuth.Claims, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return pkgAuth.Claims{UserID: 1, Role: model.RoleAdmin, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (s AuthFacadeStub) ResolveActor(ctx context.Context, claims pkgAuth.Claims) (model.Actor, error) {
	if s.ResolveFn != nil {
		return s.ResolveFn(ctx, claims)
	}
	return model.Actor{UserID: claims.UserID, Role: claims.Role}, nil
}

// OrderFacadeStub returns a pending order unless overridden.
type OrderFacadeStub struct {
	GetFn    func(context.Context, uuid.UUID, model.Actor) (*model.Order, error)
	UpdateFn func(context.Context, uuid.UUID, model.OrderPatch, model.Actor) (*model.Order, error)
	StatusFn func(context.Context, uuid.UUID, model.OrderStatus, model.Actor) (*model.Order, error)
	VerifyFn func(context.Context, uuid.UUID, model.Actor) (*model.Order, error)
}

// StubOrder builds the order the stubs hand out by default.
func StubOrder(id uuid.UUID, status model.OrderStatus) *model.Order {
	created := time.Unix(1_700_000_000, 0).UTC()
	return &model.Order{
		ID:         id,
		ClientID:   2,
		SupplierID: 3,
		Amount:     decimal.NewFromInt(500),
		Status:     status,
		Items:      []byte(`[{"sku":"A-1","qty":10}]`),
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}

func (s OrderFacadeStub) Order(ctx context.Context, id uuid.UUID, actor model.Actor) (*model.Order, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, id, actor)
	}
	return StubOrder(id, model.OrderStatusPendingPayment), nil
}

func (s OrderFacadeStub) UpdateOrder(ctx context.Context, id uuid.UUID, patch model.OrderPatch, actor model.Actor) (*model.Order, error) {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, id, patch, actor)
	}
	order := StubOrder(id, model.OrderStatusPendingPayment)
	patch.Apply(order)
	return order, nil
}

func (s OrderFacadeStub) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, actor model.Actor) (*model.Order, error) {
	if s.StatusFn != nil {
		return s.StatusFn(ctx, id, status, actor)
	}
	return StubOrder(id, status), nil
}

func (s OrderFacadeStub) VerifyOrder(ctx context.Context, id uuid.UUID, actor model.Actor) (*model.Order, error) {
	if s.VerifyFn != nil {
		return s.VerifyFn(ctx, id, actor)
	}
	order := StubOrder(id, model.OrderStatusPendingPayment)
	order.AdminVerified = true
	return order, nil
}

// PaymentFacadeStub simulates the payment workflow.
type PaymentFacadeStub struct {
	SubmitFn  func(context.Context, uuid.UUID, model.Actor, string, *string) (*model.Order, error)
	ConfirmFn func(context.Context, uuid.UUID, model.Actor, *string, *string) (*model.Order, error)
	RejectFn  func(context.Context, uuid.UUID, model.Actor, string) (*model.Order, error)
	AuditFn   func(context.Context, uuid.UUID, model.Actor) ([]model.PaymentAuditEntry, error)
}

func (s PaymentFacadeStub) SubmitPaymentReference(ctx context.Context, id uuid.UUID, actor model.Actor, reference string, notes *string) (*model.Order, error) {
	if s.SubmitFn != nil {
		return s.SubmitFn(ctx, id, actor, reference, notes)
	}
	order := StubOrder(id, model.OrderStatusAwaitingConfirmation)
	order.PaymentReference = &reference
	order.PaymentNotes = notes
	return order, nil
}

func (s PaymentFacadeStub) ConfirmPayment(ctx context.Context, id uuid.UUID, actor model.Actor, reference, notes *string) (*model.Order, error) {
	if s.ConfirmFn != nil {
		return s.ConfirmFn(ctx, id, actor, reference, notes)
	}
	return StubOrder(id, model.OrderStatusPaymentConfirmed), nil
}

func (s PaymentFacadeStub) RejectPayment(ctx context.Context, id uuid.UUID, actor model.Actor, reason string) (*model.Order, error) {
	if s.RejectFn != nil {
		return s.RejectFn(ctx, id, actor, reason)
	}
	order := StubOrder(id, model.OrderStatusPendingPayment)
	order.PaymentNotes = &reason
	return order, nil
}

func (s PaymentFacadeStub) PaymentAudit(ctx context.Context, id uuid.UUID, actor model.Actor) ([]model.PaymentAuditEntry, error) {
	if s.AuditFn != nil {
		return s.AuditFn(ctx, id, actor)
	}
	reference := "WIRE-1"
	return []model.PaymentAuditEntry{{
		ID:               uuid.New(),
		OrderID:          id,
		ActorUserID:      2,
		ActorRole:        model.RoleClient,
		Action:           model.PaymentActionReferenceSubmitted,
		FromStatus:       model.OrderStatusPendingPayment,
		ToStatus:         model.OrderStatusAwaitingConfirmation,
		PaymentReference: &reference,
		CreatedAt:        time.Unix(1_700_000_000, 0).UTC(),
	}}, nil
}

// QuoteFacadeStub accepts every quote as a fresh order unless overridden.
type QuoteFacadeStub struct {
	AcceptFn func(context.Context, uuid.UUID, model.Actor) (*model.QuoteAcceptance, error)
}

func (s QuoteFacadeStub) AcceptQuote(ctx context.Context, quoteID uuid.UUID, actor model.Actor) (*model.QuoteAcceptance, error) {
	if s.AcceptFn != nil {
		return s.AcceptFn(ctx, quoteID, actor)
	}
	order := StubOrder(uuid.New(), model.OrderStatusPendingAdminConfirmation)
	order.QuoteID = &quoteID
	return &model.QuoteAcceptance{
		Quote: &model.Quote{
			ID:         quoteID,
			RFQID:      uuid.New(),
			SupplierID: order.SupplierID,
			FinalPrice: order.Amount,
			Status:     model.QuoteStatusAccepted,
		},
		Order:   order,
		Created: true,
	}, nil
}

// CreditFacadeStub serves a fixed credit profile.
type CreditFacadeStub struct {
	ProfileFn  func(context.Context, int64, model.Actor) (*model.CreditProfile, error)
	SetLimitFn func(context.Context, int64, decimal.Decimal, model.Actor) (*model.CreditProfile, error)
}

func (s CreditFacadeStub) CreditProfile(ctx context.Context, clientID int64, actor model.Actor) (*model.CreditProfile, error) {
	if s.ProfileFn != nil {
		return s.ProfileFn(ctx, clientID, actor)
	}
	return &model.CreditProfile{ClientID: clientID, CreditLimit: decimal.NewFromInt(1000), CreditUsed: decimal.NewFromInt(250)}, nil
}

func (s CreditFacadeStub) SetCreditLimit(ctx context.Context, clientID int64, limit decimal.Decimal, actor model.Actor) (*model.CreditProfile, error) {
	if s.SetLimitFn != nil {
		return s.SetLimitFn(ctx, clientID, limit, actor)
	}
	return &model.CreditProfile{ClientID: clientID, CreditLimit: limit}, nil
}

// ProcurementFacadeStub combines every facade stub.
type ProcurementFacadeStub struct {
	AuthFacadeStub
	OrderFacadeStub
	PaymentFacadeStub
	QuoteFacadeStub
	CreditFacadeStub
}

// AuditSourceStub serves configured orders and audit logs to the verifier.
type AuditSourceStub struct {
	Orders  []model.Order
	History map[uuid.UUID][]model.PaymentAuditEntry
	ListErr error

	mu     sync.Mutex
	sweeps int32
}

// RecentlyUpdatedOrders pages through Orders after the cursor. Orders must be
// given in (UpdatedAt, ID) order.
func (s *AuditSourceStub) RecentlyUpdatedOrders(_ context.Context, after model.OrderCursor, limit int) ([]model.Order, error) {
	atomic.AddInt32(&s.sweeps, 1)
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	var page []model.Order
	for _, o := range s.Orders {
		if after.Less(o.Cursor()) {
			page = append(page, o)
		}
		if limit > 0 && len(page) == limit {
			break
		}
	}
	return page, nil
}

func (s *AuditSourceStub) PaymentHistory(_ context.Context, orderID uuid.UUID) ([]model.PaymentAuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.History[orderID], nil
}

// Sweeps reports how many pages of orders were listed.
func (s *AuditSourceStub) Sweeps() int {
	return int(atomic.LoadInt32(&s.sweeps))
}
