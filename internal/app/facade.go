package app

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"

	"github.com/polkiloo/procuremart/internal/domain/model"
	"github.com/polkiloo/procuremart/internal/domain/repository"
	pkgAuth "github.com/polkiloo/procuremart/internal/pkg/auth"
	"github.com/polkiloo/procuremart/internal/usecase"
)

type FacadeParams struct {
	fx.In

	Auth     *usecase.AuthUseCase
	Orders   *usecase.OrderUseCase
	Payments *usecase.PaymentUseCase
	Quotes   *usecase.QuoteUseCase
	Credit   *usecase.CreditUseCase

	OrderStore repository.OrderRepository
	AuditStore repository.AuditRepository
}

// ProcurementFacade is the single entry point the HTTP layer and the audit
// verifier talk to.
type ProcurementFacade struct {
	auth     *usecase.AuthUseCase
	orders   *usecase.OrderUseCase
	payments *usecase.PaymentUseCase
	quotes   *usecase.QuoteUseCase
	credit   *usecase.CreditUseCase

	orderStore repository.OrderRepository
	auditStore repository.AuditRepository
}

func NewProcurementFacade(p FacadeParams) *ProcurementFacade {
	return &ProcurementFacade{
		auth:       p.Auth,
		orders:     p.Orders,
		payments:   p.Payments,
		quotes:     p.Quotes,
		credit:     p.Credit,
		orderStore: p.OrderStore,
		auditStore: p.AuditStore,
	}
}

func (f *ProcurementFacade) Register(ctx context.Context, login, password string, role model.Role) (string, error) {
	_, token, err := f.auth.Register(ctx, login, password, role)
	return token, err
}

func (f *ProcurementFacade) Authenticate(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, login, password)
	return token, err
}

func (f *ProcurementFacade) ParseToken(token string) (pkgAuth.Claims, error) {
	return f.auth.ParseToken(token)
}

func (f *ProcurementFacade) ResolveActor(ctx context.Context, claims pkgAuth.Claims) (model.Actor, error) {
	return f.auth.ResolveActor(ctx, claims)
}

func (f *ProcurementFacade) Order(ctx context.Context, id uuid.UUID, actor model.Actor) (*model.Order, error) {
	return f.orders.Get(ctx, id, actor)
}

func (f *ProcurementFacade) UpdateOrder(ctx context.Context, id uuid.UUID, patch model.OrderPatch, actor model.Actor) (*model.Order, error) {
	return f.orders.Update(ctx, id, patch, actor)
}

func (f *ProcurementFacade) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, actor model.Actor) (*model.Order, error) {
	return f.orders.UpdateStatus(ctx, id, status, actor)
}

func (f *ProcurementFacade) VerifyOrder(ctx context.Context, id uuid.UUID, actor model.Actor) (*model.Order, error) {
	return f.orders.Verify(ctx, id, actor)
}

func (f *ProcurementFacade) SubmitPaymentReference(ctx context.Context, id uuid.UUID, actor model.Actor, reference string, notes *string) (*model.Order, error) {
	return f.payments.SubmitReference(ctx, id, actor, reference, notes)
}

func (f *ProcurementFacade) ConfirmPayment(ctx context.Context, id uuid.UUID, actor model.Actor, reference, notes *string) (*model.Order, error) {
	return f.payments.ConfirmPayment(ctx, id, actor, reference, notes)
}

func (f *ProcurementFacade) RejectPayment(ctx context.Context, id uuid.UUID, actor model.Actor, reason string) (*model.Order, error) {
	return f.payments.RejectPayment(ctx, id, actor, reason)
}

func (f *ProcurementFacade) PaymentAudit(ctx context.Context, id uuid.UUID, actor model.Actor) ([]model.PaymentAuditEntry, error) {
	return f.payments.AuditLog(ctx, id, actor)
}

func (f *ProcurementFacade) AcceptQuote(ctx context.Context, quoteID uuid.UUID, actor model.Actor) (*model.QuoteAcceptance, error) {
	return f.quotes.Accept(ctx, quoteID, actor)
}

func (f *ProcurementFacade) CreditProfile(ctx context.Context, clientID int64, actor model.Actor) (*model.CreditProfile, error) {
	return f.credit.Profile(ctx, clientID, actor)
}

func (f *ProcurementFacade) SetCreditLimit(ctx context.Context, clientID int64, limit decimal.Decimal, actor model.Actor) (*model.CreditProfile, error) {
	return f.credit.SetLimit(ctx, clientID, limit, actor)
}

// RecentlyUpdatedOrders and PaymentHistory feed the audit verifier. They
// read the stores directly since the verifier acts as no user.
func (f *ProcurementFacade) RecentlyUpdatedOrders(ctx context.Context, after model.OrderCursor, limit int) ([]model.Order, error) {
	return f.orderStore.ListUpdatedAfter(ctx, after, limit)
}

func (f *ProcurementFacade) PaymentHistory(ctx context.Context, orderID uuid.UUID) ([]model.PaymentAuditEntry, error) {
	return f.auditStore.ListByOrder(ctx, orderID)
}
