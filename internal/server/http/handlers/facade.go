package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/procuremart/internal/domain/model"
	pkgAuth "github.com/polkiloo/procuremart/internal/pkg/auth"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, login, password string, role model.Role) (string, error)
	Authenticate(ctx context.Context, login, password string) (string, error)
	ParseToken(token string) (pkgAuth.Claims, error)
	ResolveActor(ctx context.Context, claims pkgAuth.Claims) (model.Actor, error)
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	Order(ctx context.Context, id uuid.UUID, actor model.Actor) (*model.Order, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, patch model.OrderPatch, actor model.Actor) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, actor model.Actor) (*model.Order, error)
	VerifyOrder(ctx context.Context, id uuid.UUID, actor model.Actor) (*model.Order, error)
}

// PaymentFacade covers the payment reference workflow.
type PaymentFacade interface {
	SubmitPaymentReference(ctx context.Context, id uuid.UUID, actor model.Actor, reference string, notes *string) (*model.Order, error)
	ConfirmPayment(ctx context.Context, id uuid.UUID, actor model.Actor, reference, notes *string) (*model.Order, error)
	RejectPayment(ctx context.Context, id uuid.UUID, actor model.Actor, reason string) (*model.Order, error)
	PaymentAudit(ctx context.Context, id uuid.UUID, actor model.Actor) ([]model.PaymentAuditEntry, error)
}

type QuoteFacade interface {
	AcceptQuote(ctx context.Context, quoteID uuid.UUID, actor model.Actor) (*model.QuoteAcceptance, error)
}

type CreditFacade interface {
	CreditProfile(ctx context.Context, clientID int64, actor model.Actor) (*model.CreditProfile, error)
	SetCreditLimit(ctx context.Context, clientID int64, limit decimal.Decimal, actor model.Actor) (*model.CreditProfile, error)
}

// ProcurementFacade aggregates the full set of operations used across handlers.
type ProcurementFacade interface {
	AuthFacade
	OrderFacade
	PaymentFacade
	QuoteFacade
	CreditFacade
}
