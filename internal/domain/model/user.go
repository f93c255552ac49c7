package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Role is the marketplace role of a user.
type Role string

const (
	RoleClient   Role = "CLIENT"
	RoleSupplier Role = "SUPPLIER"
	RoleAdmin    Role = "ADMIN"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleClient, RoleSupplier, RoleAdmin:
		return true
	}
	return false
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	r := Role(value)
	if !r.IsValid() {
		return "", fmt.Errorf("invalid role %q", value)
	}
	return r, nil
}

// User represents a registered marketplace participant.
type User struct {
	ID           int64
	Login        string
	PasswordHash string
	Role         Role
	CreditLimit  decimal.Decimal
	CreditUsed   decimal.Decimal
	CreatedAt    time.Time
}

// Actor is the resolved identity performing an operation.
type Actor struct {
	UserID int64
	Role   Role
}

// Is reports whether the actor holds one of the given roles.
func (a Actor) Is(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// CreditProfile is the credit ledger view of a client.
type CreditProfile struct {
	ClientID    int64
	CreditLimit decimal.Decimal
	CreditUsed  decimal.Decimal
}

// Unconstrained reports whether the client has no assigned limit.
func (c CreditProfile) Unconstrained() bool {
	return !c.CreditLimit.IsPositive()
}

// Available returns the unreserved credit. It is meaningless for
// unconstrained clients.
func (c CreditProfile) Available() decimal.Decimal {
	return c.CreditLimit.Sub(c.CreditUsed)
}

// Covers reports whether amount fits into the available credit.
func (c CreditProfile) Covers(amount decimal.Decimal) bool {
	if c.Unconstrained() {
		return true
	}
	return amount.LessThanOrEqual(c.Available())
}
