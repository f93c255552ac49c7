package usecase

import (
	"fmt"

	domainErrors "github.com/polkiloo/procuremart/internal/domain/errors"
	"github.com/polkiloo/procuremart/internal/domain/model"
)

// requireRole is the capability check every operation runs before touching
// the store.
func requireRole(actor model.Actor, roles ...model.Role) error {
	if actor.UserID <= 0 || !actor.Is(roles...) {
		return domainErrors.New(domainErrors.KindUnauthorized, fmt.Sprintf("role %q may not perform this operation", actor.Role))
	}
	return nil
}

func canViewOrder(actor model.Actor, order *model.Order) bool {
	switch actor.Role {
	case model.RoleAdmin:
		return true
	case model.RoleClient:
		return order.BelongsTo(actor.UserID)
	case model.RoleSupplier:
		return order.SuppliedBy(actor.UserID)
	}
	return false
}
