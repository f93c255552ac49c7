package model

import (
	"encoding/json"
	"time"
)

// Assign describes a write to a nullable column. A zero Assign leaves the
// column untouched; a set Assign with nil Value clears it.
type Assign[T any] struct {
	Set   bool
	Value *T
}

// Value returns an Assign that writes v.
func Value[T any](v T) Assign[T] {
	return Assign[T]{Set: true, Value: &v}
}

// Null returns an Assign that clears the column.
func Null[T any]() Assign[T] {
	return Assign[T]{Set: true}
}

func (a Assign[T]) apply(dst **T) {
	if !a.Set {
		return
	}
	if a.Value == nil {
		*dst = nil
		return
	}
	v := *a.Value
	*dst = &v
}

// OrderPatch is a partial order update. Amount, parties and identifiers are
// immutable and therefore absent.
type OrderPatch struct {
	Status *OrderStatus
	Items  json.RawMessage

	PaymentReference   Assign[string]
	PaymentNotes       Assign[string]
	PaymentSubmittedAt Assign[time.Time]
	PaymentConfirmedAt Assign[time.Time]
	PaymentConfirmedBy Assign[int64]
	PaymentReceiptURL  Assign[string]

	AdminVerified   *bool
	AdminVerifiedBy Assign[int64]
	AdminVerifiedAt Assign[time.Time]
}

// Apply copies the patch onto o.
func (p OrderPatch) Apply(o *Order) {
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.Items != nil {
		o.Items = append(json.RawMessage(nil), p.Items...)
	}
	p.PaymentReference.apply(&o.PaymentReference)
	p.PaymentNotes.apply(&o.PaymentNotes)
	p.PaymentSubmittedAt.apply(&o.PaymentSubmittedAt)
	p.PaymentConfirmedAt.apply(&o.PaymentConfirmedAt)
	p.PaymentConfirmedBy.apply(&o.PaymentConfirmedBy)
	p.PaymentReceiptURL.apply(&o.PaymentReceiptURL)
	if p.AdminVerified != nil {
		o.AdminVerified = *p.AdminVerified
	}
	p.AdminVerifiedBy.apply(&o.AdminVerifiedBy)
	p.AdminVerifiedAt.apply(&o.AdminVerifiedAt)
}

// IsEmpty reports whether the patch writes nothing.
func (p OrderPatch) IsEmpty() bool {
	return p.Status == nil && p.Items == nil &&
		!p.PaymentReference.Set && !p.PaymentNotes.Set &&
		!p.PaymentSubmittedAt.Set && !p.PaymentConfirmedAt.Set &&
		!p.PaymentConfirmedBy.Set && !p.PaymentReceiptURL.Set &&
		p.AdminVerified == nil && !p.AdminVerifiedBy.Set && !p.AdminVerifiedAt.Set
}
