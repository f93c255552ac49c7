package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// OrderResponse is the public view of an order.
type OrderResponse struct {
	ID                 string          `json:"id"`
	QuoteID            *string         `json:"quoteId,omitempty"`
	ClientID           int64           `json:"clientId"`
	SupplierID         int64           `json:"supplierId"`
	Amount             decimal.Decimal `json:"amount"`
	Status             string          `json:"status"`
	Items              json.RawMessage `json:"items,omitempty"`
	PaymentReference   *string         `json:"paymentReference,omitempty"`
	PaymentNotes       *string         `json:"paymentNotes,omitempty"`
	PaymentSubmittedAt *time.Time      `json:"paymentSubmittedAt,omitempty"`
	PaymentConfirmedAt *time.Time      `json:"paymentConfirmedAt,omitempty"`
	PaymentConfirmedBy *int64          `json:"paymentConfirmedBy,omitempty"`
	PaymentReceiptURL  *string         `json:"paymentReceiptUrl,omitempty"`
	AdminVerified      bool            `json:"adminVerified"`
	AdminVerifiedBy    *int64          `json:"adminVerifiedBy,omitempty"`
	AdminVerifiedAt    *time.Time      `json:"adminVerifiedAt,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

// OrderPatchRequest is a generic order edit. A null receiptUrl clears the
// stored receipt; an absent one leaves it untouched.
type OrderPatchRequest struct {
	Status     *string          `json:"status,omitempty"`
	Items      json.RawMessage  `json:"items,omitempty"`
	ReceiptURL Nullable[string] `json:"receiptUrl"`
}

// Nullable tells an absent JSON field apart from an explicit null.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}
