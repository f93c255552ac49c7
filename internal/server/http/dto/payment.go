package dto

import "time"

type SubmitReferenceRequest struct {
	Reference string  `json:"reference"`
	Notes     *string `json:"notes,omitempty"`
}

type ConfirmPaymentRequest struct {
	Reference *string `json:"reference,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

type RejectPaymentRequest struct {
	Reason string `json:"reason"`
}

// AuditEntryResponse is one row of an order's payment audit log.
type AuditEntryResponse struct {
	ID               string         `json:"id"`
	OrderID          string         `json:"orderId"`
	ActorUserID      int64          `json:"actorUserId"`
	ActorRole        string         `json:"actorRole"`
	Action           string         `json:"action"`
	FromStatus       string         `json:"fromStatus"`
	ToStatus         string         `json:"toStatus"`
	PaymentReference *string        `json:"paymentReference,omitempty"`
	Notes            *string        `json:"notes,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
}
