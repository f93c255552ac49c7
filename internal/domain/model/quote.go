package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteStatus describes the review state of a supplier quote.
type QuoteStatus string

const (
	QuoteStatusPendingAdmin QuoteStatus = "PENDING_ADMIN"
	QuoteStatusSentToClient QuoteStatus = "SENT_TO_CLIENT"
	QuoteStatusAccepted     QuoteStatus = "ACCEPTED"
	QuoteStatusRejected     QuoteStatus = "REJECTED"
)

// IsTerminal reports whether the quote can no longer change state.
func (s QuoteStatus) IsTerminal() bool {
	return s == QuoteStatusAccepted || s == QuoteStatusRejected
}

// Quote is a priced supplier response to an RFQ.
type Quote struct {
	ID            uuid.UUID
	RFQID         uuid.UUID
	SupplierID    int64
	SupplierPrice decimal.Decimal
	MarginPercent decimal.Decimal
	FinalPrice    decimal.Decimal
	Status        QuoteStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RFQStatus describes whether an RFQ still accepts quotes.
type RFQStatus string

const (
	RFQStatusOpen   RFQStatus = "OPEN"
	RFQStatusClosed RFQStatus = "CLOSED"
)

// RFQ is a client's request for quotation.
type RFQ struct {
	ID        uuid.UUID
	ClientID  int64
	Status    RFQStatus
	Items     json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// QuoteAcceptance is the outcome of accepting a quote.
type QuoteAcceptance struct {
	Quote *Quote
	Order *Order
	// Created is false when an order already existed for the quote.
	Created bool
}
