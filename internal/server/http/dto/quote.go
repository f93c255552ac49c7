package dto

import "github.com/shopspring/decimal"

type QuoteResponse struct {
	ID            string          `json:"id"`
	RFQID         string          `json:"rfqId"`
	SupplierID    int64           `json:"supplierId"`
	SupplierPrice decimal.Decimal `json:"supplierPrice"`
	MarginPercent decimal.Decimal `json:"marginPercent"`
	FinalPrice    decimal.Decimal `json:"finalPrice"`
	Status        string          `json:"status"`
}

// AcceptanceResponse is returned by quote acceptance. Created is false when
// the quote had already been turned into an order.
type AcceptanceResponse struct {
	Quote   QuoteResponse `json:"quote"`
	Order   OrderResponse `json:"order"`
	Created bool          `json:"created"`
}
