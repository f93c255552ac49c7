package dto

import "github.com/shopspring/decimal"

type CreditProfileResponse struct {
	ClientID    int64           `json:"clientId"`
	CreditLimit decimal.Decimal `json:"creditLimit"`
	CreditUsed  decimal.Decimal `json:"creditUsed"`
	Available   decimal.Decimal `json:"available"`
	Unlimited   bool            `json:"unlimited"`
}

type CreditLimitRequest struct {
	Limit decimal.Decimal `json:"limit"`
}
