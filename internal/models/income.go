package models

import "github.com/shopspring/decimal"

// Income is the incomes table row.
type Income struct {
	IncomeID       string          `json:"incomeID"`
	UserID         string          `json:"userID"`
	AccountID      *string         `json:"accountID"`
	Origin         string          `json:"origin"`
	InterestAmount decimal.Decimal `json:"interestAmount"`
	Description    string          `json:"description"`
	AuditFields
}
