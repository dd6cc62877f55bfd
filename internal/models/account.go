package models

import "github.com/shopspring/decimal"

// Account is the accounts table row.
type Account struct {
	AccountID   string          `json:"accountID"`
	Name        string          `json:"name"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	IsActive    bool            `json:"isActive"`
	AuditFields
}
