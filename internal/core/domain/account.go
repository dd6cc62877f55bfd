package domain

import "github.com/shopspring/decimal"

// Account is a group obligation members contribute toward (a payable).
type Account struct {
	AccountID   string          `json:"accountID"`
	Name        string          `json:"name"`
	TotalAmount decimal.Decimal `json:"totalAmount"` // expected contribution per member
	IsActive    bool            `json:"isActive"`
	AuditFields
}
