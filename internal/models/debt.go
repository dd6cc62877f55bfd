package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DebtStatus mirrors domain.DebtStatus at the storage layer.
type DebtStatus string

// Debt is the debts table row.
type Debt struct {
	DebtID                string          `json:"debtID"`
	UserID                string          `json:"userID"`
	AccountID             *string         `json:"accountID"`
	OutstandingBalance    decimal.Decimal `json:"outstandingBalance"`
	RepaymentAmount       decimal.Decimal `json:"repaymentAmount"`
	FromSavings           bool            `json:"fromSavings"`
	DebtStatus            DebtStatus      `json:"debtStatus"`
	LastInterestAppliedOn *time.Time      `json:"lastInterestAppliedOn"`
	CreatedByReceivableID *string         `json:"createdByReceivableID"`
	DeletedAt             *time.Time      `json:"deletedAt"`
	AuditFields
}
