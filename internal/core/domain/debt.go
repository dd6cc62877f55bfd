package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DebtStatus indicates the repayment state of a member's obligation.
type DebtStatus string

const (
	DebtPending       DebtStatus = "PENDING"
	DebtPartiallyPaid DebtStatus = "PARTIALLY_PAID"
	DebtCleared       DebtStatus = "CLEARED"
	DebtDefaulted     DebtStatus = "DEFAULTED"
	DebtApproved      DebtStatus = "APPROVED"
	DebtCredited      DebtStatus = "CREDITED"
	DebtRejected      DebtStatus = "REJECTED"
)

// Debt is a member's outstanding liability, optionally scoped to an account.
// A nil AccountID marks a credited loan rather than an account obligation.
type Debt struct {
	DebtID                string           `json:"debtID"`
	UserID                string           `json:"userID"`
	AccountID             *string          `json:"accountID"`
	OutstandingBalance    decimal.Decimal  `json:"outstandingBalance"` // never negative
	RepaymentAmount       decimal.Decimal  `json:"repaymentAmount"`
	FromSavings           bool             `json:"fromSavings"`
	DebtStatus            DebtStatus       `json:"debtStatus"`
	LastInterestAppliedOn *time.Time       `json:"lastInterestAppliedOn"`
	CreatedByReceivableID *string          `json:"createdByReceivableID"` // provenance of receivable-created debts
	DeletedAt             *time.Time       `json:"deletedAt"`
	AuditFields
}

// StatusForBalance derives the status a balance mutation leaves the debt in.
// Explicitly-set states (CREDITED, APPROVED, ...) are only overridden once the
// balance clears.
func (d Debt) StatusForBalance(balance decimal.Decimal) DebtStatus {
	if balance.IsZero() {
		return DebtCleared
	}
	switch d.DebtStatus {
	case DebtCredited, DebtApproved, DebtDefaulted, DebtRejected:
		return d.DebtStatus
	default:
		return DebtPending
	}
}
