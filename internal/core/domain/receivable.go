package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceivableKind distinguishes the two posting workflows sharing the receivables table.
type ReceivableKind string

const (
	KindReceivable   ReceivableKind = "RECEIVABLE"
	KindContribution ReceivableKind = "CONTRIBUTION"
)

// PaymentMethod is how the money behind a receivable arrived.
type PaymentMethod string

const (
	PaymentCash        PaymentMethod = "CASH"
	PaymentBank        PaymentMethod = "BANK_TRANSFER"
	PaymentMobileMoney PaymentMethod = "MOBILE_MONEY"
	PaymentFromSavings PaymentMethod = "FROM_SAVINGS"
	PaymentGroupCredit PaymentMethod = "GROUP_CREDIT"
)

// PaymentStatus tracks a receivable against the account's expected amount.
type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "PENDING"
	PaymentPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	PaymentCompleted     PaymentStatus = "COMPLETED"
	PaymentCredited      PaymentStatus = "CREDITED"
)

// Receivable records one incoming payment event toward an account obligation.
type Receivable struct {
	ReceivableID           string          `json:"receivableID"`
	UserID                 string          `json:"userID"`
	AccountID              string          `json:"accountID"`
	Kind                   ReceivableKind  `json:"kind"`
	AmountContributed      decimal.Decimal `json:"amountContributed"`
	TotalAmountContributed decimal.Decimal `json:"totalAmountContributed"` // running total after this event
	FromSavings            bool            `json:"fromSavings"`
	PaymentMethod          PaymentMethod   `json:"paymentMethod"`
	PaymentStatus          PaymentStatus   `json:"paymentStatus"`
	DeletedAt              *time.Time      `json:"deletedAt"`
	AuditFields
}

// IsDeleted reports whether the receivable has been soft-deleted.
func (r Receivable) IsDeleted() bool {
	return r.DeletedAt != nil
}
