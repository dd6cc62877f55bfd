package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receivable is the receivables table row.
type Receivable struct {
	ReceivableID           string          `json:"receivableID"`
	UserID                 string          `json:"userID"`
	AccountID              string          `json:"accountID"`
	Kind                   string          `json:"kind"`
	AmountContributed      decimal.Decimal `json:"amountContributed"`
	TotalAmountContributed decimal.Decimal `json:"totalAmountContributed"`
	FromSavings            bool            `json:"fromSavings"`
	PaymentMethod          string          `json:"paymentMethod"`
	PaymentStatus          string          `json:"paymentStatus"`
	DeletedAt              *time.Time      `json:"deletedAt"`
	AuditFields
}
