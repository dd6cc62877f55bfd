package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountCollection is the account_collections table row.
type AccountCollection struct {
	CollectionID string          `json:"collectionID"`
	UserID       string          `json:"userID"`
	AccountID    string          `json:"accountID"`
	Amount       decimal.Decimal `json:"amount"`
	DeletedAt    *time.Time      `json:"deletedAt"`
	AuditFields
}
