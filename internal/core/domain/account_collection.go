package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountCollection tracks the cumulative amount a member has contributed toward
// one account's obligation. One row per (user, account).
type AccountCollection struct {
	CollectionID string          `json:"collectionID"`
	UserID       string          `json:"userID"`
	AccountID    string          `json:"accountID"`
	Amount       decimal.Decimal `json:"amount"`
	DeletedAt    *time.Time      `json:"deletedAt"`
	AuditFields
}
