package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceivableEffect is the receivable_effects table row. The saving id lists and
// snapshots are stored as jsonb.
type ReceivableEffect struct {
	EffectID                    string           `json:"effectID"`
	ReceivableID                string           `json:"receivableID"`
	AccountCollectionID         *string          `json:"accountCollectionID"`
	AccountCollectionPrevAmount *decimal.Decimal `json:"accountCollectionPrevAmount"`
	CollectionCreated           bool             `json:"collectionCreated"`
	SavingIDs                   []byte           `json:"savingIDs"`       // jsonb
	SavingSnapshots             []byte           `json:"savingSnapshots"` // jsonb
	DebtID                      *string          `json:"debtID"`
	DebtPrevOutstanding         *decimal.Decimal `json:"debtPrevOutstanding"`
	DebtCreatedByReceivable     bool             `json:"debtCreatedByReceivable"`
	Reverted                    bool             `json:"reverted"`
	RevertedAt                  *time.Time       `json:"revertedAt"`
	RevertedBy                  *string          `json:"revertedBy"`
	ReversalSavingIDs           []byte           `json:"reversalSavingIDs"` // jsonb
	AuditFields
}
