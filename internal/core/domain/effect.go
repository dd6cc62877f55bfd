package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SavingSnapshot is the pre-image of one saving row created by a posting, kept so
// a reversal can restore the member's balance and net worth exactly.
type SavingSnapshot struct {
	SavingID     string          `json:"savingID"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	PrevBalance  decimal.Decimal `json:"prevBalance"`
	PrevNetWorth decimal.Decimal `json:"prevNetWorth"`
}

// ReceivableEffect is the audit/undo record for one receivable posting. It is
// written once alongside the posting and mutated only to mark the reversal.
// Once Reverted is true, further reversals are no-ops.
type ReceivableEffect struct {
	EffectID                    string           `json:"effectID"`
	ReceivableID                string           `json:"receivableID"`
	AccountCollectionID         *string          `json:"accountCollectionID"`
	AccountCollectionPrevAmount *decimal.Decimal `json:"accountCollectionPrevAmount"` // nil: row created by this posting
	CollectionCreated           bool             `json:"collectionCreated"`
	SavingIDs                   []string         `json:"savingIDs"` // rows created by this posting
	SavingSnapshots             []SavingSnapshot `json:"savingSnapshots"`
	DebtID                      *string          `json:"debtID"`
	DebtPrevOutstanding         *decimal.Decimal `json:"debtPrevOutstanding"`
	DebtCreatedByReceivable     bool             `json:"debtCreatedByReceivable"`
	Reverted                    bool             `json:"reverted"`
	RevertedAt                  *time.Time       `json:"revertedAt"`
	RevertedBy                  *string          `json:"revertedBy"`
	ReversalSavingIDs           []string         `json:"reversalSavingIDs"`
	AuditFields
}
