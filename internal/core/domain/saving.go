package domain

import "github.com/shopspring/decimal"

// Saving is one append-only ledger row per balance-affecting event for a member.
// Rows are never updated; the member's current savings balance and net worth are
// always the latest row's values.
type Saving struct {
	SavingID     string          `json:"savingID"`
	UserID       string          `json:"userID"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	Balance      decimal.Decimal `json:"balance"`  // savings balance after this event
	NetWorth     decimal.Decimal `json:"netWorth"` // total wealth after this event
	Narrative    string          `json:"narrative"`
	AuditFields
}
