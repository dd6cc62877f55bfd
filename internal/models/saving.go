package models

import "github.com/shopspring/decimal"

// Saving is the savings table row. Append-only; no update path exists.
type Saving struct {
	SavingID     string          `json:"savingID"`
	UserID       string          `json:"userID"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	Balance      decimal.Decimal `json:"balance"`
	NetWorth     decimal.Decimal `json:"netWorth"`
	Narrative    string          `json:"narrative"`
	AuditFields
}
