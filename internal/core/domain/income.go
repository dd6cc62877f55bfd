package domain

import "github.com/shopspring/decimal"

// IncomeOrigin tags where group income came from.
type IncomeOrigin string

const (
	OriginPayableInterest     IncomeOrigin = "Payable Interest"
	OriginGroupCreditInterest IncomeOrigin = "Group Credit Interest"
	OriginRegistrationFee     IncomeOrigin = "Registration Fee"
	OriginLoanOriginationFee  IncomeOrigin = "Loan Origination Fee"
)

// Income records money the group generated, attributed to a member and origin.
type Income struct {
	IncomeID       string          `json:"incomeID"`
	UserID         string          `json:"userID"`
	AccountID      *string         `json:"accountID"`
	Origin         IncomeOrigin    `json:"origin"`
	InterestAmount decimal.Decimal `json:"interestAmount"`
	Description    string          `json:"description"`
	AuditFields
}
