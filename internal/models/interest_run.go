package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InterestRun is the interest_runs table row.
type InterestRun struct {
	RunID         string          `json:"runID"`
	RunAt         time.Time       `json:"runAt"`
	Rate          decimal.Decimal `json:"rate"`
	Processed     int             `json:"processed"`
	Errors        int             `json:"errors"`
	TotalInterest decimal.Decimal `json:"totalInterest"`
	CreatedBy     string          `json:"createdBy"`
}
