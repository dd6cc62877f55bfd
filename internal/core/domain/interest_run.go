package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InterestRun summarizes one monthly interest batch.
type InterestRun struct {
	RunID         string          `json:"runID"`
	RunAt         time.Time       `json:"runAt"`
	Rate          decimal.Decimal `json:"rate"` // fraction, 0.01 = 1%
	Processed     int             `json:"processed"`
	Errors        int             `json:"errors"`
	TotalInterest decimal.Decimal `json:"totalInterest"`
	CreatedBy     string          `json:"createdBy"`
}
