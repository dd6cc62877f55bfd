package dto

import (
	"github.com/shopspring/decimal"

	"github.com/wekeza/wekeza_backend/internal/core/domain"
)

// InterestRunResponse is the machine-checkable summary of one interest batch.
type InterestRunResponse struct {
	Processed     int             `json:"processed"`
	Errors        int             `json:"errors"`
	TotalInterest decimal.Decimal `json:"total_interest"`
}

// ToInterestRunResponse converts a domain run summary to its response shape.
func ToInterestRunResponse(run *domain.InterestRun) InterestRunResponse {
	return InterestRunResponse{
		Processed:     run.Processed,
		Errors:        run.Errors,
		TotalInterest: run.TotalInterest,
	}
}
