package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wekeza/wekeza_backend/internal/core/domain"
)

// SavingResponse is a member's current savings position.
type SavingResponse struct {
	UserID    string          `json:"userID"`
	Balance   decimal.Decimal `json:"balance"`
	NetWorth  decimal.Decimal `json:"netWorth"`
	Narrative string          `json:"narrative,omitempty"`
	AsOf      time.Time       `json:"asOf"`
}

// ToSavingResponse converts the latest ledger row to its response shape.
func ToSavingResponse(s *domain.Saving) SavingResponse {
	return SavingResponse{
		UserID:    s.UserID,
		Balance:   s.Balance,
		NetWorth:  s.NetWorth,
		Narrative: s.Narrative,
		AsOf:      s.CreatedAt,
	}
}
