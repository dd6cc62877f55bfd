package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wekeza/wekeza_backend/internal/core/domain"
)

// CreateReceivableRequest posts a payment toward an account obligation.
// Receivables require an existing debt for (user, account).
type CreateReceivableRequest struct {
	UserID        string               `json:"userID" binding:"required"`
	AccountID     string               `json:"accountID" binding:"required"`
	Amount        decimal.Decimal      `json:"amount" binding:"required,dgt"`
	FromSavings   bool                 `json:"fromSavings"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod" binding:"required"`
}

// CreateContributionRequest posts a contribution event. Unlike a receivable, a
// contribution does not require a pre-existing debt.
type CreateContributionRequest struct {
	UserID        string               `json:"userID" binding:"required"`
	AccountID     string               `json:"accountID" binding:"required"`
	Amount        decimal.Decimal      `json:"amount" binding:"required,dgt"`
	FromSavings   bool                 `json:"fromSavings"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod" binding:"required"`
}

// ReceivableResponse is the outward shape of a receivable.
type ReceivableResponse struct {
	ReceivableID           string          `json:"receivableID"`
	UserID                 string          `json:"userID"`
	AccountID              string          `json:"accountID"`
	Kind                   string          `json:"kind"`
	AmountContributed      decimal.Decimal `json:"amountContributed"`
	TotalAmountContributed decimal.Decimal `json:"totalAmountContributed"`
	FromSavings            bool            `json:"fromSavings"`
	PaymentMethod          string          `json:"paymentMethod"`
	PaymentStatus          string          `json:"paymentStatus"`
	Deleted                bool            `json:"deleted"`
	CreatedAt              time.Time       `json:"createdAt"`
}

// ToReceivableResponse converts a domain receivable to its response shape.
func ToReceivableResponse(r *domain.Receivable) ReceivableResponse {
	return ReceivableResponse{
		ReceivableID:           r.ReceivableID,
		UserID:                 r.UserID,
		AccountID:              r.AccountID,
		Kind:                   string(r.Kind),
		AmountContributed:      r.AmountContributed,
		TotalAmountContributed: r.TotalAmountContributed,
		FromSavings:            r.FromSavings,
		PaymentMethod:          string(r.PaymentMethod),
		PaymentStatus:          string(r.PaymentStatus),
		Deleted:                r.IsDeleted(),
		CreatedAt:              r.CreatedAt,
	}
}

// ListReceivablesParams holds pagination parameters for listing receivables.
type ListReceivablesParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListReceivablesResponse is one page of receivables plus the cursor for the next.
type ListReceivablesResponse struct {
	Receivables []ReceivableResponse `json:"receivables"`
	NextToken   *string              `json:"nextToken,omitempty"`
}
