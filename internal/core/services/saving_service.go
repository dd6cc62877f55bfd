package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wekeza/wekeza_backend/internal/apperrors"
	"github.com/wekeza/wekeza_backend/internal/core/domain"
	portsrepo "github.com/wekeza/wekeza_backend/internal/core/ports/repositories"
	portssvc "github.com/wekeza/wekeza_backend/internal/core/ports/services"
)

// savingService reads the savings ledger. All writes go through the posting
// and effect pipelines; this service only surfaces the current position.
type savingService struct {
	savingRepo portsrepo.SavingRepositoryFacade
}

// NewSavingService creates the savings read facade.
func NewSavingService(savingRepo portsrepo.SavingRepositoryFacade) portssvc.SavingSvcFacade {
	return &savingService{savingRepo: savingRepo}
}

var _ portssvc.SavingSvcFacade = (*savingService)(nil)

// GetCurrentSavings returns the member's latest ledger row. A member who has
// never saved is a zero position, not a missing resource.
func (s *savingService) GetCurrentSavings(ctx context.Context, userID string) (*domain.Saving, error) {
	latest, err := s.savingRepo.FindLatestSaving(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &domain.Saving{
				UserID:       userID,
				CreditAmount: decimal.Zero,
				DebitAmount:  decimal.Zero,
				Balance:      decimal.Zero,
				NetWorth:     decimal.Zero,
			}, nil
		}
		return nil, fmt.Errorf("failed to fetch latest saving for user %s: %w", userID, err)
	}
	return latest, nil
}
