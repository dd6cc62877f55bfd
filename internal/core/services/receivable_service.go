package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wekeza/wekeza_backend/internal/apperrors"
	"github.com/wekeza/wekeza_backend/internal/core/domain"
	portsrepo "github.com/wekeza/wekeza_backend/internal/core/ports/repositories"
	portssvc "github.com/wekeza/wekeza_backend/internal/core/ports/services"
	"github.com/wekeza/wekeza_backend/internal/dto"
	"github.com/wekeza/wekeza_backend/internal/middleware"
)

const defaultListLimit = 20

var (
	ErrReceivableDeleted    = fmt.Errorf("%w: receivable is already deleted", apperrors.ErrConflict)
	ErrReceivableNotDeleted = fmt.Errorf("%w: receivable is not deleted", apperrors.ErrConflict)
)

// receivableService orchestrates safe delete and restore. Reversal and the
// soft-delete flip happen in one transaction so a receivable can never be
// deleted with its effects still applied, or vice versa.
type receivableService struct {
	txm            portsrepo.TxManager
	receivableRepo portsrepo.ReceivableRepositoryFacade
	effectSvc      portssvc.EffectSvcFacade
}

// NewReceivableService creates the delete/restore orchestrator.
func NewReceivableService(txm portsrepo.TxManager, receivableRepo portsrepo.ReceivableRepositoryFacade, effectSvc portssvc.EffectSvcFacade) portssvc.ReceivableSvcFacade {
	return &receivableService{
		txm:            txm,
		receivableRepo: receivableRepo,
		effectSvc:      effectSvc,
	}
}

var _ portssvc.ReceivableSvcFacade = (*receivableService)(nil)

// SafeDelete reverses the receivable's recorded effects, then soft-deletes the
// receivable, all in one transaction.
func (s *receivableService) SafeDelete(ctx context.Context, receivableID, actor string) error {
	logger := middleware.GetLoggerFromCtx(ctx).With(slog.String("receivable_id", receivableID))

	receivable, err := s.receivableRepo.FindReceivableByID(ctx, receivableID)
	if err != nil {
		return fmt.Errorf("failed to fetch receivable %s: %w", receivableID, err)
	}
	if receivable.IsDeleted() {
		return ErrReceivableDeleted
	}

	now := time.Now().UTC()

	tx, err := s.txm.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin safe delete: %w", err)
	}
	defer s.txm.Rollback(ctx, tx)

	if err := s.effectSvc.RevertEffectsForReceivableInTx(ctx, tx, *receivable, actor); err != nil {
		return fmt.Errorf("failed to revert effects for receivable %s: %w", receivableID, err)
	}
	if err := s.receivableRepo.SoftDeleteReceivableInTx(ctx, tx, receivableID, actor, now); err != nil {
		return fmt.Errorf("failed to soft delete receivable %s: %w", receivableID, err)
	}
	if err := s.txm.Commit(ctx, tx); err != nil {
		return fmt.Errorf("failed to commit safe delete: %w", err)
	}

	logger.Info("Receivable safely deleted", slog.String("actor", actor))
	return nil
}

// SafeRestore brings a soft-deleted receivable back and re-applies its
// restorable effects in one transaction.
func (s *receivableService) SafeRestore(ctx context.Context, receivableID, actor string) error {
	logger := middleware.GetLoggerFromCtx(ctx).With(slog.String("receivable_id", receivableID))

	receivable, err := s.receivableRepo.FindReceivableByID(ctx, receivableID)
	if err != nil {
		return fmt.Errorf("failed to fetch receivable %s: %w", receivableID, err)
	}
	if !receivable.IsDeleted() {
		return ErrReceivableNotDeleted
	}

	now := time.Now().UTC()

	tx, err := s.txm.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin safe restore: %w", err)
	}
	defer s.txm.Rollback(ctx, tx)

	if err := s.receivableRepo.RestoreReceivableInTx(ctx, tx, receivableID, actor, now); err != nil {
		return fmt.Errorf("failed to restore receivable %s: %w", receivableID, err)
	}
	if err := s.effectSvc.RestoreEffectsForReceivableInTx(ctx, tx, *receivable, actor); err != nil {
		return fmt.Errorf("failed to re-apply effects for receivable %s: %w", receivableID, err)
	}
	if err := s.txm.Commit(ctx, tx); err != nil {
		return fmt.Errorf("failed to commit safe restore: %w", err)
	}

	logger.Info("Receivable restored", slog.String("actor", actor))
	return nil
}

// GetReceivableByID returns one receivable, soft-deleted included.
func (s *receivableService) GetReceivableByID(ctx context.Context, receivableID string) (*domain.Receivable, error) {
	receivable, err := s.receivableRepo.FindReceivableByID(ctx, receivableID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("receivable %s not found", receivableID))
		}
		return nil, fmt.Errorf("failed to fetch receivable %s: %w", receivableID, err)
	}
	return receivable, nil
}

// ListReceivablesByUser returns one page of a member's live receivables,
// newest first.
func (s *receivableService) ListReceivablesByUser(ctx context.Context, userID string, params dto.ListReceivablesParams) (*dto.ListReceivablesResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	receivables, nextToken, err := s.receivableRepo.ListReceivablesByUser(ctx, userID, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list receivables for user %s: %w", userID, err)
	}

	resp := dto.ListReceivablesResponse{
		Receivables: make([]dto.ReceivableResponse, 0, len(receivables)),
		NextToken:   nextToken,
	}
	for i := range receivables {
		resp.Receivables = append(resp.Receivables, dto.ToReceivableResponse(&receivables[i]))
	}
	return &resp, nil
}
