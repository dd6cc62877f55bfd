package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/wekeza/wekeza_backend/internal/apperrors"
	"github.com/wekeza/wekeza_backend/internal/core/domain"
	portsrepo "github.com/wekeza/wekeza_backend/internal/core/ports/repositories"
	portssvc "github.com/wekeza/wekeza_backend/internal/core/ports/services"
	"github.com/wekeza/wekeza_backend/internal/middleware"
	"github.com/wekeza/wekeza_backend/internal/utils/money"
)

// effectService records the cascading side effects of a posting and plays them
// back in reverse when the posting is deleted. Reversal is compensating: the
// savings ledger gets offsetting rows, never updates or deletes.
type effectService struct {
	txm            portsrepo.TxManager
	effectRepo     portsrepo.EffectRepositoryFacade
	debtRepo       portsrepo.DebtRepositoryFacade
	savingRepo     portsrepo.SavingRepositoryFacade
	collectionRepo portsrepo.AccountCollectionRepositoryFacade
}

// NewEffectService creates the effect recorder and reversal engine.
func NewEffectService(
	txm portsrepo.TxManager,
	effectRepo portsrepo.EffectRepositoryFacade,
	debtRepo portsrepo.DebtRepositoryFacade,
	savingRepo portsrepo.SavingRepositoryFacade,
	collectionRepo portsrepo.AccountCollectionRepositoryFacade,
) portssvc.EffectSvcFacade {
	return &effectService{
		txm:            txm,
		effectRepo:     effectRepo,
		debtRepo:       debtRepo,
		savingRepo:     savingRepo,
		collectionRepo: collectionRepo,
	}
}

var _ portssvc.EffectSvcFacade = (*effectService)(nil)

// RecordCreationEffects writes the undo snapshot for a posting. The snapshot
// comes straight from the posting pipeline, so the recorder never guesses which
// rows belong to the receivable.
func (s *effectService) RecordCreationEffects(ctx context.Context, tx pgx.Tx, receivable domain.Receivable, snap portssvc.CreationSnapshot) (*domain.ReceivableEffect, error) {
	now := time.Now().UTC()
	effect := domain.ReceivableEffect{
		EffectID:                    uuid.NewString(),
		ReceivableID:                receivable.ReceivableID,
		AccountCollectionID:         snap.CollectionID,
		AccountCollectionPrevAmount: snap.CollectionPrevAmount,
		CollectionCreated:           snap.CollectionCreated,
		SavingIDs:                   snap.SavingIDs,
		SavingSnapshots:             snap.SavingSnapshots,
		DebtID:                      snap.DebtID,
		DebtPrevOutstanding:         snap.DebtPrevOutstanding,
		DebtCreatedByReceivable:     snap.DebtCreated,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     receivable.CreatedBy,
			LastUpdatedAt: now,
			LastUpdatedBy: receivable.CreatedBy,
		},
	}
	if err := s.effectRepo.SaveEffectInTx(ctx, tx, effect); err != nil {
		return nil, fmt.Errorf("failed to save receivable effect: %w", err)
	}
	return &effect, nil
}

// RevertEffectsForReceivable runs the reversal cascade in its own transaction.
func (s *effectService) RevertEffectsForReceivable(ctx context.Context, receivable domain.Receivable, actor string) error {
	tx, err := s.txm.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin reversal transaction: %w", err)
	}
	defer s.txm.Rollback(ctx, tx)

	if err := s.RevertEffectsForReceivableInTx(ctx, tx, receivable, actor); err != nil {
		return err
	}
	return s.txm.Commit(ctx, tx)
}

// RevertEffectsForReceivableInTx undoes everything the posting's effect row
// records. Already-reverted effects make this a no-op; receivables predating
// effect auditing fall back to heuristic reversal.
func (s *effectService) RevertEffectsForReceivableInTx(ctx context.Context, tx pgx.Tx, receivable domain.Receivable, actor string) error {
	logger := middleware.GetLoggerFromCtx(ctx).With(slog.String("receivable_id", receivable.ReceivableID))

	effect, err := s.effectRepo.FindLatestEffectForReceivableForUpdate(ctx, tx, receivable.ReceivableID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return s.revertLegacy(ctx, tx, receivable, actor, logger)
		}
		return fmt.Errorf("failed to lock effect for receivable %s: %w", receivable.ReceivableID, err)
	}

	if effect.Reverted {
		logger.Info("Effect already reverted, skipping", slog.String("effect_id", effect.EffectID))
		return nil
	}

	now := time.Now().UTC()

	reversalIDs, err := s.revertSavings(ctx, tx, receivable, effect.SavingSnapshots, actor, now)
	if err != nil {
		return err
	}

	if err := s.revertCollection(ctx, tx, receivable, effect, actor, now, logger); err != nil {
		return err
	}

	if err := s.revertDebt(ctx, tx, receivable, effect, actor, now, logger); err != nil {
		return err
	}

	if err := s.effectRepo.MarkEffectRevertedInTx(ctx, tx, effect.EffectID, actor, now, reversalIDs); err != nil {
		return fmt.Errorf("failed to mark effect %s reverted: %w", effect.EffectID, err)
	}

	logger.Info("Effects reverted",
		slog.String("effect_id", effect.EffectID),
		slog.Int("reversal_savings", len(reversalIDs)),
	)
	return nil
}

// revertSavings appends one offsetting ledger row per recorded snapshot, in
// reverse creation order, restoring the pre-posting balance and net worth.
func (s *effectService) revertSavings(ctx context.Context, tx pgx.Tx, receivable domain.Receivable, snapshots []domain.SavingSnapshot, actor string, now time.Time) ([]string, error) {
	if len(snapshots) == 0 {
		return nil, nil
	}

	// Lock the latest row so concurrent postings for the member serialize
	// against the reversal.
	if _, err := s.savingRepo.FindLatestSavingForUpdate(ctx, tx, receivable.UserID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to lock latest saving for user %s: %w", receivable.UserID, err)
	}

	reversalIDs := make([]string, 0, len(snapshots))
	for i := len(snapshots) - 1; i >= 0; i-- {
		snap := snapshots[i]
		reversal := domain.Saving{
			SavingID:     uuid.NewString(),
			UserID:       receivable.UserID,
			CreditAmount: snap.DebitAmount,
			DebitAmount:  snap.CreditAmount,
			Balance:      snap.PrevBalance,
			NetWorth:     snap.PrevNetWorth,
			Narrative:    fmt.Sprintf("Reversal of saving %s", snap.SavingID),
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actor,
				LastUpdatedAt: now,
				LastUpdatedBy: actor,
			},
		}
		if err := s.savingRepo.SaveSavingInTx(ctx, tx, reversal); err != nil {
			return nil, fmt.Errorf("failed to append reversal saving for %s: %w", snap.SavingID, err)
		}
		reversalIDs = append(reversalIDs, reversal.SavingID)
	}
	return reversalIDs, nil
}

func (s *effectService) revertCollection(ctx context.Context, tx pgx.Tx, receivable domain.Receivable, effect *domain.ReceivableEffect, actor string, now time.Time, logger *slog.Logger) error {
	switch {
	case effect.AccountCollectionID != nil && effect.CollectionCreated:
		if err := s.collectionRepo.SoftDeleteCollectionInTx(ctx, tx, *effect.AccountCollectionID, actor, now); err != nil {
			return fmt.Errorf("failed to delete collection %s: %w", *effect.AccountCollectionID, err)
		}
	case effect.AccountCollectionID != nil && effect.AccountCollectionPrevAmount != nil:
		if err := s.collectionRepo.UpdateCollectionAmountInTx(ctx, tx, *effect.AccountCollectionID, *effect.AccountCollectionPrevAmount, actor, now); err != nil {
			return fmt.Errorf("failed to restore collection %s amount: %w", *effect.AccountCollectionID, err)
		}
	default:
		// Effect rows from before the pre-amount was recorded. Fall back to
		// subtracting the posting amount from the live row.
		collection, err := s.collectionRepo.FindCollectionForUpdate(ctx, tx, receivable.UserID, receivable.AccountID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				logger.Warn("No collection found to revert")
				return nil
			}
			return fmt.Errorf("failed to lock collection for reversal: %w", err)
		}
		remaining := money.Round2(collection.Amount.Sub(receivable.AmountContributed))
		if remaining.LessThanOrEqual(decimal.Zero) {
			if err := s.collectionRepo.SoftDeleteCollectionInTx(ctx, tx, collection.CollectionID, actor, now); err != nil {
				return fmt.Errorf("failed to delete drained collection %s: %w", collection.CollectionID, err)
			}
			return nil
		}
		if err := s.collectionRepo.UpdateCollectionAmountInTx(ctx, tx, collection.CollectionID, remaining, actor, now); err != nil {
			return fmt.Errorf("failed to reduce collection %s: %w", collection.CollectionID, err)
		}
	}
	return nil
}

func (s *effectService) revertDebt(ctx context.Context, tx pgx.Tx, receivable domain.Receivable, effect *domain.ReceivableEffect, actor string, now time.Time, logger *slog.Logger) error {
	if effect.DebtID == nil {
		return nil
	}

	if effect.DebtCreatedByReceivable {
		if err := s.debtRepo.SoftDeleteDebtInTx(ctx, tx, *effect.DebtID, actor, now); err != nil {
			return fmt.Errorf("failed to delete debt %s created by receivable: %w", *effect.DebtID, err)
		}
		return nil
	}

	debt, err := s.debtRepo.FindDebtByIDForUpdate(ctx, tx, *effect.DebtID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Debt recorded in effect no longer exists", slog.String("debt_id", *effect.DebtID))
			return nil
		}
		return fmt.Errorf("failed to lock debt %s for reversal: %w", *effect.DebtID, err)
	}

	if effect.DebtPrevOutstanding != nil {
		prev := *effect.DebtPrevOutstanding
		if err := s.debtRepo.UpdateDebtBalanceInTx(ctx, tx, debt.DebtID, prev, debt.StatusForBalance(prev), actor, now); err != nil {
			return fmt.Errorf("failed to restore debt %s balance: %w", debt.DebtID, err)
		}
		return nil
	}

	// No pre-image recorded: a debt this receivable originated is removed,
	// otherwise the contributed amount goes back onto the balance.
	restored := money.Round2(debt.OutstandingBalance.Add(receivable.AmountContributed))
	if debt.CreatedByReceivableID != nil && *debt.CreatedByReceivableID == receivable.ReceivableID {
		if err := s.debtRepo.SoftDeleteDebtInTx(ctx, tx, debt.DebtID, actor, now); err != nil {
			return fmt.Errorf("failed to delete debt %s: %w", debt.DebtID, err)
		}
		return nil
	}
	if err := s.debtRepo.UpdateDebtBalanceInTx(ctx, tx, debt.DebtID, restored, debt.StatusForBalance(restored), actor, now); err != nil {
		return fmt.Errorf("failed to re-add amount to debt %s: %w", debt.DebtID, err)
	}
	return nil
}

// revertLegacy undoes a posting that predates effect auditing. Without a
// snapshot the reversal works from provenance and balance arithmetic, then
// writes an already-reverted effect row so the reversal itself is audited.
func (s *effectService) revertLegacy(ctx context.Context, tx pgx.Tx, receivable domain.Receivable, actor string, logger *slog.Logger) error {
	logger.Warn("No effect recorded for receivable, falling back to heuristic reversal")

	now := time.Now().UTC()
	amount := receivable.AmountContributed

	audit := domain.ReceivableEffect{
		EffectID:     uuid.NewString(),
		ReceivableID: receivable.ReceivableID,
		Reverted:     true,
		RevertedAt:   &now,
		RevertedBy:   &actor,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor,
			LastUpdatedAt: now,
			LastUpdatedBy: actor,
		},
	}

	debt, err := s.debtRepo.FindDebtByUserAndAccountForUpdate(ctx, tx, receivable.UserID, receivable.AccountID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("failed to lock debt for legacy reversal: %w", err)
	}
	if debt != nil {
		createdByThis := debt.CreatedByReceivableID != nil && *debt.CreatedByReceivableID == receivable.ReceivableID
		switch {
		case createdByThis, debt.OutstandingBalance.Equal(amount):
			if err := s.debtRepo.SoftDeleteDebtInTx(ctx, tx, debt.DebtID, actor, now); err != nil {
				return fmt.Errorf("failed to delete debt %s: %w", debt.DebtID, err)
			}
			audit.DebtID = &debt.DebtID
			audit.DebtCreatedByReceivable = createdByThis
		default:
			prev := debt.OutstandingBalance
			reduced := money.ClampNonNegative(money.Round2(debt.OutstandingBalance.Sub(amount)))
			if err := s.debtRepo.UpdateDebtBalanceInTx(ctx, tx, debt.DebtID, reduced, debt.StatusForBalance(reduced), actor, now); err != nil {
				return fmt.Errorf("failed to reduce debt %s: %w", debt.DebtID, err)
			}
			audit.DebtID = &debt.DebtID
			audit.DebtPrevOutstanding = &prev
		}
	}

	collection, err := s.collectionRepo.FindCollectionForUpdate(ctx, tx, receivable.UserID, receivable.AccountID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("failed to lock collection for legacy reversal: %w", err)
	}
	if collection != nil {
		prev := collection.Amount
		remaining := money.Round2(collection.Amount.Sub(amount))
		if remaining.LessThanOrEqual(decimal.Zero) {
			if err := s.collectionRepo.SoftDeleteCollectionInTx(ctx, tx, collection.CollectionID, actor, now); err != nil {
				return fmt.Errorf("failed to delete drained collection %s: %w", collection.CollectionID, err)
			}
		} else {
			if err := s.collectionRepo.UpdateCollectionAmountInTx(ctx, tx, collection.CollectionID, remaining, actor, now); err != nil {
				return fmt.Errorf("failed to reduce collection %s: %w", collection.CollectionID, err)
			}
		}
		audit.AccountCollectionID = &collection.CollectionID
		audit.AccountCollectionPrevAmount = &prev
	}

	if err := s.effectRepo.SaveEffectInTx(ctx, tx, audit); err != nil {
		return fmt.Errorf("failed to save legacy reversal audit: %w", err)
	}

	logger.Info("Legacy reversal completed", slog.String("effect_id", audit.EffectID))
	return nil
}

// RestoreEffectsForReceivableInTx re-applies a reverted posting's effects after
// the receivable is restored from soft-delete. The reversal's savings rows
// stand as history and are not re-offset. The re-applied state is recorded as a
// fresh un-reverted effect row with new pre-images, so a later safe delete can
// compensate again instead of skipping the cascade.
func (s *effectService) RestoreEffectsForReceivableInTx(ctx context.Context, tx pgx.Tx, receivable domain.Receivable, actor string) error {
	logger := middleware.GetLoggerFromCtx(ctx).With(slog.String("receivable_id", receivable.ReceivableID))

	effect, err := s.effectRepo.FindLatestEffectForReceivableForUpdate(ctx, tx, receivable.ReceivableID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("No effect recorded for restored receivable, nothing to re-apply")
			return nil
		}
		return fmt.Errorf("failed to lock effect for restore: %w", err)
	}
	if !effect.Reverted {
		logger.Info("Effect was never reverted, nothing to re-apply", slog.String("effect_id", effect.EffectID))
		return nil
	}

	now := time.Now().UTC()
	snap := portssvc.CreationSnapshot{}

	if effect.AccountCollectionID != nil {
		if effect.CollectionCreated {
			if err := s.collectionRepo.RestoreCollectionInTx(ctx, tx, *effect.AccountCollectionID, actor, now); err != nil {
				return fmt.Errorf("failed to restore collection %s: %w", *effect.AccountCollectionID, err)
			}
			snap.CollectionID = effect.AccountCollectionID
			snap.CollectionCreated = true
		} else {
			collection, err := s.collectionRepo.FindCollectionByIDForUpdate(ctx, tx, *effect.AccountCollectionID)
			if err != nil {
				return fmt.Errorf("failed to lock collection %s for restore: %w", *effect.AccountCollectionID, err)
			}
			prevAmount := collection.Amount
			bumped := money.Round2(collection.Amount.Add(receivable.AmountContributed))
			if err := s.collectionRepo.UpdateCollectionAmountInTx(ctx, tx, collection.CollectionID, bumped, actor, now); err != nil {
				return fmt.Errorf("failed to re-add amount to collection %s: %w", collection.CollectionID, err)
			}
			snap.CollectionID = &collection.CollectionID
			snap.CollectionPrevAmount = &prevAmount
		}
	}

	if effect.DebtID != nil {
		if effect.DebtCreatedByReceivable {
			if err := s.debtRepo.RestoreDebtInTx(ctx, tx, *effect.DebtID, actor, now); err != nil {
				return fmt.Errorf("failed to restore debt %s: %w", *effect.DebtID, err)
			}
			snap.DebtID = effect.DebtID
			snap.DebtCreated = true
		} else {
			prevOutstanding, err := s.reapplyDebtMutation(ctx, tx, receivable, *effect.DebtID, actor, now, logger)
			if err != nil {
				return err
			}
			if prevOutstanding != nil {
				snap.DebtID = effect.DebtID
				snap.DebtPrevOutstanding = prevOutstanding
			}
		}
	}

	if len(effect.SavingSnapshots) > 0 {
		logger.Warn("Savings ledger rows are not rebuilt on restore",
			slog.String("effect_id", effect.EffectID),
			slog.Int("snapshots", len(effect.SavingSnapshots)),
		)
	}

	// The fresh effect carries no saving snapshots: nothing was re-applied to
	// the savings ledger, so a later reversal has nothing to offset there.
	restored := domain.ReceivableEffect{
		EffectID:                    uuid.NewString(),
		ReceivableID:                receivable.ReceivableID,
		AccountCollectionID:         snap.CollectionID,
		AccountCollectionPrevAmount: snap.CollectionPrevAmount,
		CollectionCreated:           snap.CollectionCreated,
		DebtID:                      snap.DebtID,
		DebtPrevOutstanding:         snap.DebtPrevOutstanding,
		DebtCreatedByReceivable:     snap.DebtCreated,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor,
			LastUpdatedAt: now,
			LastUpdatedBy: actor,
		},
	}
	if err := s.effectRepo.SaveEffectInTx(ctx, tx, restored); err != nil {
		return fmt.Errorf("failed to record restored effects: %w", err)
	}

	logger.Info("Effects re-applied after restore",
		slog.String("effect_id", effect.EffectID),
		slog.String("restored_effect_id", restored.EffectID),
	)
	return nil
}

// reapplyDebtMutation replays the posting's balance change on a debt the
// reversal had reset, using the same mode arithmetic the posting used. Returns
// the balance the debt held before the replay, nil when the debt is gone.
func (s *effectService) reapplyDebtMutation(ctx context.Context, tx pgx.Tx, receivable domain.Receivable, debtID, actor string, now time.Time, logger *slog.Logger) (*decimal.Decimal, error) {
	debt, err := s.debtRepo.FindDebtByIDForUpdate(ctx, tx, debtID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Debt recorded in effect no longer exists", slog.String("debt_id", debtID))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock debt %s for restore: %w", debtID, err)
	}

	amount := receivable.AmountContributed
	prevOutstanding := debt.OutstandingBalance
	var newOutstanding decimal.Decimal
	if receivable.PaymentMethod == domain.PaymentGroupCredit {
		interest := money.Interest(amount, creditInterestRate)
		if debt.OutstandingBalance.Equal(amount) {
			newOutstanding = money.Round2(debt.OutstandingBalance.Add(interest))
		} else {
			newOutstanding = money.ClampNonNegative(money.Round2(debt.OutstandingBalance.Sub(amount).Add(interest)))
		}
	} else {
		newOutstanding = money.ClampNonNegative(money.Round2(debt.OutstandingBalance.Sub(amount)))
	}

	if err := s.debtRepo.UpdateDebtBalanceInTx(ctx, tx, debt.DebtID, newOutstanding, debt.StatusForBalance(newOutstanding), actor, now); err != nil {
		return nil, fmt.Errorf("failed to re-apply balance change to debt %s: %w", debt.DebtID, err)
	}
	return &prevOutstanding, nil
}
