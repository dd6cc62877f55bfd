package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wekeza/wekeza_backend/internal/apperrors"
	"github.com/wekeza/wekeza_backend/internal/core/domain"
	"github.com/wekeza/wekeza_backend/internal/core/ports/repositories"
	"github.com/wekeza/wekeza_backend/internal/models"
)

const effectColumns = `effect_id, receivable_id, account_collection_id, account_collection_prev_amount, collection_created, saving_ids, saving_snapshots, debt_id, debt_prev_outstanding, debt_created_by_receivable, reverted, reverted_at, reverted_by, reversal_saving_ids, created_at, created_by, last_updated_at, last_updated_by`

type PgxEffectRepository struct {
	pool *pgxpool.Pool
}

// NewPgxEffectRepository creates a repository for receivable effect audit rows.
func NewPgxEffectRepository(pool *pgxpool.Pool) repositories.EffectRepositoryFacade {
	return &PgxEffectRepository{pool: pool}
}

var _ repositories.EffectRepositoryFacade = (*PgxEffectRepository)(nil)

func scanEffect(row pgx.Row) (*models.ReceivableEffect, error) {
	var effect models.ReceivableEffect
	err := row.Scan(
		&effect.EffectID,
		&effect.ReceivableID,
		&effect.AccountCollectionID,
		&effect.AccountCollectionPrevAmount,
		&effect.CollectionCreated,
		&effect.SavingIDs,
		&effect.SavingSnapshots,
		&effect.DebtID,
		&effect.DebtPrevOutstanding,
		&effect.DebtCreatedByReceivable,
		&effect.Reverted,
		&effect.RevertedAt,
		&effect.RevertedBy,
		&effect.ReversalSavingIDs,
		&effect.CreatedAt,
		&effect.CreatedBy,
		&effect.LastUpdatedAt,
		&effect.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &effect, nil
}

func toModelEffect(d domain.ReceivableEffect) (*models.ReceivableEffect, error) {
	savingIDs, err := json.Marshal(d.SavingIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal saving IDs: %w", err)
	}
	snapshots, err := json.Marshal(d.SavingSnapshots)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal saving snapshots: %w", err)
	}
	reversalIDs, err := json.Marshal(d.ReversalSavingIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal reversal saving IDs: %w", err)
	}
	return &models.ReceivableEffect{
		EffectID:                    d.EffectID,
		ReceivableID:                d.ReceivableID,
		AccountCollectionID:         d.AccountCollectionID,
		AccountCollectionPrevAmount: d.AccountCollectionPrevAmount,
		CollectionCreated:           d.CollectionCreated,
		SavingIDs:                   savingIDs,
		SavingSnapshots:             snapshots,
		DebtID:                      d.DebtID,
		DebtPrevOutstanding:         d.DebtPrevOutstanding,
		DebtCreatedByReceivable:     d.DebtCreatedByReceivable,
		Reverted:                    d.Reverted,
		RevertedAt:                  d.RevertedAt,
		RevertedBy:                  d.RevertedBy,
		ReversalSavingIDs:           reversalIDs,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}, nil
}

func toDomainEffect(m *models.ReceivableEffect) (*domain.ReceivableEffect, error) {
	effect := domain.ReceivableEffect{
		EffectID:                    m.EffectID,
		ReceivableID:                m.ReceivableID,
		AccountCollectionID:         m.AccountCollectionID,
		AccountCollectionPrevAmount: m.AccountCollectionPrevAmount,
		CollectionCreated:           m.CollectionCreated,
		DebtID:                      m.DebtID,
		DebtPrevOutstanding:         m.DebtPrevOutstanding,
		DebtCreatedByReceivable:     m.DebtCreatedByReceivable,
		Reverted:                    m.Reverted,
		RevertedAt:                  m.RevertedAt,
		RevertedBy:                  m.RevertedBy,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
	if len(m.SavingIDs) > 0 {
		if err := json.Unmarshal(m.SavingIDs, &effect.SavingIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal saving IDs for effect %s: %w", m.EffectID, err)
		}
	}
	if len(m.SavingSnapshots) > 0 {
		if err := json.Unmarshal(m.SavingSnapshots, &effect.SavingSnapshots); err != nil {
			return nil, fmt.Errorf("failed to unmarshal saving snapshots for effect %s: %w", m.EffectID, err)
		}
	}
	if len(m.ReversalSavingIDs) > 0 {
		if err := json.Unmarshal(m.ReversalSavingIDs, &effect.ReversalSavingIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal reversal saving IDs for effect %s: %w", m.EffectID, err)
		}
	}
	return &effect, nil
}

func (r *PgxEffectRepository) SaveEffectInTx(ctx context.Context, tx pgx.Tx, effect domain.ReceivableEffect) error {
	m, err := toModelEffect(effect)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO receivable_effects (` + effectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err = tx.Exec(ctx, query,
		m.EffectID,
		m.ReceivableID,
		m.AccountCollectionID,
		m.AccountCollectionPrevAmount,
		m.CollectionCreated,
		m.SavingIDs,
		m.SavingSnapshots,
		m.DebtID,
		m.DebtPrevOutstanding,
		m.DebtCreatedByReceivable,
		m.Reverted,
		m.RevertedAt,
		m.RevertedBy,
		m.ReversalSavingIDs,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("effect %s: %w", effect.EffectID, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert effect %s: %w", effect.EffectID, err)
	}
	return nil
}

func (r *PgxEffectRepository) FindLatestEffectForReceivableForUpdate(ctx context.Context, tx pgx.Tx, receivableID string) (*domain.ReceivableEffect, error) {
	query := `
		SELECT ` + effectColumns + `
		FROM receivable_effects
		WHERE receivable_id = $1
		ORDER BY created_at DESC, effect_id DESC
		LIMIT 1
		FOR UPDATE;
	`
	m, err := scanEffect(tx.QueryRow(ctx, query, receivableID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock effect for receivable %s: %w", receivableID, err)
	}
	return toDomainEffect(m)
}

func (r *PgxEffectRepository) MarkEffectRevertedInTx(ctx context.Context, tx pgx.Tx, effectID, revertedBy string, revertedAt time.Time, reversalSavingIDs []string) error {
	reversalIDs, err := json.Marshal(reversalSavingIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal reversal saving IDs: %w", err)
	}
	query := `
		UPDATE receivable_effects
		SET reverted = TRUE, reverted_at = $1, reverted_by = $2, reversal_saving_ids = $3,
		    last_updated_at = $1, last_updated_by = $2
		WHERE effect_id = $4 AND reverted = FALSE;
	`
	cmdTag, err := tx.Exec(ctx, query, revertedAt, revertedBy, reversalIDs, effectID)
	if err != nil {
		return fmt.Errorf("failed to mark effect %s reverted: %w", effectID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("effect %s not found or already reverted: %w", effectID, apperrors.ErrConflict)
	}
	return nil
}
