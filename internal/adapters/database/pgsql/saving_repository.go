package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wekeza/wekeza_backend/internal/apperrors"
	"github.com/wekeza/wekeza_backend/internal/core/domain"
	"github.com/wekeza/wekeza_backend/internal/core/ports/repositories"
	"github.com/wekeza/wekeza_backend/internal/models"
)

const savingColumns = `saving_id, user_id, credit_amount, debit_amount, balance, net_worth, narrative, created_at, created_by, last_updated_at, last_updated_by`

// PgxSavingRepository stores the append-only savings ledger. There is no
// update or delete statement in this file on purpose.
type PgxSavingRepository struct {
	pool *pgxpool.Pool
}

// NewPgxSavingRepository creates a repository for savings ledger rows.
func NewPgxSavingRepository(pool *pgxpool.Pool) repositories.SavingRepositoryFacade {
	return &PgxSavingRepository{pool: pool}
}

var _ repositories.SavingRepositoryFacade = (*PgxSavingRepository)(nil)

func scanSaving(row pgx.Row) (*models.Saving, error) {
	var saving models.Saving
	err := row.Scan(
		&saving.SavingID,
		&saving.UserID,
		&saving.CreditAmount,
		&saving.DebitAmount,
		&saving.Balance,
		&saving.NetWorth,
		&saving.Narrative,
		&saving.CreatedAt,
		&saving.CreatedBy,
		&saving.LastUpdatedAt,
		&saving.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &saving, nil
}

func toDomainSaving(m *models.Saving) *domain.Saving {
	return &domain.Saving{
		SavingID:     m.SavingID,
		UserID:       m.UserID,
		CreditAmount: m.CreditAmount,
		DebitAmount:  m.DebitAmount,
		Balance:      m.Balance,
		NetWorth:     m.NetWorth,
		Narrative:    m.Narrative,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

// latestSavingQuery picks the member's newest row; created_at ties break on id
// so "latest" is deterministic.
const latestSavingQuery = `
	SELECT ` + savingColumns + `
	FROM savings
	WHERE user_id = $1
	ORDER BY created_at DESC, saving_id DESC
	LIMIT 1`

func (r *PgxSavingRepository) FindLatestSavingForUpdate(ctx context.Context, tx pgx.Tx, userID string) (*domain.Saving, error) {
	saving, err := scanSaving(tx.QueryRow(ctx, latestSavingQuery+` FOR UPDATE;`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock latest saving for user %s: %w", userID, err)
	}
	return toDomainSaving(saving), nil
}

func (r *PgxSavingRepository) FindLatestSaving(ctx context.Context, userID string) (*domain.Saving, error) {
	saving, err := scanSaving(r.pool.QueryRow(ctx, latestSavingQuery+`;`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find latest saving for user %s: %w", userID, err)
	}
	return toDomainSaving(saving), nil
}

func (r *PgxSavingRepository) SaveSavingInTx(ctx context.Context, tx pgx.Tx, saving domain.Saving) error {
	query := `
		INSERT INTO savings (` + savingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := tx.Exec(ctx, query,
		saving.SavingID,
		saving.UserID,
		saving.CreditAmount,
		saving.DebitAmount,
		saving.Balance,
		saving.NetWorth,
		saving.Narrative,
		saving.CreatedAt,
		saving.CreatedBy,
		saving.LastUpdatedAt,
		saving.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("saving %s: %w", saving.SavingID, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert saving %s: %w", saving.SavingID, err)
	}
	return nil
}
