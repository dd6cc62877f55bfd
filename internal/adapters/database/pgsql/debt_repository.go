package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/wekeza/wekeza_backend/internal/apperrors"
	"github.com/wekeza/wekeza_backend/internal/core/domain"
	"github.com/wekeza/wekeza_backend/internal/core/ports/repositories"
	"github.com/wekeza/wekeza_backend/internal/models"
)

const debtColumns = `debt_id, user_id, account_id, outstanding_balance, repayment_amount, from_savings, debt_status, last_interest_applied_on, created_by_receivable_id, deleted_at, created_at, created_by, last_updated_at, last_updated_by`

type PgxDebtRepository struct {
	pool *pgxpool.Pool
}

// NewPgxDebtRepository creates a repository for member debt rows.
func NewPgxDebtRepository(pool *pgxpool.Pool) repositories.DebtRepositoryFacade {
	return &PgxDebtRepository{pool: pool}
}

var _ repositories.DebtRepositoryFacade = (*PgxDebtRepository)(nil)

func scanDebt(row pgx.Row) (*models.Debt, error) {
	var debt models.Debt
	err := row.Scan(
		&debt.DebtID,
		&debt.UserID,
		&debt.AccountID,
		&debt.OutstandingBalance,
		&debt.RepaymentAmount,
		&debt.FromSavings,
		&debt.DebtStatus,
		&debt.LastInterestAppliedOn,
		&debt.CreatedByReceivableID,
		&debt.DeletedAt,
		&debt.CreatedAt,
		&debt.CreatedBy,
		&debt.LastUpdatedAt,
		&debt.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &debt, nil
}

func toDomainDebt(m *models.Debt) *domain.Debt {
	return &domain.Debt{
		DebtID:                m.DebtID,
		UserID:                m.UserID,
		AccountID:             m.AccountID,
		OutstandingBalance:    m.OutstandingBalance,
		RepaymentAmount:       m.RepaymentAmount,
		FromSavings:           m.FromSavings,
		DebtStatus:            domain.DebtStatus(m.DebtStatus),
		LastInterestAppliedOn: m.LastInterestAppliedOn,
		CreatedByReceivableID: m.CreatedByReceivableID,
		DeletedAt:             m.DeletedAt,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func (r *PgxDebtRepository) FindDebtByID(ctx context.Context, debtID string) (*domain.Debt, error) {
	query := `SELECT ` + debtColumns + ` FROM debts WHERE debt_id = $1;`
	debt, err := scanDebt(r.pool.QueryRow(ctx, query, debtID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find debt by ID %s: %w", debtID, err)
	}
	return toDomainDebt(debt), nil
}

func (r *PgxDebtRepository) FindDebtByUserAndAccountForUpdate(ctx context.Context, tx pgx.Tx, userID, accountID string) (*domain.Debt, error) {
	query := `
		SELECT ` + debtColumns + `
		FROM debts
		WHERE user_id = $1 AND account_id = $2 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1
		FOR UPDATE;
	`
	debt, err := scanDebt(tx.QueryRow(ctx, query, userID, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock debt for user %s account %s: %w", userID, accountID, err)
	}
	return toDomainDebt(debt), nil
}

func (r *PgxDebtRepository) FindDebtByIDForUpdate(ctx context.Context, tx pgx.Tx, debtID string) (*domain.Debt, error) {
	query := `SELECT ` + debtColumns + ` FROM debts WHERE debt_id = $1 FOR UPDATE;`
	debt, err := scanDebt(tx.QueryRow(ctx, query, debtID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock debt %s: %w", debtID, err)
	}
	return toDomainDebt(debt), nil
}

func (r *PgxDebtRepository) ListOutstandingDebtsForUpdate(ctx context.Context, tx pgx.Tx) ([]domain.Debt, error) {
	query := `
		SELECT ` + debtColumns + `
		FROM debts
		WHERE outstanding_balance > 0 AND deleted_at IS NULL
		ORDER BY created_at ASC
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query outstanding debts: %w", err)
	}
	defer rows.Close()

	debts := []domain.Debt{}
	for rows.Next() {
		debt, err := scanDebt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan debt row: %w", err)
		}
		debts = append(debts, *toDomainDebt(debt))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating debt rows: %w", rows.Err())
	}
	return debts, nil
}

func (r *PgxDebtRepository) SaveDebtInTx(ctx context.Context, tx pgx.Tx, debt domain.Debt) error {
	query := `
		INSERT INTO debts (` + debtColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := tx.Exec(ctx, query,
		debt.DebtID,
		debt.UserID,
		debt.AccountID,
		debt.OutstandingBalance,
		debt.RepaymentAmount,
		debt.FromSavings,
		string(debt.DebtStatus),
		debt.LastInterestAppliedOn,
		debt.CreatedByReceivableID,
		debt.DeletedAt,
		debt.CreatedAt,
		debt.CreatedBy,
		debt.LastUpdatedAt,
		debt.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("debt %s: %w", debt.DebtID, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert debt %s: %w", debt.DebtID, err)
	}
	return nil
}

func (r *PgxDebtRepository) UpdateDebtBalanceInTx(ctx context.Context, tx pgx.Tx, debtID string, balance decimal.Decimal, status domain.DebtStatus, updatedBy string, now time.Time) error {
	query := `
		UPDATE debts
		SET outstanding_balance = $1, debt_status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE debt_id = $5 AND deleted_at IS NULL;
	`
	cmdTag, err := tx.Exec(ctx, query, balance, string(status), now, updatedBy, debtID)
	if err != nil {
		return fmt.Errorf("failed to update debt %s balance: %w", debtID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("debt %s: %w", debtID, apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxDebtRepository) ApplyInterestInTx(ctx context.Context, tx pgx.Tx, debtID string, newBalance decimal.Decimal, appliedOn time.Time, updatedBy string) error {
	query := `
		UPDATE debts
		SET outstanding_balance = $1, last_interest_applied_on = $2, last_updated_at = $2, last_updated_by = $3
		WHERE debt_id = $4 AND deleted_at IS NULL;
	`
	cmdTag, err := tx.Exec(ctx, query, newBalance, appliedOn, updatedBy, debtID)
	if err != nil {
		return fmt.Errorf("failed to apply interest to debt %s: %w", debtID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("debt %s: %w", debtID, apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxDebtRepository) SoftDeleteDebtInTx(ctx context.Context, tx pgx.Tx, debtID, deletedBy string, now time.Time) error {
	query := `
		UPDATE debts
		SET deleted_at = $1, last_updated_at = $1, last_updated_by = $2
		WHERE debt_id = $3 AND deleted_at IS NULL;
	`
	cmdTag, err := tx.Exec(ctx, query, now, deletedBy, debtID)
	if err != nil {
		return fmt.Errorf("failed to soft delete debt %s: %w", debtID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("debt %s: %w", debtID, apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxDebtRepository) RestoreDebtInTx(ctx context.Context, tx pgx.Tx, debtID, restoredBy string, now time.Time) error {
	query := `
		UPDATE debts
		SET deleted_at = NULL, last_updated_at = $1, last_updated_by = $2
		WHERE debt_id = $3 AND deleted_at IS NOT NULL;
	`
	cmdTag, err := tx.Exec(ctx, query, now, restoredBy, debtID)
	if err != nil {
		return fmt.Errorf("failed to restore debt %s: %w", debtID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("debt %s: %w", debtID, apperrors.ErrNotFound)
	}
	return nil
}
