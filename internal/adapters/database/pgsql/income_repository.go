package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wekeza/wekeza_backend/internal/apperrors"
	"github.com/wekeza/wekeza_backend/internal/core/domain"
	"github.com/wekeza/wekeza_backend/internal/core/ports/repositories"
)

type PgxIncomeRepository struct {
	pool *pgxpool.Pool
}

// NewPgxIncomeRepository creates a repository for group income rows.
func NewPgxIncomeRepository(pool *pgxpool.Pool) repositories.IncomeRepositoryFacade {
	return &PgxIncomeRepository{pool: pool}
}

var _ repositories.IncomeRepositoryFacade = (*PgxIncomeRepository)(nil)

func (r *PgxIncomeRepository) SaveIncomeInTx(ctx context.Context, tx pgx.Tx, income domain.Income) error {
	query := `
		INSERT INTO incomes (income_id, user_id, account_id, origin, interest_amount, description, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := tx.Exec(ctx, query,
		income.IncomeID,
		income.UserID,
		income.AccountID,
		string(income.Origin),
		income.InterestAmount,
		income.Description,
		income.CreatedAt,
		income.CreatedBy,
		income.LastUpdatedAt,
		income.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("income %s: %w", income.IncomeID, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert income %s: %w", income.IncomeID, err)
	}
	return nil
}
