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

type PgxInterestRunRepository struct {
	pool *pgxpool.Pool
}

// NewPgxInterestRunRepository creates a repository for interest batch summaries.
func NewPgxInterestRunRepository(pool *pgxpool.Pool) repositories.InterestRunRepositoryFacade {
	return &PgxInterestRunRepository{pool: pool}
}

var _ repositories.InterestRunRepositoryFacade = (*PgxInterestRunRepository)(nil)

func (r *PgxInterestRunRepository) SaveInterestRunInTx(ctx context.Context, tx pgx.Tx, run domain.InterestRun) error {
	query := `
		INSERT INTO interest_runs (run_id, run_at, rate, processed, errors, total_interest, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := tx.Exec(ctx, query,
		run.RunID,
		run.RunAt,
		run.Rate,
		run.Processed,
		run.Errors,
		run.TotalInterest,
		run.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("interest run %s: %w", run.RunID, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert interest run %s: %w", run.RunID, err)
	}
	return nil
}
