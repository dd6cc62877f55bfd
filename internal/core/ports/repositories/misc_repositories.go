package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/wekeza/wekeza_backend/internal/core/domain"
)

// IncomeRepositoryFacade persists group income rows.
type IncomeRepositoryFacade interface {
	SaveIncomeInTx(ctx context.Context, tx pgx.Tx, income domain.Income) error
}

// AccountRepositoryFacade provides read access to group accounts (payables).
type AccountRepositoryFacade interface {
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
}

// InterestRunRepositoryFacade persists monthly interest batch summaries.
type InterestRunRepositoryFacade interface {
	SaveInterestRunInTx(ctx context.Context, tx pgx.Tx, run domain.InterestRun) error
}
