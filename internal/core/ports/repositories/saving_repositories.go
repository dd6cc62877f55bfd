package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/wekeza/wekeza_backend/internal/core/domain"
)

// SavingRepositoryFacade provides access to the append-only savings ledger.
// There is intentionally no update or delete: corrections append offsetting rows.
type SavingRepositoryFacade interface {
	// FindLatestSavingForUpdate locks and returns the member's newest ledger row.
	// ErrNotFound when the member has no rows yet; callers treat that as zero
	// balance and zero net worth. The lock serializes concurrent postings that
	// would otherwise read the same "current" row.
	FindLatestSavingForUpdate(ctx context.Context, tx pgx.Tx, userID string) (*domain.Saving, error)
	// FindLatestSaving is the unlocked read of the same row, for display.
	FindLatestSaving(ctx context.Context, userID string) (*domain.Saving, error)
	SaveSavingInTx(ctx context.Context, tx pgx.Tx, saving domain.Saving) error
}
