package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/wekeza/wekeza_backend/internal/core/domain"
)

// AccountCollectionRepositoryFacade provides access to the per (user, account)
// cumulative contribution rows.
type AccountCollectionRepositoryFacade interface {
	// FindCollectionForUpdate locks the live row for (user, account).
	// ErrNotFound when none exists yet.
	FindCollectionForUpdate(ctx context.Context, tx pgx.Tx, userID, accountID string) (*domain.AccountCollection, error)
	// FindCollectionByIDForUpdate locks the row by id, soft-deleted included.
	FindCollectionByIDForUpdate(ctx context.Context, tx pgx.Tx, collectionID string) (*domain.AccountCollection, error)
	SaveCollectionInTx(ctx context.Context, tx pgx.Tx, collection domain.AccountCollection) error
	UpdateCollectionAmountInTx(ctx context.Context, tx pgx.Tx, collectionID string, amount decimal.Decimal, updatedBy string, now time.Time) error
	SoftDeleteCollectionInTx(ctx context.Context, tx pgx.Tx, collectionID, deletedBy string, now time.Time) error
	RestoreCollectionInTx(ctx context.Context, tx pgx.Tx, collectionID, restoredBy string, now time.Time) error
}
