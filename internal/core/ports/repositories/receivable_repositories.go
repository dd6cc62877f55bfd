package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wekeza/wekeza_backend/internal/core/domain"
)

// ReceivableRepositoryFacade provides access to receivable rows.
type ReceivableRepositoryFacade interface {
	// FindReceivableByID returns the row whether or not it is soft-deleted;
	// callers check DeletedAt.
	FindReceivableByID(ctx context.Context, receivableID string) (*domain.Receivable, error)
	SaveReceivableInTx(ctx context.Context, tx pgx.Tx, receivable domain.Receivable) error
	SoftDeleteReceivableInTx(ctx context.Context, tx pgx.Tx, receivableID, deletedBy string, now time.Time) error
	RestoreReceivableInTx(ctx context.Context, tx pgx.Tx, receivableID, restoredBy string, now time.Time) error
	// ListReceivablesByUser returns live rows newest-first with keyset pagination.
	ListReceivablesByUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Receivable, *string, error)
}
