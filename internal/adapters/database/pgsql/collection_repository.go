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

const collectionColumns = `collection_id, user_id, account_id, amount, deleted_at, created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountCollectionRepository struct {
	pool *pgxpool.Pool
}

// NewPgxAccountCollectionRepository creates a repository for cumulative
// contribution rows.
func NewPgxAccountCollectionRepository(pool *pgxpool.Pool) repositories.AccountCollectionRepositoryFacade {
	return &PgxAccountCollectionRepository{pool: pool}
}

var _ repositories.AccountCollectionRepositoryFacade = (*PgxAccountCollectionRepository)(nil)

func scanCollection(row pgx.Row) (*models.AccountCollection, error) {
	var collection models.AccountCollection
	err := row.Scan(
		&collection.CollectionID,
		&collection.UserID,
		&collection.AccountID,
		&collection.Amount,
		&collection.DeletedAt,
		&collection.CreatedAt,
		&collection.CreatedBy,
		&collection.LastUpdatedAt,
		&collection.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &collection, nil
}

func toDomainCollection(m *models.AccountCollection) *domain.AccountCollection {
	return &domain.AccountCollection{
		CollectionID: m.CollectionID,
		UserID:       m.UserID,
		AccountID:    m.AccountID,
		Amount:       m.Amount,
		DeletedAt:    m.DeletedAt,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func (r *PgxAccountCollectionRepository) FindCollectionForUpdate(ctx context.Context, tx pgx.Tx, userID, accountID string) (*domain.AccountCollection, error) {
	query := `
		SELECT ` + collectionColumns + `
		FROM account_collections
		WHERE user_id = $1 AND account_id = $2 AND deleted_at IS NULL
		FOR UPDATE;
	`
	collection, err := scanCollection(tx.QueryRow(ctx, query, userID, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock collection for user %s account %s: %w", userID, accountID, err)
	}
	return toDomainCollection(collection), nil
}

func (r *PgxAccountCollectionRepository) FindCollectionByIDForUpdate(ctx context.Context, tx pgx.Tx, collectionID string) (*domain.AccountCollection, error) {
	query := `SELECT ` + collectionColumns + ` FROM account_collections WHERE collection_id = $1 FOR UPDATE;`
	collection, err := scanCollection(tx.QueryRow(ctx, query, collectionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock collection %s: %w", collectionID, err)
	}
	return toDomainCollection(collection), nil
}

func (r *PgxAccountCollectionRepository) SaveCollectionInTx(ctx context.Context, tx pgx.Tx, collection domain.AccountCollection) error {
	query := `
		INSERT INTO account_collections (` + collectionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := tx.Exec(ctx, query,
		collection.CollectionID,
		collection.UserID,
		collection.AccountID,
		collection.Amount,
		collection.DeletedAt,
		collection.CreatedAt,
		collection.CreatedBy,
		collection.LastUpdatedAt,
		collection.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("collection for user %s account %s: %w", collection.UserID, collection.AccountID, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert collection %s: %w", collection.CollectionID, err)
	}
	return nil
}

func (r *PgxAccountCollectionRepository) UpdateCollectionAmountInTx(ctx context.Context, tx pgx.Tx, collectionID string, amount decimal.Decimal, updatedBy string, now time.Time) error {
	query := `
		UPDATE account_collections
		SET amount = $1, last_updated_at = $2, last_updated_by = $3
		WHERE collection_id = $4;
	`
	cmdTag, err := tx.Exec(ctx, query, amount, now, updatedBy, collectionID)
	if err != nil {
		return fmt.Errorf("failed to update collection %s amount: %w", collectionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("collection %s: %w", collectionID, apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxAccountCollectionRepository) SoftDeleteCollectionInTx(ctx context.Context, tx pgx.Tx, collectionID, deletedBy string, now time.Time) error {
	query := `
		UPDATE account_collections
		SET deleted_at = $1, last_updated_at = $1, last_updated_by = $2
		WHERE collection_id = $3 AND deleted_at IS NULL;
	`
	cmdTag, err := tx.Exec(ctx, query, now, deletedBy, collectionID)
	if err != nil {
		return fmt.Errorf("failed to soft delete collection %s: %w", collectionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("collection %s: %w", collectionID, apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxAccountCollectionRepository) RestoreCollectionInTx(ctx context.Context, tx pgx.Tx, collectionID, restoredBy string, now time.Time) error {
	query := `
		UPDATE account_collections
		SET deleted_at = NULL, last_updated_at = $1, last_updated_by = $2
		WHERE collection_id = $3 AND deleted_at IS NOT NULL;
	`
	cmdTag, err := tx.Exec(ctx, query, now, restoredBy, collectionID)
	if err != nil {
		return fmt.Errorf("failed to restore collection %s: %w", collectionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("collection %s: %w", collectionID, apperrors.ErrNotFound)
	}
	return nil
}
