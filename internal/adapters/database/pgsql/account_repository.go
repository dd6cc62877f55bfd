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

type PgxAccountRepository struct {
	pool *pgxpool.Pool
}

// NewPgxAccountRepository creates a read-only repository for group accounts.
func NewPgxAccountRepository(pool *pgxpool.Pool) repositories.AccountRepositoryFacade {
	return &PgxAccountRepository{pool: pool}
}

var _ repositories.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `
		SELECT account_id, name, total_amount, is_active, created_at, created_by, last_updated_at, last_updated_by
		FROM accounts
		WHERE account_id = $1;
	`
	var account models.Account
	err := r.pool.QueryRow(ctx, query, accountID).Scan(
		&account.AccountID,
		&account.Name,
		&account.TotalAmount,
		&account.IsActive,
		&account.CreatedAt,
		&account.CreatedBy,
		&account.LastUpdatedAt,
		&account.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	return &domain.Account{
		AccountID:   account.AccountID,
		Name:        account.Name,
		TotalAmount: account.TotalAmount,
		IsActive:    account.IsActive,
		AuditFields: domain.AuditFields{
			CreatedAt:     account.CreatedAt,
			CreatedBy:     account.CreatedBy,
			LastUpdatedAt: account.LastUpdatedAt,
			LastUpdatedBy: account.LastUpdatedBy,
		},
	}, nil
}
