package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wekeza/wekeza_backend/internal/apperrors"
	"github.com/wekeza/wekeza_backend/internal/core/domain"
	"github.com/wekeza/wekeza_backend/internal/core/ports/repositories"
	"github.com/wekeza/wekeza_backend/internal/models"
	"github.com/wekeza/wekeza_backend/internal/utils/pagination"
)

const receivableColumns = `receivable_id, user_id, account_id, kind, amount_contributed, total_amount_contributed, from_savings, payment_method, payment_status, deleted_at, created_at, created_by, last_updated_at, last_updated_by`

type PgxReceivableRepository struct {
	pool *pgxpool.Pool
}

// NewPgxReceivableRepository creates a repository for receivable rows.
func NewPgxReceivableRepository(pool *pgxpool.Pool) repositories.ReceivableRepositoryFacade {
	return &PgxReceivableRepository{pool: pool}
}

var _ repositories.ReceivableRepositoryFacade = (*PgxReceivableRepository)(nil)

func scanReceivable(row pgx.Row) (*models.Receivable, error) {
	var rec models.Receivable
	err := row.Scan(
		&rec.ReceivableID,
		&rec.UserID,
		&rec.AccountID,
		&rec.Kind,
		&rec.AmountContributed,
		&rec.TotalAmountContributed,
		&rec.FromSavings,
		&rec.PaymentMethod,
		&rec.PaymentStatus,
		&rec.DeletedAt,
		&rec.CreatedAt,
		&rec.CreatedBy,
		&rec.LastUpdatedAt,
		&rec.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func toDomainReceivable(m *models.Receivable) *domain.Receivable {
	return &domain.Receivable{
		ReceivableID:           m.ReceivableID,
		UserID:                 m.UserID,
		AccountID:              m.AccountID,
		Kind:                   domain.ReceivableKind(m.Kind),
		AmountContributed:      m.AmountContributed,
		TotalAmountContributed: m.TotalAmountContributed,
		FromSavings:            m.FromSavings,
		PaymentMethod:          domain.PaymentMethod(m.PaymentMethod),
		PaymentStatus:          domain.PaymentStatus(m.PaymentStatus),
		DeletedAt:              m.DeletedAt,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

// FindReceivableByID returns the row whether or not it is soft-deleted; the
// delete/restore orchestrator needs to see both states.
func (r *PgxReceivableRepository) FindReceivableByID(ctx context.Context, receivableID string) (*domain.Receivable, error) {
	query := `SELECT ` + receivableColumns + ` FROM receivables WHERE receivable_id = $1;`
	rec, err := scanReceivable(r.pool.QueryRow(ctx, query, receivableID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find receivable by ID %s: %w", receivableID, err)
	}
	return toDomainReceivable(rec), nil
}

func (r *PgxReceivableRepository) SaveReceivableInTx(ctx context.Context, tx pgx.Tx, receivable domain.Receivable) error {
	query := `
		INSERT INTO receivables (` + receivableColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := tx.Exec(ctx, query,
		receivable.ReceivableID,
		receivable.UserID,
		receivable.AccountID,
		string(receivable.Kind),
		receivable.AmountContributed,
		receivable.TotalAmountContributed,
		receivable.FromSavings,
		string(receivable.PaymentMethod),
		string(receivable.PaymentStatus),
		receivable.DeletedAt,
		receivable.CreatedAt,
		receivable.CreatedBy,
		receivable.LastUpdatedAt,
		receivable.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("receivable %s: %w", receivable.ReceivableID, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert receivable %s: %w", receivable.ReceivableID, err)
	}
	return nil
}

func (r *PgxReceivableRepository) SoftDeleteReceivableInTx(ctx context.Context, tx pgx.Tx, receivableID, deletedBy string, now time.Time) error {
	query := `
		UPDATE receivables
		SET deleted_at = $1, last_updated_at = $1, last_updated_by = $2
		WHERE receivable_id = $3 AND deleted_at IS NULL;
	`
	cmdTag, err := tx.Exec(ctx, query, now, deletedBy, receivableID)
	if err != nil {
		return fmt.Errorf("failed to soft delete receivable %s: %w", receivableID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("receivable %s: %w", receivableID, apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxReceivableRepository) RestoreReceivableInTx(ctx context.Context, tx pgx.Tx, receivableID, restoredBy string, now time.Time) error {
	query := `
		UPDATE receivables
		SET deleted_at = NULL, last_updated_at = $1, last_updated_by = $2
		WHERE receivable_id = $3 AND deleted_at IS NOT NULL;
	`
	cmdTag, err := tx.Exec(ctx, query, now, restoredBy, receivableID)
	if err != nil {
		return fmt.Errorf("failed to restore receivable %s: %w", receivableID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("receivable %s: %w", receivableID, apperrors.ErrNotFound)
	}
	return nil
}

// ListReceivablesByUser pages live rows newest-first with a keyset cursor so
// new postings cannot shift pages the way offsets would.
func (r *PgxReceivableRepository) ListReceivablesByUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Receivable, *string, error) {
	if limit <= 0 {
		limit = 20
	}

	args := []interface{}{userID, limit + 1}
	query := `
		SELECT ` + receivableColumns + `
		FROM receivables
		WHERE user_id = $1 AND deleted_at IS NULL`
	if nextToken != nil && *nextToken != "" {
		createdAt, id, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		query += ` AND (created_at, receivable_id) < ($3, $4)`
		args = append(args, createdAt, id)
	}
	query += `
		ORDER BY created_at DESC, receivable_id DESC
		LIMIT $2;
	`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query receivables for user %s: %w", userID, err)
	}
	defer rows.Close()

	receivables := []domain.Receivable{}
	for rows.Next() {
		rec, err := scanReceivable(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan receivable row: %w", err)
		}
		receivables = append(receivables, *toDomainReceivable(rec))
	}
	if rows.Err() != nil {
		return nil, nil, fmt.Errorf("error iterating receivable rows: %w", rows.Err())
	}

	// One extra row was fetched to learn whether another page exists.
	var token *string
	if len(receivables) > limit {
		receivables = receivables[:limit]
		last := receivables[len(receivables)-1]
		t := pagination.EncodeToken(last.CreatedAt, last.ReceivableID)
		token = &t
	}
	return receivables, token, nil
}
