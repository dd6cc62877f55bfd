package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/wekeza/wekeza_backend/internal/core/domain"
)

// DebtRepositoryFacade provides access to member debt rows. Balance-sensitive
// reads take an exclusive row lock so concurrent repayments serialize.
type DebtRepositoryFacade interface {
	FindDebtByID(ctx context.Context, debtID string) (*domain.Debt, error)
	// FindDebtByUserAndAccountForUpdate locks and returns the live (not
	// soft-deleted) debt for a member on an account. ErrNotFound when absent.
	FindDebtByUserAndAccountForUpdate(ctx context.Context, tx pgx.Tx, userID, accountID string) (*domain.Debt, error)
	FindDebtByIDForUpdate(ctx context.Context, tx pgx.Tx, debtID string) (*domain.Debt, error)
	// ListOutstandingDebtsForUpdate locks every live debt with a positive
	// outstanding balance, for the monthly interest batch.
	ListOutstandingDebtsForUpdate(ctx context.Context, tx pgx.Tx) ([]domain.Debt, error)
	SaveDebtInTx(ctx context.Context, tx pgx.Tx, debt domain.Debt) error
	UpdateDebtBalanceInTx(ctx context.Context, tx pgx.Tx, debtID string, balance decimal.Decimal, status domain.DebtStatus, updatedBy string, now time.Time) error
	// ApplyInterestInTx sets the new balance and stamps last_interest_applied_on.
	ApplyInterestInTx(ctx context.Context, tx pgx.Tx, debtID string, newBalance decimal.Decimal, appliedOn time.Time, updatedBy string) error
	SoftDeleteDebtInTx(ctx context.Context, tx pgx.Tx, debtID, deletedBy string, now time.Time) error
	RestoreDebtInTx(ctx context.Context, tx pgx.Tx, debtID, restoredBy string, now time.Time) error
}
