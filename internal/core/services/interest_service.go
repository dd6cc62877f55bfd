package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/wekeza/wekeza_backend/internal/apperrors"
	"github.com/wekeza/wekeza_backend/internal/core/domain"
	portsrepo "github.com/wekeza/wekeza_backend/internal/core/ports/repositories"
	portssvc "github.com/wekeza/wekeza_backend/internal/core/ports/services"
	"github.com/wekeza/wekeza_backend/internal/middleware"
	"github.com/wekeza/wekeza_backend/internal/utils/money"
)

// ErrInvalidInterestRate rejects rates outside [0,1]. The rate is a fraction:
// 0.01 means 1% per run.
var ErrInvalidInterestRate = fmt.Errorf("%w: interest rate must be a fraction between 0 and 1", apperrors.ErrValidation)

// interestService applies periodic interest to outstanding debts.
type interestService struct {
	txm      portsrepo.TxManager
	debtRepo portsrepo.DebtRepositoryFacade
	runRepo  portsrepo.InterestRunRepositoryFacade

	mu   sync.RWMutex
	rate decimal.Decimal
}

// NewInterestService creates the monthly interest engine. The rate is validated
// on construction the same way SetRate validates it later.
func NewInterestService(txm portsrepo.TxManager, debtRepo portsrepo.DebtRepositoryFacade, runRepo portsrepo.InterestRunRepositoryFacade, rate decimal.Decimal) (portssvc.InterestSvcFacade, error) {
	if !rateIsValid(rate) {
		return nil, ErrInvalidInterestRate
	}
	return &interestService{
		txm:      txm,
		debtRepo: debtRepo,
		runRepo:  runRepo,
		rate:     rate,
	}, nil
}

func rateIsValid(rate decimal.Decimal) bool {
	return !rate.IsNegative() && rate.LessThanOrEqual(decimal.NewFromInt(1))
}

// Rate returns the rate currently in effect.
func (s *interestService) Rate() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rate
}

// SetRate replaces the rate. An invalid rate is rejected and the previous rate
// stays in effect.
func (s *interestService) SetRate(rate decimal.Decimal) error {
	if !rateIsValid(rate) {
		return ErrInvalidInterestRate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rate = rate
	return nil
}

// ApplyMonthlyInterest runs one interest batch. The batch is a single
// transaction: listing the debts or persisting the run summary failing rolls
// everything back, while a failure applying interest to one debt is isolated
// behind a savepoint, counted, and does not disturb its siblings.
func (s *interestService) ApplyMonthlyInterest(ctx context.Context, appliedBy string) (*domain.InterestRun, error) {
	logger := middleware.GetLoggerFromCtx(ctx).With(slog.String("channel", "interest"))

	rate := s.Rate()
	now := time.Now().UTC()

	tx, err := s.txm.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin interest batch: %w", err)
	}
	defer s.txm.Rollback(ctx, tx)

	debts, err := s.debtRepo.ListOutstandingDebtsForUpdate(ctx, tx)
	if err != nil {
		logger.Error("Failed to list outstanding debts for interest run", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list outstanding debts: %w", err)
	}

	run := domain.InterestRun{
		RunID:         uuid.NewString(),
		RunAt:         now,
		Rate:          rate,
		TotalInterest: decimal.Zero,
		CreatedBy:     appliedBy,
	}

	for _, debt := range debts {
		interest := money.Interest(debt.OutstandingBalance, rate)
		newBalance := money.Round2(debt.OutstandingBalance.Add(interest))

		if err := s.applyToDebt(ctx, tx, debt.DebtID, newBalance, now, appliedBy); err != nil {
			run.Errors++
			logger.Error("Interest application failed for debt",
				slog.String("debt_id", debt.DebtID),
				slog.String("user_id", debt.UserID),
				slog.String("error", err.Error()),
			)
			continue
		}

		run.Processed++
		run.TotalInterest = run.TotalInterest.Add(interest)

		accountID := ""
		if debt.AccountID != nil {
			accountID = *debt.AccountID
		}
		logger.Info("Interest applied",
			slog.String("debt_id", debt.DebtID),
			slog.String("user_id", debt.UserID),
			slog.String("account_id", accountID),
			slog.String("previous_balance", debt.OutstandingBalance.StringFixed(2)),
			slog.String("interest", interest.StringFixed(2)),
			slog.String("new_balance", newBalance.StringFixed(2)),
			slog.String("percentage_increase", rate.Mul(decimal.NewFromInt(100)).String()),
			slog.Time("timestamp", now),
		)
	}

	if err := s.runRepo.SaveInterestRunInTx(ctx, tx, run); err != nil {
		logger.Error("Failed to persist interest run summary", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to persist interest run summary: %w", err)
	}

	if err := s.txm.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit interest batch: %w", err)
	}

	logger.Info("Interest run completed",
		slog.String("run_id", run.RunID),
		slog.Int("processed", run.Processed),
		slog.Int("errors", run.Errors),
		slog.String("total_interest", run.TotalInterest.StringFixed(2)),
	)
	return &run, nil
}

// applyToDebt updates one debt behind a savepoint so a failed statement does
// not poison the enclosing batch transaction.
func (s *interestService) applyToDebt(ctx context.Context, tx pgx.Tx, debtID string, newBalance decimal.Decimal, appliedOn time.Time, appliedBy string) error {
	sp, err := tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to open savepoint for debt %s: %w", debtID, err)
	}
	if err := s.debtRepo.ApplyInterestInTx(ctx, sp, debtID, newBalance, appliedOn, appliedBy); err != nil {
		if rbErr := sp.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("failed to roll back savepoint for debt %s: %w", debtID, rbErr)
		}
		return err
	}
	return sp.Commit(ctx)
}
