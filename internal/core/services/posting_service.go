package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/wekeza/wekeza_backend/internal/apperrors"
	"github.com/wekeza/wekeza_backend/internal/core/domain"
	portsrepo "github.com/wekeza/wekeza_backend/internal/core/ports/repositories"
	portssvc "github.com/wekeza/wekeza_backend/internal/core/ports/services"
	"github.com/wekeza/wekeza_backend/internal/dto"
	"github.com/wekeza/wekeza_backend/internal/middleware"
	"github.com/wekeza/wekeza_backend/internal/utils/money"
)

var (
	ErrNoAssociatedDebt  = fmt.Errorf("%w: no associated debt record", apperrors.ErrValidation)
	ErrBalanceWouldGoNeg = fmt.Errorf("%w: payment would drive outstanding balance negative", apperrors.ErrValidation)
	ErrAccountNotFound   = fmt.Errorf("account not found: %w", apperrors.ErrNotFound)
)

// creditInterestRate is the fixed 1% applied to group-credit contributions and
// payable shortfalls.
var creditInterestRate = decimal.NewFromFloat(0.01)

// postingService applies the payment-mode rules when money events are created.
// All cascading mutations happen in one explicit pipeline inside one
// transaction; nothing fires from persistence hooks.
type postingService struct {
	txm            portsrepo.TxManager
	debtRepo       portsrepo.DebtRepositoryFacade
	savingRepo     portsrepo.SavingRepositoryFacade
	collectionRepo portsrepo.AccountCollectionRepositoryFacade
	incomeRepo     portsrepo.IncomeRepositoryFacade
	receivableRepo portsrepo.ReceivableRepositoryFacade
	accountRepo    portsrepo.AccountRepositoryFacade
	effectSvc      portssvc.EffectSvcFacade
}

// NewPostingService creates the posting pipeline.
func NewPostingService(
	txm portsrepo.TxManager,
	debtRepo portsrepo.DebtRepositoryFacade,
	savingRepo portsrepo.SavingRepositoryFacade,
	collectionRepo portsrepo.AccountCollectionRepositoryFacade,
	incomeRepo portsrepo.IncomeRepositoryFacade,
	receivableRepo portsrepo.ReceivableRepositoryFacade,
	accountRepo portsrepo.AccountRepositoryFacade,
	effectSvc portssvc.EffectSvcFacade,
) portssvc.PostingSvcFacade {
	return &postingService{
		txm:            txm,
		debtRepo:       debtRepo,
		savingRepo:     savingRepo,
		collectionRepo: collectionRepo,
		incomeRepo:     incomeRepo,
		receivableRepo: receivableRepo,
		accountRepo:    accountRepo,
		effectSvc:      effectSvc,
	}
}

var _ portssvc.PostingSvcFacade = (*postingService)(nil)

// postingInput normalizes the two request shapes into one pipeline input.
type postingInput struct {
	kind          domain.ReceivableKind
	userID        string
	accountID     string
	amount        decimal.Decimal
	fromSavings   bool
	paymentMethod domain.PaymentMethod
	requireDebt   bool
}

// PostReceivable posts a payment event against an existing debt. Missing the
// (user, account) debt is a validation failure, as is any amount that would
// drive the outstanding balance negative.
func (s *postingService) PostReceivable(ctx context.Context, req dto.CreateReceivableRequest, creatorUserID string) (*domain.Receivable, error) {
	return s.post(ctx, postingInput{
		kind:          domain.KindReceivable,
		userID:        req.UserID,
		accountID:     req.AccountID,
		amount:        money.Round2(req.Amount),
		fromSavings:   req.FromSavings || req.PaymentMethod == domain.PaymentFromSavings,
		paymentMethod: req.PaymentMethod,
		requireDebt:   true,
	}, creatorUserID)
}

// PostContribution posts a contribution event. A contribution tolerates the
// absence of a debt: 'other' modes simply skip the debt mutation, and a
// group-credit contribution originates a new credited debt.
func (s *postingService) PostContribution(ctx context.Context, req dto.CreateContributionRequest, creatorUserID string) (*domain.Receivable, error) {
	return s.post(ctx, postingInput{
		kind:          domain.KindContribution,
		userID:        req.UserID,
		accountID:     req.AccountID,
		amount:        money.Round2(req.Amount),
		fromSavings:   req.FromSavings || req.PaymentMethod == domain.PaymentFromSavings,
		paymentMethod: req.PaymentMethod,
		requireDebt:   false,
	}, creatorUserID)
}

func (s *postingService) post(ctx context.Context, in postingInput, creatorUserID string) (*domain.Receivable, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if in.amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}

	account, err := s.accountRepo.FindAccountByID(ctx, in.accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %s", ErrAccountNotFound, in.accountID)
		}
		return nil, fmt.Errorf("failed to fetch account %s: %w", in.accountID, err)
	}

	now := time.Now().UTC()
	receivableID := uuid.NewString()
	groupCredit := in.paymentMethod == domain.PaymentGroupCredit

	tx, err := s.txm.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin posting transaction: %w", err)
	}
	defer s.txm.Rollback(ctx, tx)

	// Lock order: debt, then latest saving, then collection. Every mutating
	// path takes the same order so concurrent postings cannot deadlock.
	debt, err := s.debtRepo.FindDebtByUserAndAccountForUpdate(ctx, tx, in.userID, in.accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to lock debt for user %s on account %s: %w", in.userID, in.accountID, err)
		}
		if in.requireDebt {
			return nil, fmt.Errorf("%w for user %s on account %s", ErrNoAssociatedDebt, in.userID, in.accountID)
		}
		debt = nil
	}

	// Overpayment is rejected for direct receivable payments only. From-savings
	// and group-credit postings clamp the balance instead.
	if debt != nil && !groupCredit && !in.fromSavings && in.amount.GreaterThan(debt.OutstandingBalance) && in.requireDebt {
		return nil, fmt.Errorf("%w: amount %s exceeds outstanding balance %s",
			ErrBalanceWouldGoNeg, in.amount.StringFixed(2), debt.OutstandingBalance.StringFixed(2))
	}

	prevBalance, prevNetWorth, err := s.lockCurrentSavings(ctx, tx, in.userID)
	if err != nil {
		return nil, err
	}

	// Apply the payment-mode rules.
	var (
		interest    = decimal.Zero
		newBalance  = prevBalance
		newNetWorth = prevNetWorth
		credit      = decimal.Zero
		debit       = decimal.Zero
		narrative   string
	)
	switch {
	case in.fromSavings:
		newBalance = money.Round2(prevBalance.Sub(in.amount))
		if newBalance.IsNegative() {
			return nil, fmt.Errorf("%w: savings balance %s cannot cover %s",
				apperrors.ErrInsufficientFunds, prevBalance.StringFixed(2), in.amount.StringFixed(2))
		}
		debit = in.amount
		narrative = "Contribution paid from savings"
	case groupCredit:
		interest = money.Interest(in.amount, creditInterestRate)
		newNetWorth = money.Round2(prevNetWorth.Sub(interest))
		debit = interest
		narrative = "Group credit interest adjustment"
	default:
		newNetWorth = money.Round2(prevNetWorth.Add(in.amount))
		credit = in.amount
		narrative = "Contribution received"
	}

	// Debt mutation.
	snap := portssvc.CreationSnapshot{}
	switch {
	case debt != nil && groupCredit:
		prevOutstanding := debt.OutstandingBalance
		var newOutstanding decimal.Decimal
		if debt.OutstandingBalance.Equal(in.amount) {
			// Financing the full balance as credit: the debt only grows by
			// the interest the group just earned on it.
			newOutstanding = money.Round2(debt.OutstandingBalance.Add(interest))
		} else {
			newOutstanding = money.ClampNonNegative(money.Round2(debt.OutstandingBalance.Sub(in.amount).Add(interest)))
		}
		status := debt.StatusForBalance(newOutstanding)
		if err := s.debtRepo.UpdateDebtBalanceInTx(ctx, tx, debt.DebtID, newOutstanding, status, creatorUserID, now); err != nil {
			return nil, fmt.Errorf("failed to update debt %s: %w", debt.DebtID, err)
		}
		snap.DebtID = &debt.DebtID
		snap.DebtPrevOutstanding = &prevOutstanding
	case debt != nil:
		prevOutstanding := debt.OutstandingBalance
		newOutstanding := money.ClampNonNegative(money.Round2(debt.OutstandingBalance.Sub(in.amount)))
		status := debt.StatusForBalance(newOutstanding)
		if err := s.debtRepo.UpdateDebtBalanceInTx(ctx, tx, debt.DebtID, newOutstanding, status, creatorUserID, now); err != nil {
			return nil, fmt.Errorf("failed to update debt %s: %w", debt.DebtID, err)
		}
		snap.DebtID = &debt.DebtID
		snap.DebtPrevOutstanding = &prevOutstanding
	case groupCredit:
		// Group credit with no existing debt originates one.
		newDebt := domain.Debt{
			DebtID:                uuid.NewString(),
			UserID:                in.userID,
			AccountID:             &in.accountID,
			OutstandingBalance:    money.Round2(in.amount.Add(interest)),
			RepaymentAmount:       decimal.Zero,
			FromSavings:           false,
			DebtStatus:            domain.DebtCredited,
			CreatedByReceivableID: &receivableID,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     creatorUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: creatorUserID,
			},
		}
		if err := s.debtRepo.SaveDebtInTx(ctx, tx, newDebt); err != nil {
			return nil, fmt.Errorf("failed to create group credit debt: %w", err)
		}
		snap.DebtID = &newDebt.DebtID
		snap.DebtCreated = true
	}

	// Savings ledger row. The pre-images feed the effect snapshot so a
	// reversal can restore these exact values.
	saving := domain.Saving{
		SavingID:     uuid.NewString(),
		UserID:       in.userID,
		CreditAmount: credit,
		DebitAmount:  debit,
		Balance:      newBalance,
		NetWorth:     newNetWorth,
		Narrative:    narrative,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	if err := s.savingRepo.SaveSavingInTx(ctx, tx, saving); err != nil {
		return nil, fmt.Errorf("failed to append saving row: %w", err)
	}
	snap.SavingIDs = []string{saving.SavingID}
	snap.SavingSnapshots = []domain.SavingSnapshot{{
		SavingID:     saving.SavingID,
		CreditAmount: credit,
		DebitAmount:  debit,
		PrevBalance:  prevBalance,
		PrevNetWorth: prevNetWorth,
	}}

	// Cumulative collection for (user, account).
	totalContributed, err := s.bumpCollection(ctx, tx, in, &snap, creatorUserID, now)
	if err != nil {
		return nil, err
	}

	// The receivable's own payment status.
	var paymentStatus domain.PaymentStatus
	switch {
	case groupCredit:
		paymentStatus = domain.PaymentCredited
	case totalContributed.GreaterThanOrEqual(account.TotalAmount):
		paymentStatus = domain.PaymentCompleted
	case totalContributed.IsPositive():
		paymentStatus = domain.PaymentPartiallyPaid
	default:
		paymentStatus = domain.PaymentPending
	}

	receivable := domain.Receivable{
		ReceivableID:           receivableID,
		UserID:                 in.userID,
		AccountID:              in.accountID,
		Kind:                   in.kind,
		AmountContributed:      in.amount,
		TotalAmountContributed: totalContributed,
		FromSavings:            in.fromSavings,
		PaymentMethod:          in.paymentMethod,
		PaymentStatus:          paymentStatus,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	if err := s.receivableRepo.SaveReceivableInTx(ctx, tx, receivable); err != nil {
		return nil, fmt.Errorf("failed to save receivable: %w", err)
	}

	// Interest the group earned is income, and it was added to the debt above,
	// so it comes off the member's net worth to avoid double counting (already
	// reflected in the saving row).
	if interest.IsPositive() {
		income := domain.Income{
			IncomeID:       uuid.NewString(),
			UserID:         in.userID,
			AccountID:      &in.accountID,
			Origin:         domain.OriginGroupCreditInterest,
			InterestAmount: interest,
			Description:    fmt.Sprintf("1%% group credit interest on %s", in.amount.StringFixed(2)),
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     creatorUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: creatorUserID,
			},
		}
		if err := s.incomeRepo.SaveIncomeInTx(ctx, tx, income); err != nil {
			return nil, fmt.Errorf("failed to save interest income: %w", err)
		}
	}

	if _, err := s.effectSvc.RecordCreationEffects(ctx, tx, receivable, snap); err != nil {
		return nil, fmt.Errorf("failed to record creation effects: %w", err)
	}

	if err := s.txm.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit posting: %w", err)
	}

	logger.Info("Posting committed",
		slog.String("receivable_id", receivable.ReceivableID),
		slog.String("kind", string(in.kind)),
		slog.String("user_id", in.userID),
		slog.String("account_id", in.accountID),
		slog.String("amount", in.amount.StringFixed(2)),
		slog.String("payment_status", string(paymentStatus)),
	)
	return &receivable, nil
}

// lockCurrentSavings locks the member's latest ledger row and returns its
// balance and net worth; a member with no rows yet starts from zero.
func (s *postingService) lockCurrentSavings(ctx context.Context, tx pgx.Tx, userID string) (decimal.Decimal, decimal.Decimal, error) {
	latest, err := s.savingRepo.FindLatestSavingForUpdate(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Zero, decimal.Zero, nil
		}
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to lock latest saving for user %s: %w", userID, err)
	}
	return latest.Balance, latest.NetWorth, nil
}

// bumpCollection adds the amount to the member's cumulative collection for the
// account, creating the row when it is the first contribution, and fills in the
// collection part of the effect snapshot.
func (s *postingService) bumpCollection(ctx context.Context, tx pgx.Tx, in postingInput, snap *portssvc.CreationSnapshot, creatorUserID string, now time.Time) (decimal.Decimal, error) {
	collection, err := s.collectionRepo.FindCollectionForUpdate(ctx, tx, in.userID, in.accountID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return decimal.Zero, fmt.Errorf("failed to lock account collection: %w", err)
	}

	if collection == nil {
		newCollection := domain.AccountCollection{
			CollectionID: uuid.NewString(),
			UserID:       in.userID,
			AccountID:    in.accountID,
			Amount:       in.amount,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     creatorUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: creatorUserID,
			},
		}
		if err := s.collectionRepo.SaveCollectionInTx(ctx, tx, newCollection); err != nil {
			return decimal.Zero, fmt.Errorf("failed to create account collection: %w", err)
		}
		snap.CollectionID = &newCollection.CollectionID
		snap.CollectionCreated = true
		return newCollection.Amount, nil
	}

	prevAmount := collection.Amount
	newAmount := money.Round2(collection.Amount.Add(in.amount))
	if err := s.collectionRepo.UpdateCollectionAmountInTx(ctx, tx, collection.CollectionID, newAmount, creatorUserID, now); err != nil {
		return decimal.Zero, fmt.Errorf("failed to update account collection %s: %w", collection.CollectionID, err)
	}
	snap.CollectionID = &collection.CollectionID
	snap.CollectionPrevAmount = &prevAmount
	return newAmount, nil
}

// AssessPayableShortfall turns a member's uncovered share of an account
// obligation into debt. Shortfall carries 1% interest recorded as group income;
// a fully covered payable creates nothing.
func (s *postingService) AssessPayableShortfall(ctx context.Context, userID, accountID, creatorUserID string) (*domain.Debt, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %s", ErrAccountNotFound, accountID)
		}
		return nil, fmt.Errorf("failed to fetch account %s: %w", accountID, err)
	}

	now := time.Now().UTC()

	tx, err := s.txm.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin shortfall assessment: %w", err)
	}
	defer s.txm.Rollback(ctx, tx)

	collected := decimal.Zero
	collection, err := s.collectionRepo.FindCollectionForUpdate(ctx, tx, userID, accountID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to lock account collection: %w", err)
	}
	if collection != nil {
		collected = collection.Amount
	}

	shortfall := money.Round2(account.TotalAmount.Sub(collected))
	if !shortfall.IsPositive() {
		logger.Info("Payable fully covered, no debt assessed",
			slog.String("user_id", userID),
			slog.String("account_id", accountID),
			slog.String("collected", collected.StringFixed(2)),
		)
		return nil, s.txm.Commit(ctx, tx)
	}

	interest := money.Interest(shortfall, creditInterestRate)
	owed := money.Round2(shortfall.Add(interest))

	debt, err := s.debtRepo.FindDebtByUserAndAccountForUpdate(ctx, tx, userID, accountID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to lock debt: %w", err)
	}

	if debt != nil {
		newOutstanding := money.Round2(debt.OutstandingBalance.Add(owed))
		if err := s.debtRepo.UpdateDebtBalanceInTx(ctx, tx, debt.DebtID, newOutstanding, debt.StatusForBalance(newOutstanding), creatorUserID, now); err != nil {
			return nil, fmt.Errorf("failed to update debt %s: %w", debt.DebtID, err)
		}
		debt.OutstandingBalance = newOutstanding
	} else {
		created := domain.Debt{
			DebtID:             uuid.NewString(),
			UserID:             userID,
			AccountID:          &accountID,
			OutstandingBalance: owed,
			RepaymentAmount:    decimal.Zero,
			DebtStatus:         domain.DebtPending,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     creatorUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: creatorUserID,
			},
		}
		if err := s.debtRepo.SaveDebtInTx(ctx, tx, created); err != nil {
			return nil, fmt.Errorf("failed to create shortfall debt: %w", err)
		}
		debt = &created
	}

	income := domain.Income{
		IncomeID:       uuid.NewString(),
		UserID:         userID,
		AccountID:      &accountID,
		Origin:         domain.OriginPayableInterest,
		InterestAmount: interest,
		Description:    fmt.Sprintf("1%% interest on payable shortfall of %s", shortfall.StringFixed(2)),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	if err := s.incomeRepo.SaveIncomeInTx(ctx, tx, income); err != nil {
		return nil, fmt.Errorf("failed to save shortfall interest income: %w", err)
	}

	if err := s.txm.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit shortfall assessment: %w", err)
	}

	logger.Info("Payable shortfall assessed",
		slog.String("user_id", userID),
		slog.String("account_id", accountID),
		slog.String("shortfall", shortfall.StringFixed(2)),
		slog.String("interest", interest.StringFixed(2)),
		slog.String("outstanding_balance", debt.OutstandingBalance.StringFixed(2)),
	)
	return debt, nil
}
