package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/wekeza/wekeza_backend/internal/core/domain"
	portsrepo "github.com/wekeza/wekeza_backend/internal/core/ports/repositories"
	portssvc "github.com/wekeza/wekeza_backend/internal/core/ports/services"
)

// fakeTx stands in for a pgx transaction. Begin hands out nested fakeTx values
// so savepoint paths can run; everything else inherits from the embedded
// interface and panics if touched, which is what we want in a unit test.
type fakeTx struct {
	pgx.Tx
}

func newFakeTx() *fakeTx { return &fakeTx{} }

func (t *fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { return newFakeTx(), nil }
func (t *fakeTx) Commit(ctx context.Context) error          { return nil }
func (t *fakeTx) Rollback(ctx context.Context) error        { return nil }

// --- Mock TxManager ---

type MockTxManager struct {
	mock.Mock
}

var _ portsrepo.TxManager = (*MockTxManager)(nil)

func (m *MockTxManager) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockTxManager) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTxManager) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// expectTx wires the usual Begin/Rollback pair and returns the tx the service
// will receive. Commit is registered separately so failure paths can omit it.
func (m *MockTxManager) expectTx() *fakeTx {
	tx := newFakeTx()
	m.On("Begin", mock.Anything).Return(tx, nil).Once()
	m.On("Rollback", mock.Anything, tx).Return(nil).Maybe()
	return tx
}

// --- Mock DebtRepository ---

type MockDebtRepository struct {
	mock.Mock
}

var _ portsrepo.DebtRepositoryFacade = (*MockDebtRepository)(nil)

func (m *MockDebtRepository) FindDebtByID(ctx context.Context, debtID string) (*domain.Debt, error) {
	args := m.Called(ctx, debtID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Debt), args.Error(1)
}

func (m *MockDebtRepository) FindDebtByUserAndAccountForUpdate(ctx context.Context, tx pgx.Tx, userID, accountID string) (*domain.Debt, error) {
	args := m.Called(ctx, tx, userID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Debt), args.Error(1)
}

func (m *MockDebtRepository) FindDebtByIDForUpdate(ctx context.Context, tx pgx.Tx, debtID string) (*domain.Debt, error) {
	args := m.Called(ctx, tx, debtID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Debt), args.Error(1)
}

func (m *MockDebtRepository) ListOutstandingDebtsForUpdate(ctx context.Context, tx pgx.Tx) ([]domain.Debt, error) {
	args := m.Called(ctx, tx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Debt), args.Error(1)
}

func (m *MockDebtRepository) SaveDebtInTx(ctx context.Context, tx pgx.Tx, debt domain.Debt) error {
	args := m.Called(ctx, tx, debt)
	return args.Error(0)
}

func (m *MockDebtRepository) UpdateDebtBalanceInTx(ctx context.Context, tx pgx.Tx, debtID string, balance decimal.Decimal, status domain.DebtStatus, updatedBy string, now time.Time) error {
	args := m.Called(ctx, tx, debtID, balance, status, updatedBy, now)
	return args.Error(0)
}

func (m *MockDebtRepository) ApplyInterestInTx(ctx context.Context, tx pgx.Tx, debtID string, newBalance decimal.Decimal, appliedOn time.Time, updatedBy string) error {
	args := m.Called(ctx, tx, debtID, newBalance, appliedOn, updatedBy)
	return args.Error(0)
}

func (m *MockDebtRepository) SoftDeleteDebtInTx(ctx context.Context, tx pgx.Tx, debtID, deletedBy string, now time.Time) error {
	args := m.Called(ctx, tx, debtID, deletedBy, now)
	return args.Error(0)
}

func (m *MockDebtRepository) RestoreDebtInTx(ctx context.Context, tx pgx.Tx, debtID, restoredBy string, now time.Time) error {
	args := m.Called(ctx, tx, debtID, restoredBy, now)
	return args.Error(0)
}

// --- Mock SavingRepository ---

type MockSavingRepository struct {
	mock.Mock
}

var _ portsrepo.SavingRepositoryFacade = (*MockSavingRepository)(nil)

func (m *MockSavingRepository) FindLatestSavingForUpdate(ctx context.Context, tx pgx.Tx, userID string) (*domain.Saving, error) {
	args := m.Called(ctx, tx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Saving), args.Error(1)
}

func (m *MockSavingRepository) FindLatestSaving(ctx context.Context, userID string) (*domain.Saving, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Saving), args.Error(1)
}

func (m *MockSavingRepository) SaveSavingInTx(ctx context.Context, tx pgx.Tx, saving domain.Saving) error {
	args := m.Called(ctx, tx, saving)
	return args.Error(0)
}

// --- Mock AccountCollectionRepository ---

type MockCollectionRepository struct {
	mock.Mock
}

var _ portsrepo.AccountCollectionRepositoryFacade = (*MockCollectionRepository)(nil)

func (m *MockCollectionRepository) FindCollectionForUpdate(ctx context.Context, tx pgx.Tx, userID, accountID string) (*domain.AccountCollection, error) {
	args := m.Called(ctx, tx, userID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountCollection), args.Error(1)
}

func (m *MockCollectionRepository) FindCollectionByIDForUpdate(ctx context.Context, tx pgx.Tx, collectionID string) (*domain.AccountCollection, error) {
	args := m.Called(ctx, tx, collectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountCollection), args.Error(1)
}

func (m *MockCollectionRepository) SaveCollectionInTx(ctx context.Context, tx pgx.Tx, collection domain.AccountCollection) error {
	args := m.Called(ctx, tx, collection)
	return args.Error(0)
}

func (m *MockCollectionRepository) UpdateCollectionAmountInTx(ctx context.Context, tx pgx.Tx, collectionID string, amount decimal.Decimal, updatedBy string, now time.Time) error {
	args := m.Called(ctx, tx, collectionID, amount, updatedBy, now)
	return args.Error(0)
}

func (m *MockCollectionRepository) SoftDeleteCollectionInTx(ctx context.Context, tx pgx.Tx, collectionID, deletedBy string, now time.Time) error {
	args := m.Called(ctx, tx, collectionID, deletedBy, now)
	return args.Error(0)
}

func (m *MockCollectionRepository) RestoreCollectionInTx(ctx context.Context, tx pgx.Tx, collectionID, restoredBy string, now time.Time) error {
	args := m.Called(ctx, tx, collectionID, restoredBy, now)
	return args.Error(0)
}

// --- Mock IncomeRepository ---

type MockIncomeRepository struct {
	mock.Mock
}

var _ portsrepo.IncomeRepositoryFacade = (*MockIncomeRepository)(nil)

func (m *MockIncomeRepository) SaveIncomeInTx(ctx context.Context, tx pgx.Tx, income domain.Income) error {
	args := m.Called(ctx, tx, income)
	return args.Error(0)
}

// --- Mock ReceivableRepository ---

type MockReceivableRepository struct {
	mock.Mock
}

var _ portsrepo.ReceivableRepositoryFacade = (*MockReceivableRepository)(nil)

func (m *MockReceivableRepository) FindReceivableByID(ctx context.Context, receivableID string) (*domain.Receivable, error) {
	args := m.Called(ctx, receivableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receivable), args.Error(1)
}

func (m *MockReceivableRepository) SaveReceivableInTx(ctx context.Context, tx pgx.Tx, receivable domain.Receivable) error {
	args := m.Called(ctx, tx, receivable)
	return args.Error(0)
}

func (m *MockReceivableRepository) SoftDeleteReceivableInTx(ctx context.Context, tx pgx.Tx, receivableID, deletedBy string, now time.Time) error {
	args := m.Called(ctx, tx, receivableID, deletedBy, now)
	return args.Error(0)
}

func (m *MockReceivableRepository) RestoreReceivableInTx(ctx context.Context, tx pgx.Tx, receivableID, restoredBy string, now time.Time) error {
	args := m.Called(ctx, tx, receivableID, restoredBy, now)
	return args.Error(0)
}

func (m *MockReceivableRepository) ListReceivablesByUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Receivable, *string, error) {
	args := m.Called(ctx, userID, limit, nextToken)
	var recs []domain.Receivable
	if args.Get(0) != nil {
		recs = args.Get(0).([]domain.Receivable)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return recs, token, args.Error(2)
}

// --- Mock EffectRepository ---

type MockEffectRepository struct {
	mock.Mock
}

var _ portsrepo.EffectRepositoryFacade = (*MockEffectRepository)(nil)

func (m *MockEffectRepository) SaveEffectInTx(ctx context.Context, tx pgx.Tx, effect domain.ReceivableEffect) error {
	args := m.Called(ctx, tx, effect)
	return args.Error(0)
}

func (m *MockEffectRepository) FindLatestEffectForReceivableForUpdate(ctx context.Context, tx pgx.Tx, receivableID string) (*domain.ReceivableEffect, error) {
	args := m.Called(ctx, tx, receivableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReceivableEffect), args.Error(1)
}

func (m *MockEffectRepository) MarkEffectRevertedInTx(ctx context.Context, tx pgx.Tx, effectID, revertedBy string, revertedAt time.Time, reversalSavingIDs []string) error {
	args := m.Called(ctx, tx, effectID, revertedBy, revertedAt, reversalSavingIDs)
	return args.Error(0)
}

// --- Mock AccountRepository ---

type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

// --- Mock InterestRunRepository ---

type MockInterestRunRepository struct {
	mock.Mock
}

var _ portsrepo.InterestRunRepositoryFacade = (*MockInterestRunRepository)(nil)

func (m *MockInterestRunRepository) SaveInterestRunInTx(ctx context.Context, tx pgx.Tx, run domain.InterestRun) error {
	args := m.Called(ctx, tx, run)
	return args.Error(0)
}

// --- Mock EffectService ---

type MockEffectService struct {
	mock.Mock
}

var _ portssvc.EffectSvcFacade = (*MockEffectService)(nil)

func (m *MockEffectService) RecordCreationEffects(ctx context.Context, tx pgx.Tx, receivable domain.Receivable, snap portssvc.CreationSnapshot) (*domain.ReceivableEffect, error) {
	args := m.Called(ctx, tx, receivable, snap)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReceivableEffect), args.Error(1)
}

func (m *MockEffectService) RevertEffectsForReceivable(ctx context.Context, receivable domain.Receivable, actor string) error {
	args := m.Called(ctx, receivable, actor)
	return args.Error(0)
}

func (m *MockEffectService) RevertEffectsForReceivableInTx(ctx context.Context, tx pgx.Tx, receivable domain.Receivable, actor string) error {
	args := m.Called(ctx, tx, receivable, actor)
	return args.Error(0)
}

func (m *MockEffectService) RestoreEffectsForReceivableInTx(ctx context.Context, tx pgx.Tx, receivable domain.Receivable, actor string) error {
	args := m.Called(ctx, tx, receivable, actor)
	return args.Error(0)
}
