package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/wekeza/wekeza_backend/internal/apperrors"
	"github.com/wekeza/wekeza_backend/internal/core/domain"
	portssvc "github.com/wekeza/wekeza_backend/internal/core/ports/services"
	"github.com/wekeza/wekeza_backend/internal/core/services"
	"github.com/wekeza/wekeza_backend/internal/dto"
)

type PostingServiceTestSuite struct {
	suite.Suite
	mockTxm            *MockTxManager
	mockDebtRepo       *MockDebtRepository
	mockSavingRepo     *MockSavingRepository
	mockCollectionRepo *MockCollectionRepository
	mockIncomeRepo     *MockIncomeRepository
	mockReceivableRepo *MockReceivableRepository
	mockAccountRepo    *MockAccountRepository
	mockEffectSvc      *MockEffectService
	service            portssvc.PostingSvcFacade

	actor     string
	userID    string
	accountID string
	account   *domain.Account
}

func (suite *PostingServiceTestSuite) SetupTest() {
	suite.mockTxm = new(MockTxManager)
	suite.mockDebtRepo = new(MockDebtRepository)
	suite.mockSavingRepo = new(MockSavingRepository)
	suite.mockCollectionRepo = new(MockCollectionRepository)
	suite.mockIncomeRepo = new(MockIncomeRepository)
	suite.mockReceivableRepo = new(MockReceivableRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockEffectSvc = new(MockEffectService)

	suite.service = services.NewPostingService(
		suite.mockTxm,
		suite.mockDebtRepo,
		suite.mockSavingRepo,
		suite.mockCollectionRepo,
		suite.mockIncomeRepo,
		suite.mockReceivableRepo,
		suite.mockAccountRepo,
		suite.mockEffectSvc,
	)

	suite.actor = uuid.NewString()
	suite.userID = uuid.NewString()
	suite.accountID = uuid.NewString()
	suite.account = &domain.Account{
		AccountID:   suite.accountID,
		Name:        "October payable",
		TotalAmount: decimal.RequireFromString("1000.00"),
		IsActive:    true,
	}
}

func (suite *PostingServiceTestSuite) expectAccount() {
	suite.mockAccountRepo.On("FindAccountByID", mock.Anything, suite.accountID).
		Return(suite.account, nil).Once()
}

func (suite *PostingServiceTestSuite) latestSaving(balance, netWorth string) *domain.Saving {
	return &domain.Saving{
		SavingID: uuid.NewString(),
		UserID:   suite.userID,
		Balance:  decimal.RequireFromString(balance),
		NetWorth: decimal.RequireFromString(netWorth),
	}
}

func (suite *PostingServiceTestSuite) debtWithBalance(balance string) *domain.Debt {
	return &domain.Debt{
		DebtID:             uuid.NewString(),
		UserID:             suite.userID,
		AccountID:          &suite.accountID,
		OutstandingBalance: decimal.RequireFromString(balance),
		DebtStatus:         domain.DebtPending,
	}
}

func (suite *PostingServiceTestSuite) TestPostReceivable_NoDebtIsValidationError() {
	ctx := context.Background()
	suite.expectAccount()
	suite.mockTxm.expectTx()
	suite.mockDebtRepo.On("FindDebtByUserAndAccountForUpdate", ctx, mock.Anything, suite.userID, suite.accountID).
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.PostReceivable(ctx, dto.CreateReceivableRequest{
		UserID:        suite.userID,
		AccountID:     suite.accountID,
		Amount:        decimal.RequireFromString("100.00"),
		PaymentMethod: domain.PaymentCash,
	}, suite.actor)

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "no associated debt record")
	suite.mockTxm.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *PostingServiceTestSuite) TestPostReceivable_RejectsOverpayment() {
	ctx := context.Background()
	suite.expectAccount()
	suite.mockTxm.expectTx()
	suite.mockDebtRepo.On("FindDebtByUserAndAccountForUpdate", ctx, mock.Anything, suite.userID, suite.accountID).
		Return(suite.debtWithBalance("50.00"), nil).Once()

	_, err := suite.service.PostReceivable(ctx, dto.CreateReceivableRequest{
		UserID:        suite.userID,
		AccountID:     suite.accountID,
		Amount:        decimal.RequireFromString("100.00"),
		PaymentMethod: domain.PaymentCash,
	}, suite.actor)

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.mockSavingRepo.AssertNotCalled(suite.T(), "SaveSavingInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockTxm.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *PostingServiceTestSuite) TestPostReceivable_FromSavingsOverpaymentClampsDebt() {
	ctx := context.Background()
	debt := suite.debtWithBalance("50.00")

	suite.expectAccount()
	suite.mockTxm.expectTx()
	suite.mockDebtRepo.On("FindDebtByUserAndAccountForUpdate", ctx, mock.Anything, suite.userID, suite.accountID).
		Return(debt, nil).Once()
	suite.mockSavingRepo.On("FindLatestSavingForUpdate", ctx, mock.Anything, suite.userID).
		Return(suite.latestSaving("500.00", "800.00"), nil).Once()
	// Paying 100.00 from savings against a 50.00 debt clamps the balance to
	// zero instead of rejecting the payment.
	suite.mockDebtRepo.On("UpdateDebtBalanceInTx", ctx, mock.Anything, debt.DebtID,
		mock.MatchedBy(func(d decimal.Decimal) bool { return d.IsZero() }),
		domain.DebtCleared, suite.actor, mock.Anything).Return(nil).Once()
	suite.mockSavingRepo.On("SaveSavingInTx", ctx, mock.Anything, mock.MatchedBy(func(s domain.Saving) bool {
		return s.Balance.Equal(decimal.RequireFromString("400.00")) &&
			s.DebitAmount.Equal(decimal.RequireFromString("100.00"))
	})).Return(nil).Once()
	suite.mockCollectionRepo.On("FindCollectionForUpdate", ctx, mock.Anything, suite.userID, suite.accountID).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockCollectionRepo.On("SaveCollectionInTx", ctx, mock.Anything, mock.AnythingOfType("domain.AccountCollection")).
		Return(nil).Once()
	suite.mockReceivableRepo.On("SaveReceivableInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Receivable")).
		Return(nil).Once()
	suite.mockEffectSvc.On("RecordCreationEffects", ctx, mock.Anything, mock.AnythingOfType("domain.Receivable"), mock.AnythingOfType("services.CreationSnapshot")).
		Return(&domain.ReceivableEffect{}, nil).Once()
	suite.mockTxm.On("Commit", ctx, mock.Anything).Return(nil).Once()

	_, err := suite.service.PostReceivable(ctx, dto.CreateReceivableRequest{
		UserID:        suite.userID,
		AccountID:     suite.accountID,
		Amount:        decimal.RequireFromString("100.00"),
		FromSavings:   true,
		PaymentMethod: domain.PaymentFromSavings,
	}, suite.actor)

	suite.Require().NoError(err)
	suite.mockDebtRepo.AssertExpectations(suite.T())
}

func (suite *PostingServiceTestSuite) TestPostContribution_FromSavingsInsufficientFunds() {
	ctx := context.Background()
	suite.expectAccount()
	suite.mockTxm.expectTx()
	suite.mockDebtRepo.On("FindDebtByUserAndAccountForUpdate", ctx, mock.Anything, suite.userID, suite.accountID).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockSavingRepo.On("FindLatestSavingForUpdate", ctx, mock.Anything, suite.userID).
		Return(suite.latestSaving("50.00", "50.00"), nil).Once()

	_, err := suite.service.PostContribution(ctx, dto.CreateContributionRequest{
		UserID:        suite.userID,
		AccountID:     suite.accountID,
		Amount:        decimal.RequireFromString("100.00"),
		FromSavings:   true,
		PaymentMethod: domain.PaymentFromSavings,
	}, suite.actor)

	suite.Require().ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.mockSavingRepo.AssertNotCalled(suite.T(), "SaveSavingInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockTxm.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *PostingServiceTestSuite) TestPostContribution_FromSavingsDebitsBalance() {
	ctx := context.Background()
	suite.expectAccount()
	suite.mockTxm.expectTx()
	suite.mockDebtRepo.On("FindDebtByUserAndAccountForUpdate", ctx, mock.Anything, suite.userID, suite.accountID).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockSavingRepo.On("FindLatestSavingForUpdate", ctx, mock.Anything, suite.userID).
		Return(suite.latestSaving("500.00", "800.00"), nil).Once()
	suite.mockSavingRepo.On("SaveSavingInTx", ctx, mock.Anything, mock.MatchedBy(func(s domain.Saving) bool {
		return s.Balance.Equal(decimal.RequireFromString("400.00")) &&
			s.NetWorth.Equal(decimal.RequireFromString("800.00")) &&
			s.DebitAmount.Equal(decimal.RequireFromString("100.00"))
	})).Return(nil).Once()
	suite.mockCollectionRepo.On("FindCollectionForUpdate", ctx, mock.Anything, suite.userID, suite.accountID).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockCollectionRepo.On("SaveCollectionInTx", ctx, mock.Anything, mock.AnythingOfType("domain.AccountCollection")).
		Return(nil).Once()
	suite.mockReceivableRepo.On("SaveReceivableInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Receivable")).
		Return(nil).Once()
	suite.mockEffectSvc.On("RecordCreationEffects", ctx, mock.Anything, mock.AnythingOfType("domain.Receivable"), mock.AnythingOfType("services.CreationSnapshot")).
		Return(&domain.ReceivableEffect{}, nil).Once()
	suite.mockTxm.On("Commit", ctx, mock.Anything).Return(nil).Once()

	rec, err := suite.service.PostContribution(ctx, dto.CreateContributionRequest{
		UserID:        suite.userID,
		AccountID:     suite.accountID,
		Amount:        decimal.RequireFromString("100.00"),
		FromSavings:   true,
		PaymentMethod: domain.PaymentFromSavings,
	}, suite.actor)

	suite.Require().NoError(err)
	suite.Equal(domain.KindContribution, rec.Kind)
	suite.Equal(domain.PaymentPartiallyPaid, rec.PaymentStatus)
	suite.mockSavingRepo.AssertExpectations(suite.T())
	suite.mockIncomeRepo.AssertNotCalled(suite.T(), "SaveIncomeInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PostingServiceTestSuite) TestPostContribution_GroupCreditExactBalance() {
	ctx := context.Background()
	debt := suite.debtWithBalance("500.00")

	suite.expectAccount()
	suite.mockTxm.expectTx()
	suite.mockDebtRepo.On("FindDebtByUserAndAccountForUpdate", ctx, mock.Anything, suite.userID, suite.accountID).
		Return(debt, nil).Once()
	suite.mockSavingRepo.On("FindLatestSavingForUpdate", ctx, mock.Anything, suite.userID).
		Return(suite.latestSaving("200.00", "700.00"), nil).Once()
	// Financing 500.00 as group credit adds 1% interest: 500 + 5 = 505.
	suite.mockDebtRepo.On("UpdateDebtBalanceInTx", ctx, mock.Anything, debt.DebtID,
		decimal.RequireFromString("505.00"), domain.DebtPending, suite.actor, mock.Anything).Return(nil).Once()
	// Net worth drops by the interest only; savings balance untouched.
	suite.mockSavingRepo.On("SaveSavingInTx", ctx, mock.Anything, mock.MatchedBy(func(s domain.Saving) bool {
		return s.Balance.Equal(decimal.RequireFromString("200.00")) &&
			s.NetWorth.Equal(decimal.RequireFromString("695.00")) &&
			s.DebitAmount.Equal(decimal.RequireFromString("5.00"))
	})).Return(nil).Once()
	suite.mockCollectionRepo.On("FindCollectionForUpdate", ctx, mock.Anything, suite.userID, suite.accountID).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockCollectionRepo.On("SaveCollectionInTx", ctx, mock.Anything, mock.AnythingOfType("domain.AccountCollection")).
		Return(nil).Once()
	suite.mockReceivableRepo.On("SaveReceivableInTx", ctx, mock.Anything, mock.MatchedBy(func(r domain.Receivable) bool {
		return r.PaymentStatus == domain.PaymentCredited
	})).Return(nil).Once()
	suite.mockIncomeRepo.On("SaveIncomeInTx", ctx, mock.Anything, mock.MatchedBy(func(i domain.Income) bool {
		return i.Origin == domain.OriginGroupCreditInterest &&
			i.InterestAmount.Equal(decimal.RequireFromString("5.00"))
	})).Return(nil).Once()
	suite.mockEffectSvc.On("RecordCreationEffects", ctx, mock.Anything, mock.AnythingOfType("domain.Receivable"), mock.AnythingOfType("services.CreationSnapshot")).
		Return(&domain.ReceivableEffect{}, nil).Once()
	suite.mockTxm.On("Commit", ctx, mock.Anything).Return(nil).Once()

	rec, err := suite.service.PostContribution(ctx, dto.CreateContributionRequest{
		UserID:        suite.userID,
		AccountID:     suite.accountID,
		Amount:        decimal.RequireFromString("500.00"),
		PaymentMethod: domain.PaymentGroupCredit,
	}, suite.actor)

	suite.Require().NoError(err)
	suite.Equal(domain.PaymentCredited, rec.PaymentStatus)
	suite.mockDebtRepo.AssertExpectations(suite.T())
	suite.mockIncomeRepo.AssertExpectations(suite.T())
}

func (suite *PostingServiceTestSuite) TestPostContribution_GroupCreditPartial() {
	ctx := context.Background()
	debt := suite.debtWithBalance("500.00")

	suite.expectAccount()
	suite.mockTxm.expectTx()
	suite.mockDebtRepo.On("FindDebtByUserAndAccountForUpdate", ctx, mock.Anything, suite.userID, suite.accountID).
		Return(debt, nil).Once()
	suite.mockSavingRepo.On("FindLatestSavingForUpdate", ctx, mock.Anything, suite.userID).
		Return(suite.latestSaving("200.00", "700.00"), nil).Once()
	// 500 - 200 + 2 = 302.
	suite.mockDebtRepo.On("UpdateDebtBalanceInTx", ctx, mock.Anything, debt.DebtID,
		decimal.RequireFromString("302.00"), domain.DebtPending, suite.actor, mock.Anything).Return(nil).Once()
	suite.mockSavingRepo.On("SaveSavingInTx", ctx, mock.Anything, mock.MatchedBy(func(s domain.Saving) bool {
		return s.NetWorth.Equal(decimal.RequireFromString("698.00"))
	})).Return(nil).Once()
	suite.mockCollectionRepo.On("FindCollectionForUpdate", ctx, mock.Anything, suite.userID, suite.accountID).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockCollectionRepo.On("SaveCollectionInTx", ctx, mock.Anything, mock.AnythingOfType("domain.AccountCollection")).
		Return(nil).Once()
	suite.mockReceivableRepo.On("SaveReceivableInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Receivable")).
		Return(nil).Once()
	suite.mockIncomeRepo.On("SaveIncomeInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Income")).
		Return(nil).Once()
	suite.mockEffectSvc.On("RecordCreationEffects", ctx, mock.Anything, mock.AnythingOfType("domain.Receivable"), mock.AnythingOfType("services.CreationSnapshot")).
		Return(&domain.ReceivableEffect{}, nil).Once()
	suite.mockTxm.On("Commit", ctx, mock.Anything).Return(nil).Once()

	_, err := suite.service.PostContribution(ctx, dto.CreateContributionRequest{
		UserID:        suite.userID,
		AccountID:     suite.accountID,
		Amount:        decimal.RequireFromString("200.00"),
		PaymentMethod: domain.PaymentGroupCredit,
	}, suite.actor)

	suite.Require().NoError(err)
	suite.mockDebtRepo.AssertExpectations(suite.T())
}

func (suite *PostingServiceTestSuite) TestPostReceivable_CashReducesDebtAndRaisesNetWorth() {
	ctx := context.Background()
	debt := suite.debtWithBalance("300.00")
	collectionID := uuid.NewString()

	suite.expectAccount()
	suite.mockTxm.expectTx()
	suite.mockDebtRepo.On("FindDebtByUserAndAccountForUpdate", ctx, mock.Anything, suite.userID, suite.accountID).
		Return(debt, nil).Once()
	suite.mockSavingRepo.On("FindLatestSavingForUpdate", ctx, mock.Anything, suite.userID).
		Return(suite.latestSaving("200.00", "700.00"), nil).Once()
	suite.mockDebtRepo.On("UpdateDebtBalanceInTx", ctx, mock.Anything, debt.DebtID,
		decimal.RequireFromString("200.00"), domain.DebtPending, suite.actor, mock.Anything).Return(nil).Once()
	suite.mockSavingRepo.On("SaveSavingInTx", ctx, mock.Anything, mock.MatchedBy(func(s domain.Saving) bool {
		return s.Balance.Equal(decimal.RequireFromString("200.00")) &&
			s.NetWorth.Equal(decimal.RequireFromString("800.00")) &&
			s.CreditAmount.Equal(decimal.RequireFromString("100.00"))
	})).Return(nil).Once()
	suite.mockCollectionRepo.On("FindCollectionForUpdate", ctx, mock.Anything, suite.userID, suite.accountID).
		Return(&domain.AccountCollection{
			CollectionID: collectionID,
			UserID:       suite.userID,
			AccountID:    suite.accountID,
			Amount:       decimal.RequireFromString("900.00"),
		}, nil).Once()
	suite.mockCollectionRepo.On("UpdateCollectionAmountInTx", ctx, mock.Anything, collectionID,
		decimal.RequireFromString("1000.00"), suite.actor, mock.Anything).Return(nil).Once()
	// Running total reaches the account obligation, so the posting completes it.
	suite.mockReceivableRepo.On("SaveReceivableInTx", ctx, mock.Anything, mock.MatchedBy(func(r domain.Receivable) bool {
		return r.PaymentStatus == domain.PaymentCompleted &&
			r.TotalAmountContributed.Equal(decimal.RequireFromString("1000.00"))
	})).Return(nil).Once()
	suite.mockEffectSvc.On("RecordCreationEffects", ctx, mock.Anything, mock.AnythingOfType("domain.Receivable"), mock.MatchedBy(func(snap portssvc.CreationSnapshot) bool {
		return snap.DebtID != nil && *snap.DebtID == debt.DebtID &&
			snap.DebtPrevOutstanding != nil && snap.DebtPrevOutstanding.Equal(decimal.RequireFromString("300.00")) &&
			len(snap.SavingIDs) == 1 && len(snap.SavingSnapshots) == 1 &&
			snap.CollectionPrevAmount != nil && snap.CollectionPrevAmount.Equal(decimal.RequireFromString("900.00"))
	})).Return(&domain.ReceivableEffect{}, nil).Once()
	suite.mockTxm.On("Commit", ctx, mock.Anything).Return(nil).Once()

	rec, err := suite.service.PostReceivable(ctx, dto.CreateReceivableRequest{
		UserID:        suite.userID,
		AccountID:     suite.accountID,
		Amount:        decimal.RequireFromString("100.00"),
		PaymentMethod: domain.PaymentCash,
	}, suite.actor)

	suite.Require().NoError(err)
	suite.Equal(domain.PaymentCompleted, rec.PaymentStatus)
	suite.mockEffectSvc.AssertExpectations(suite.T())
}

func (suite *PostingServiceTestSuite) TestAssessPayableShortfall_CreatesDebtWithInterest() {
	ctx := context.Background()

	suite.expectAccount()
	suite.mockTxm.expectTx()
	suite.mockCollectionRepo.On("FindCollectionForUpdate", ctx, mock.Anything, suite.userID, suite.accountID).
		Return(&domain.AccountCollection{
			CollectionID: uuid.NewString(),
			UserID:       suite.userID,
			AccountID:    suite.accountID,
			Amount:       decimal.RequireFromString("500.00"),
		}, nil).Once()
	suite.mockDebtRepo.On("FindDebtByUserAndAccountForUpdate", ctx, mock.Anything, suite.userID, suite.accountID).
		Return(nil, apperrors.ErrNotFound).Once()
	// Shortfall 500 carries 1% interest: debt of 505.
	suite.mockDebtRepo.On("SaveDebtInTx", ctx, mock.Anything, mock.MatchedBy(func(d domain.Debt) bool {
		return d.OutstandingBalance.Equal(decimal.RequireFromString("505.00")) &&
			d.DebtStatus == domain.DebtPending
	})).Return(nil).Once()
	suite.mockIncomeRepo.On("SaveIncomeInTx", ctx, mock.Anything, mock.MatchedBy(func(i domain.Income) bool {
		return i.Origin == domain.OriginPayableInterest &&
			i.InterestAmount.Equal(decimal.RequireFromString("5.00"))
	})).Return(nil).Once()
	suite.mockTxm.On("Commit", ctx, mock.Anything).Return(nil).Once()

	debt, err := suite.service.AssessPayableShortfall(ctx, suite.userID, suite.accountID, suite.actor)

	suite.Require().NoError(err)
	suite.Require().NotNil(debt)
	suite.Equal("505.00", debt.OutstandingBalance.StringFixed(2))
	suite.mockIncomeRepo.AssertExpectations(suite.T())
}

func (suite *PostingServiceTestSuite) TestAssessPayableShortfall_FullyCoveredIsNoOp() {
	ctx := context.Background()

	suite.expectAccount()
	suite.mockTxm.expectTx()
	suite.mockCollectionRepo.On("FindCollectionForUpdate", ctx, mock.Anything, suite.userID, suite.accountID).
		Return(&domain.AccountCollection{
			CollectionID: uuid.NewString(),
			UserID:       suite.userID,
			AccountID:    suite.accountID,
			Amount:       decimal.RequireFromString("1000.00"),
		}, nil).Once()
	suite.mockTxm.On("Commit", ctx, mock.Anything).Return(nil).Once()

	debt, err := suite.service.AssessPayableShortfall(ctx, suite.userID, suite.accountID, suite.actor)

	suite.Require().NoError(err)
	suite.Nil(debt)
	suite.mockDebtRepo.AssertNotCalled(suite.T(), "SaveDebtInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockIncomeRepo.AssertNotCalled(suite.T(), "SaveIncomeInTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestPostingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PostingServiceTestSuite))
}
