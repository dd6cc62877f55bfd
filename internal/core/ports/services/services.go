package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/wekeza/wekeza_backend/internal/core/domain"
	"github.com/wekeza/wekeza_backend/internal/dto"
)

// InterestSvcFacade is the monthly interest engine.
type InterestSvcFacade interface {
	// ApplyMonthlyInterest applies the configured rate to every debt with a
	// positive outstanding balance. The whole batch is one transaction; a
	// failure on an individual debt is counted and skipped, a failure outside
	// the per-debt path rolls everything back.
	ApplyMonthlyInterest(ctx context.Context, appliedBy string) (*domain.InterestRun, error)
	// SetRate replaces the rate. Rejects values outside [0,1] with
	// apperrors.ErrValidation and keeps the previous rate in effect.
	SetRate(rate decimal.Decimal) error
	Rate() decimal.Decimal
}

// CreationSnapshot carries the identities and pre-images of everything one
// posting mutated, reported by the posting pipeline itself rather than
// re-queried afterwards.
type CreationSnapshot struct {
	CollectionID         *string
	CollectionPrevAmount *decimal.Decimal // nil when the row was created by this posting
	CollectionCreated    bool
	SavingIDs            []string
	SavingSnapshots      []domain.SavingSnapshot
	DebtID               *string
	DebtPrevOutstanding  *decimal.Decimal
	DebtCreated          bool
}

// EffectSvcFacade records, reverses and restores the cascading side effects of
// a receivable posting.
type EffectSvcFacade interface {
	// RecordCreationEffects persists the audit/undo snapshot for a posting.
	// Must run inside the same transaction as the posting it describes.
	RecordCreationEffects(ctx context.Context, tx pgx.Tx, receivable domain.Receivable, snap CreationSnapshot) (*domain.ReceivableEffect, error)
	// RevertEffectsForReceivable undoes the posting's cascade in its own
	// transaction. Idempotent: a no-op when the latest effect is already reverted.
	RevertEffectsForReceivable(ctx context.Context, receivable domain.Receivable, actor string) error
	// RevertEffectsForReceivableInTx is the same cascade inside a caller-owned
	// transaction, for the safe-delete orchestrator.
	RevertEffectsForReceivableInTx(ctx context.Context, tx pgx.Tx, receivable domain.Receivable, actor string) error
	// RestoreEffectsForReceivableInTx re-applies what can be re-applied after a
	// receivable is restored from soft-delete, and records the re-applied state
	// as a fresh un-reverted effect so a later safe delete compensates again.
	// Savings rows consumed by the reversal are not rebuilt; that loss is
	// accepted and logged.
	RestoreEffectsForReceivableInTx(ctx context.Context, tx pgx.Tx, receivable domain.Receivable, actor string) error
}

// PostingSvcFacade applies the payment-mode rules for incoming money events.
type PostingSvcFacade interface {
	PostReceivable(ctx context.Context, req dto.CreateReceivableRequest, creatorUserID string) (*domain.Receivable, error)
	PostContribution(ctx context.Context, req dto.CreateContributionRequest, creatorUserID string) (*domain.Receivable, error)
	// AssessPayableShortfall converts a member's uncovered share of an account
	// obligation into a debt of shortfall plus 1% interest, recording the
	// interest as group income. No-op when the member has covered the payable.
	AssessPayableShortfall(ctx context.Context, userID, accountID, creatorUserID string) (*domain.Debt, error)
}

// SavingSvcFacade reads the append-only savings ledger.
type SavingSvcFacade interface {
	// GetCurrentSavings returns the member's latest ledger row. A member with
	// no rows yet gets a zero-valued summary, not an error.
	GetCurrentSavings(ctx context.Context, userID string) (*domain.Saving, error)
}

// ServiceContainer bundles the service facades for route registration.
type ServiceContainer struct {
	Posting    PostingSvcFacade
	Receivable ReceivableSvcFacade
	Effect     EffectSvcFacade
	Interest   InterestSvcFacade
	Saving     SavingSvcFacade
}

// ReceivableSvcFacade is the safe delete/restore orchestrator plus reads.
type ReceivableSvcFacade interface {
	// SafeDelete reverses the receivable's recorded effects and soft-deletes it,
	// atomically.
	SafeDelete(ctx context.Context, receivableID, actor string) error
	// SafeRestore restores the receivable from soft-delete and re-applies its
	// restorable effects, atomically.
	SafeRestore(ctx context.Context, receivableID, actor string) error
	GetReceivableByID(ctx context.Context, receivableID string) (*domain.Receivable, error)
	ListReceivablesByUser(ctx context.Context, userID string, params dto.ListReceivablesParams) (*dto.ListReceivablesResponse, error)
}
