package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wekeza/wekeza_backend/internal/core/domain"
)

// EffectRepositoryFacade provides access to receivable effect audit rows.
type EffectRepositoryFacade interface {
	SaveEffectInTx(ctx context.Context, tx pgx.Tx, effect domain.ReceivableEffect) error
	// FindLatestEffectForReceivableForUpdate locks and returns the newest effect
	// row for a receivable. ErrNotFound for legacy receivables posted before
	// effect auditing existed.
	FindLatestEffectForReceivableForUpdate(ctx context.Context, tx pgx.Tx, receivableID string) (*domain.ReceivableEffect, error)
	MarkEffectRevertedInTx(ctx context.Context, tx pgx.Tx, effectID, revertedBy string, revertedAt time.Time, reversalSavingIDs []string) error
}
