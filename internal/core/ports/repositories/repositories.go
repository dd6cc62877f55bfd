package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TxManager begins and finishes database transactions. Repository methods with
// an InTx / ForUpdate suffix must be called with a transaction obtained here;
// row locks do not outlive the transaction that took them.
type TxManager interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Commit(ctx context.Context, tx pgx.Tx) error
	Rollback(ctx context.Context, tx pgx.Tx) error
}
