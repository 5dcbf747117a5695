package txtracker

import (
	"context"
	"errors"
)

var (
	// ErrStillInProgress indicates another reconciler currently holds the
	// claim for the transaction.
	ErrStillInProgress = errors.New("reconciliation still in progress")

	// ErrAlreadyFinished indicates the transaction was already reconciled to
	// a terminal status.
	ErrAlreadyFinished = errors.New("reconciliation already finished")
)

// IdempotencyGuard coordinates reconcilers running on different surfaces so
// a transaction's terminal write happens at most once. The guard is an
// optimization on top of the storage-level status check, not a replacement
// for it.
type IdempotencyGuard interface {
	// Claim takes the reconciliation claim for the transaction. It returns
	// ErrStillInProgress when another reconciler holds a live claim and
	// ErrAlreadyFinished when the transaction was already finalized.
	Claim(ctx context.Context, chainID, txID string) error

	// MarkComplete records that the transaction reached a terminal status,
	// so later Claim calls return ErrAlreadyFinished.
	MarkComplete(ctx context.Context, chainID, txID string) error
}

// nopIdempotencyGuard always grants the claim. Single-process deployments
// rely on the in-process lock and the storage status check instead.
type nopIdempotencyGuard struct{}

var _ IdempotencyGuard = nopIdempotencyGuard{}

// NewNopIdempotencyGuard creates an IdempotencyGuard that never blocks a
// reconciliation.
func NewNopIdempotencyGuard() nopIdempotencyGuard {
	return nopIdempotencyGuard{}
}

func (nopIdempotencyGuard) Claim(ctx context.Context, chainID, txID string) error {
	return nil
}

func (nopIdempotencyGuard) MarkComplete(ctx context.Context, chainID, txID string) error {
	return nil
}
