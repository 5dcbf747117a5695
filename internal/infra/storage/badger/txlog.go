package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/gabapcia/chainkeeper/internal/txtracker"
)

const (
	// txClaimDone is the terminal claim value meaning the transaction was
	// already reconciled.
	txClaimDone = "done"

	// txClaimTTL bounds how long a crashed reconciler can hold a claim.
	txClaimTTL = 30 * time.Second
)

// txLogsKey builds the key holding a chain's transaction log list.
func txLogsKey(chainID string) string {
	return fmt.Sprintf("tx_logs_%s", chainID)
}

// txClaimKey builds the key tracking the reconciliation claim of one
// transaction.
func txClaimKey(chainID, txID string) string {
	return fmt.Sprintf("tx_claim_%s_%s", chainID, txID)
}

// ListTxLogs loads the log list of the given chain, newest first. A chain
// that was never written yields an empty slice.
func (c *client) ListTxLogs(ctx context.Context, chainID string) ([]txtracker.TxLog, error) {
	var logs []txtracker.TxLog
	if _, err := c.getJSON(txLogsKey(chainID), &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// SaveTxLogs replaces the log list of the given chain.
func (c *client) SaveTxLogs(ctx context.Context, chainID string, logs []txtracker.TxLog) error {
	return c.setJSON(txLogsKey(chainID), logs, 0)
}

// ClearTxLogs removes the log list of the given chain.
func (c *client) ClearTxLogs(ctx context.Context, chainID string) error {
	return c.remove(txLogsKey(chainID))
}

// Claim takes the reconciliation claim for a transaction. The read and the
// conditional write run in one serializable transaction, so two concurrent
// claimers cannot both succeed: the loser's commit fails with a conflict,
// which is reported as ErrStillInProgress.
func (c *client) Claim(ctx context.Context, chainID, txID string) error {
	key := []byte(txClaimKey(chainID, txID))

	err := c.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			// Free; take the claim below.
		case err != nil:
			return err
		default:
			return item.Value(func(val []byte) error {
				if string(val) == txClaimDone {
					return txtracker.ErrAlreadyFinished
				}
				return txtracker.ErrStillInProgress
			})
		}

		return txn.SetEntry(badger.NewEntry(key, nil).WithTTL(txClaimTTL))
	})
	if errors.Is(err, badger.ErrConflict) {
		return txtracker.ErrStillInProgress
	}
	return err
}

// MarkComplete records that the transaction reached a terminal status, so
// later Claim calls return ErrAlreadyFinished.
func (c *client) MarkComplete(ctx context.Context, chainID, txID string) error {
	return c.setRaw(txClaimKey(chainID, txID), []byte(txClaimDone), 0)
}

// Ensure the client satisfies the consumer interfaces at compile time.
var (
	_ txtracker.TxLogStorage     = (*client)(nil)
	_ txtracker.IdempotencyGuard = (*client)(nil)
)
