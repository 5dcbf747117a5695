package txtracker

import (
	"context"
	"errors"
	"slices"

	"github.com/gabapcia/chainkeeper/internal/eventbus"
	"github.com/gabapcia/chainkeeper/internal/pkg/logger"
)

// Reconcile implements Service.
//
// Idempotency is layered: the cross-process guard claim, then a status check
// inside the same locked read-modify-write as the terminal save. Whichever
// reconciler loses either race leaves the entry alone, so the terminal write
// and its TxStatusChanged event happen exactly once. A receipt fetch failure
// or a not-yet-settled transaction keeps the entry pending; the next sweep
// picks it up again.
func (s *service) Reconcile(ctx context.Context, chainID, txID string) error {
	switch err := s.guard.Claim(ctx, chainID, txID); {
	case errors.Is(err, ErrStillInProgress), errors.Is(err, ErrAlreadyFinished):
		logger.Debug(ctx, "reconciliation claim not granted", "chain.id", chainID, "tx.id", txID, "reason", err)
		return nil
	case err != nil:
		return err
	}

	status, err := s.currentStatus(ctx, chainID, txID)
	if err != nil {
		return err
	}
	if status.terminal() {
		return s.guard.MarkComplete(ctx, chainID, txID)
	}

	// Receipt fetch happens outside the lock; nodes can be slow.
	var receipt *Receipt
	err = s.rt.Execute(ctx, func() error {
		var fetchErr error
		receipt, fetchErr = s.query.TransactionReceipt(ctx, txID)
		return fetchErr
	})
	if err != nil {
		logger.Warn(ctx, "transaction receipt fetch failed", "chain.id", chainID, "tx.id", txID, "error", err)
		return nil
	}
	if receipt == nil {
		return nil
	}

	finalized, log, err := s.finalize(ctx, chainID, txID, *receipt)
	if err != nil {
		return err
	}
	if !finalized {
		return nil
	}

	if err := s.guard.MarkComplete(ctx, chainID, txID); err != nil {
		logger.Warn(ctx, "reconciliation completion mark failed", "chain.id", chainID, "tx.id", txID, "error", err)
	}

	if s.events != nil {
		s.events.Emit(eventbus.TxStatusChanged{
			ChainID: chainID,
			TxID:    txID,
			Status:  string(log.Status),
			Code:    log.Code,
		})
	}
	return nil
}

// currentStatus reads the entry's status under the lock.
func (s *service) currentStatus(ctx context.Context, chainID, txID string) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logs, err := s.storage.ListTxLogs(ctx, chainID)
	if err != nil {
		return "", err
	}

	i := slices.IndexFunc(logs, func(l TxLog) bool { return l.TxID == txID })
	if i < 0 {
		return "", ErrTxNotFound
	}
	return logs[i].Status, nil
}

// finalize applies the receipt's terminal status inside a locked
// read-modify-write, rechecking the status first. It reports whether this
// call performed the transition.
func (s *service) finalize(ctx context.Context, chainID, txID string, receipt Receipt) (bool, TxLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logs, err := s.storage.ListTxLogs(ctx, chainID)
	if err != nil {
		return false, TxLog{}, err
	}

	i := slices.IndexFunc(logs, func(l TxLog) bool { return l.TxID == txID })
	if i < 0 {
		return false, TxLog{}, ErrTxNotFound
	}
	if logs[i].Status.terminal() {
		return false, logs[i], nil
	}

	if receipt.Succeeded {
		logs[i].Status = StatusDone
		logs[i].Code = 0
	} else {
		logs[i].Status = StatusFailed
		logs[i].Code = receipt.Code
	}
	logs[i].BlockNumber = receipt.BlockNumber

	if err := s.storage.SaveTxLogs(ctx, chainID, logs); err != nil {
		return false, TxLog{}, err
	}
	return true, logs[i], nil
}

// ReconcileAll implements Service.
func (s *service) ReconcileAll(ctx context.Context, chainID string) error {
	logs, err := s.storage.ListTxLogs(ctx, chainID)
	if err != nil {
		return err
	}

	for _, log := range logs {
		if log.Status.terminal() {
			continue
		}
		if err := s.Reconcile(ctx, chainID, log.TxID); err != nil {
			logger.Warn(ctx, "transaction reconciliation failed", "chain.id", chainID, "tx.id", log.TxID, "error", err)
		}
	}
	return nil
}
