// Package txtracker records submitted transactions and reconciles their
// status against the chain. Entries start pending and move to exactly one
// terminal state, done or failed, never back. Reconciliation is idempotent
// and safe to run concurrently from several surfaces.
package txtracker

import (
	"context"
	"errors"
)

var (
	// ErrTxNotFound indicates no log entry with the given id exists on the
	// chain.
	ErrTxNotFound = errors.New("transaction log not found")
)

// Status is the lifecycle state of a tracked transaction.
type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// terminal reports whether the status can no longer change.
func (s Status) terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// TxLog is one tracked transaction.
type TxLog struct {
	TxID        string `json:"txId"    validate:"required"`
	ChainID     string `json:"chainId" validate:"required"`
	AccountID   string `json:"accountId,omitempty"`
	AccountName string `json:"accountName,omitempty"`
	Status      Status `json:"status"`
	Code        int    `json:"code"`
	Timestamp   int64  `json:"timestamp"`
	FromAddress string `json:"from,omitempty"`
	ToAddress   string `json:"to,omitempty"`
	Amount      string `json:"amount,omitempty"`
	Nonce       uint64 `json:"nonce,omitempty"`
	GasLimit    uint64 `json:"gasLimit,omitempty"`
	NodeIP      string `json:"nodeIp,omitempty"`
	BlockNumber uint64 `json:"blockNumber,omitempty"`
}

// Filter narrows a Logs listing.
type Filter struct {
	// AccountAddress, when set, keeps only entries submitted by the address.
	AccountAddress string

	// NodeEndpoint, when set, keeps only entries whose node matches it after
	// endpoint normalization, so "https://node:8080" and "https://node"
	// select the same entries.
	NodeEndpoint string
}

func (f Filter) match(log TxLog) bool {
	if f.AccountAddress != "" && log.AccountID != f.AccountAddress {
		return false
	}
	if f.NodeEndpoint != "" && BaseEndpoint(log.NodeIP) != BaseEndpoint(f.NodeEndpoint) {
		return false
	}
	return true
}

// TxLogStorage persists the per-chain transaction logs.
type TxLogStorage interface {
	// ListTxLogs loads the log list of the given chain, newest first. A
	// chain with no stored list yields an empty slice, not an error.
	ListTxLogs(ctx context.Context, chainID string) ([]TxLog, error)

	// SaveTxLogs replaces the log list of the given chain.
	SaveTxLogs(ctx context.Context, chainID string, logs []TxLog) error

	// ClearTxLogs removes the log list of the given chain.
	ClearTxLogs(ctx context.Context, chainID string) error
}

// Receipt is the settled outcome of a transaction as reported by the chain.
type Receipt struct {
	// Succeeded reports whether the transaction executed successfully.
	Succeeded bool

	// Code is the chain's result code. Zero on success.
	Code int

	// BlockNumber is the block the transaction settled in.
	BlockNumber uint64
}

// ChainQuery fetches transaction receipts from a node. A nil receipt with a
// nil error means the transaction has not settled yet.
type ChainQuery interface {
	TransactionReceipt(ctx context.Context, txID string) (*Receipt, error)
}

// ChainDirectory lists the chains the background sweep walks.
type ChainDirectory interface {
	ChainIDs(ctx context.Context) ([]string, error)
}
