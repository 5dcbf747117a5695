package txtracker

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabapcia/chainkeeper/internal/eventbus"
)

type txLogStorageMock struct {
	mu      sync.Mutex
	byChain map[string][]TxLog
}

func newTxLogStorageMock() *txLogStorageMock {
	return &txLogStorageMock{byChain: make(map[string][]TxLog)}
}

func (m *txLogStorageMock) ListTxLogs(ctx context.Context, chainID string) ([]TxLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.byChain[chainID]), nil
}

func (m *txLogStorageMock) SaveTxLogs(ctx context.Context, chainID string, logs []TxLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byChain[chainID] = slices.Clone(logs)
	return nil
}

func (m *txLogStorageMock) ClearTxLogs(ctx context.Context, chainID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byChain, chainID)
	return nil
}

type chainQueryMock struct {
	receipt func(txID string) (*Receipt, error)
	calls   int
	mu      sync.Mutex
}

func (m *chainQueryMock) TransactionReceipt(ctx context.Context, txID string) (*Receipt, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.receipt(txID)
}

type publisherMock struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (m *publisherMock) Emit(event eventbus.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func (m *publisherMock) all() []eventbus.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.events)
}

func TestService_Append(t *testing.T) {
	ctx := context.Background()

	t.Run("records the entry as pending at the head", func(t *testing.T) {
		storage := newTxLogStorageMock()
		storage.byChain["chain1"] = []TxLog{{TxID: "0xold", ChainID: "chain1", Status: StatusDone}}
		svc := New(storage, nil)

		err := svc.Append(ctx, TxLog{TxID: "0xnew", ChainID: "chain1", Status: StatusDone})
		require.NoError(t, err)

		logs := storage.byChain["chain1"]
		require.Len(t, logs, 2)
		assert.Equal(t, "0xnew", logs[0].TxID)
		assert.Equal(t, StatusPending, logs[0].Status, "caller-provided status is overridden")
		assert.NotZero(t, logs[0].Timestamp)
	})

	t.Run("evicts the oldest entry past the cap", func(t *testing.T) {
		storage := newTxLogStorageMock()
		svc := New(storage, nil, WithMaxLogLength(3))

		for i := 0; i < 5; i++ {
			err := svc.Append(ctx, TxLog{TxID: fmt.Sprintf("0x%d", i), ChainID: "chain1"})
			require.NoError(t, err)
		}

		logs := storage.byChain["chain1"]
		require.Len(t, logs, 3)
		assert.Equal(t, "0x4", logs[0].TxID)
		assert.Equal(t, "0x2", logs[2].TxID)
	})

	t.Run("rejects an entry without a transaction id", func(t *testing.T) {
		svc := New(newTxLogStorageMock(), nil)

		err := svc.Append(ctx, TxLog{ChainID: "chain1"})
		require.Error(t, err)
	})
}

func TestService_Logs(t *testing.T) {
	ctx := context.Background()

	storage := newTxLogStorageMock()
	storage.byChain["chain1"] = []TxLog{
		{TxID: "0x1", AccountID: "0xalice", NodeIP: "https://node-a.example:8080"},
		{TxID: "0x2", AccountID: "0xbob", NodeIP: "https://node-a.example"},
		{TxID: "0x3", AccountID: "0xalice", NodeIP: "https://node-b.example:8080"},
	}
	svc := New(storage, nil)

	t.Run("no filter returns everything", func(t *testing.T) {
		logs, err := svc.Logs(ctx, "chain1", Filter{})
		require.NoError(t, err)
		assert.Len(t, logs, 3)
	})

	t.Run("filters by account address", func(t *testing.T) {
		logs, err := svc.Logs(ctx, "chain1", Filter{AccountAddress: "0xalice"})
		require.NoError(t, err)
		assert.Len(t, logs, 2)
	})

	t.Run("filters by normalized node endpoint", func(t *testing.T) {
		logs, err := svc.Logs(ctx, "chain1", Filter{NodeEndpoint: "https://node-a.example:9999"})
		require.NoError(t, err)

		require.Len(t, logs, 2, "port differences must not split the same node")
		assert.Equal(t, "0x1", logs[0].TxID)
		assert.Equal(t, "0x2", logs[1].TxID)
	})

	t.Run("filters compose", func(t *testing.T) {
		logs, err := svc.Logs(ctx, "chain1", Filter{
			AccountAddress: "0xalice",
			NodeEndpoint:   "https://node-a.example",
		})
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, "0x1", logs[0].TxID)
	})
}

func TestService_PurgeChain(t *testing.T) {
	ctx := context.Background()

	storage := newTxLogStorageMock()
	storage.byChain["chain1"] = []TxLog{{TxID: "0x1"}}
	storage.byChain["chain2"] = []TxLog{{TxID: "0x2"}}
	svc := New(storage, nil)

	require.NoError(t, svc.PurgeChain(ctx, "chain1"))
	assert.Empty(t, storage.byChain["chain1"])
	assert.Len(t, storage.byChain["chain2"], 1)
}

func TestService_StartClose(t *testing.T) {
	ctx := context.Background()

	t.Run("a triggered chain is reconciled by the background loop", func(t *testing.T) {
		storage := newTxLogStorageMock()
		storage.byChain["chain1"] = []TxLog{{TxID: "0xabc", ChainID: "chain1", Status: StatusPending}}
		query := &chainQueryMock{receipt: func(string) (*Receipt, error) {
			return &Receipt{Succeeded: true}, nil
		}}
		svc := New(storage, query, WithSweepInterval(time.Hour))

		require.NoError(t, svc.Start(ctx))
		defer svc.Close()

		svc.Trigger("chain1")
		assert.Eventually(t, func() bool {
			logs, err := storage.ListTxLogs(ctx, "chain1")
			return err == nil && logs[0].Status == StatusDone
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("close waits for the loop to stop", func(t *testing.T) {
		svc := New(newTxLogStorageMock(), nil, WithSweepInterval(time.Hour))

		require.NoError(t, svc.Start(ctx))
		svc.Close()
	})

	t.Run("close before start is a no-op", func(t *testing.T) {
		svc := New(newTxLogStorageMock(), nil)
		svc.Close()
	})
}
