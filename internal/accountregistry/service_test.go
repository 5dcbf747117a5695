package accountregistry

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabapcia/chainkeeper/internal/eventbus"
)

type accountStorageMock struct {
	byChain map[string][]Account
	saveErr error
}

func newAccountStorageMock() *accountStorageMock {
	return &accountStorageMock{byChain: make(map[string][]Account)}
}

func (m *accountStorageMock) ListAccounts(ctx context.Context, chainID string) ([]Account, error) {
	return slices.Clone(m.byChain[chainID]), nil
}

func (m *accountStorageMock) SaveAccounts(ctx context.Context, chainID string, accounts []Account) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.byChain[chainID] = slices.Clone(accounts)
	return nil
}

func (m *accountStorageMock) ClearAccounts(ctx context.Context, chainID string) error {
	delete(m.byChain, chainID)
	return nil
}

type chainDirectoryMock struct {
	ids    []string
	active ChainRef
}

func (m *chainDirectoryMock) ChainIDs(ctx context.Context) ([]string, error) {
	return m.ids, nil
}

func (m *chainDirectoryMock) ActiveChain(ctx context.Context) (ChainRef, error) {
	return m.active, nil
}

type blobStorageMock struct {
	deleted []string
}

func (m *blobStorageMock) DeleteBlob(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

type metadataPurgerMock struct {
	cleared []string
}

func (m *metadataPurgerMock) ClearAccountMetadata(ctx context.Context, chainID, address string) error {
	m.cleared = append(m.cleared, chainID+"/"+address)
	return nil
}

type publisherMock struct {
	events []eventbus.Event
}

func (m *publisherMock) Emit(event eventbus.Event) {
	m.events = append(m.events, event)
}

func twoChainDirectory() *chainDirectoryMock {
	return &chainDirectoryMock{
		ids:    []string{"chain1", "chain2"},
		active: ChainRef{ChainID: "chain1", ChainName: "Chain One"},
	}
}

func TestService_AddAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("mirrors the account onto every chain", func(t *testing.T) {
		storage := newAccountStorageMock()
		svc := New(storage, twoChainDirectory())

		err := svc.AddAccount(ctx, "chain1", Account{Address: "0xabc", Name: "alice"})
		require.NoError(t, err)

		require.Len(t, storage.byChain["chain1"], 1)
		require.Len(t, storage.byChain["chain2"], 1)
		assert.Equal(t, "0xabc", storage.byChain["chain2"][0].Address)
	})

	t.Run("becomes current on the origin chain only when others have a selection", func(t *testing.T) {
		storage := newAccountStorageMock()
		storage.byChain["chain2"] = []Account{{Address: "0xold", IsCurrent: true}}
		svc := New(storage, twoChainDirectory())

		err := svc.AddAccount(ctx, "chain1", Account{Address: "0xabc", Name: "alice"})
		require.NoError(t, err)

		assert.True(t, storage.byChain["chain1"][0].IsCurrent)

		chain2 := storage.byChain["chain2"]
		require.Len(t, chain2, 2)
		assert.False(t, chain2[0].IsCurrent, "mirrored copy must not steal the selection")
		assert.True(t, chain2[1].IsCurrent)
	})

	t.Run("assigns rotating palette colors to new addresses", func(t *testing.T) {
		storage := newAccountStorageMock()
		svc := New(storage, twoChainDirectory())

		require.NoError(t, svc.AddAccount(ctx, "chain1", Account{Address: "0xa", Name: "a"}))
		require.NoError(t, svc.AddAccount(ctx, "chain1", Account{Address: "0xb", Name: "b"}))

		accounts := storage.byChain["chain1"]
		require.Len(t, accounts, 2)
		assert.NotEqual(t, accounts[0].Color, accounts[1].Color)
		assert.NotEmpty(t, accounts[0].Color)
	})

	t.Run("keeps the first assigned color when re-adding an address", func(t *testing.T) {
		storage := newAccountStorageMock()
		svc := New(storage, twoChainDirectory())

		require.NoError(t, svc.AddAccount(ctx, "chain1", Account{Address: "0xa", Name: "a"}))
		first := storage.byChain["chain1"][0].Color

		require.NoError(t, svc.AddAccount(ctx, "chain1", Account{Address: "0xa", Name: "renamed"}))
		accounts := storage.byChain["chain1"]
		require.Len(t, accounts, 1)
		assert.Equal(t, "renamed", accounts[0].Name)
		assert.Equal(t, first, accounts[0].Color)
	})

	t.Run("rejects an account without an address", func(t *testing.T) {
		svc := New(newAccountStorageMock(), twoChainDirectory())

		err := svc.AddAccount(ctx, "chain1", Account{Name: "alice"})
		require.Error(t, err)
	})

	t.Run("publishes AccountChanged when the active chain selection moves", func(t *testing.T) {
		pub := new(publisherMock)
		storage := newAccountStorageMock()
		svc := New(storage, twoChainDirectory(), WithEventPublisher(pub))

		require.NoError(t, svc.AddAccount(ctx, "chain1", Account{Address: "0xabc", Name: "alice"}))

		require.Len(t, pub.events, 1)
		changed, ok := pub.events[0].(eventbus.AccountChanged)
		require.True(t, ok)
		assert.Equal(t, "0xabc", changed.Address)
		assert.Equal(t, "Chain One", changed.ChainName)
	})

	t.Run("does not publish when the selection is untouched", func(t *testing.T) {
		pub := new(publisherMock)
		storage := newAccountStorageMock()
		storage.byChain["chain1"] = []Account{{Address: "0xcur", Name: "current", IsCurrent: true}}
		svc := New(storage, twoChainDirectory(), WithEventPublisher(pub))

		// Adding on the non-active chain leaves chain1's selection alone.
		require.NoError(t, svc.AddAccount(ctx, "chain2", Account{Address: "0xnew", Name: "new"}))
		assert.Empty(t, pub.events)
	})
}

func TestService_DeleteAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the address from every chain", func(t *testing.T) {
		storage := newAccountStorageMock()
		storage.byChain["chain1"] = []Account{{Address: "0xa", IsCurrent: true}, {Address: "0xb"}}
		storage.byChain["chain2"] = []Account{{Address: "0xa", IsCurrent: true}, {Address: "0xb"}}
		svc := New(storage, twoChainDirectory())

		remaining, err := svc.DeleteAccount(ctx, "0xb")
		require.NoError(t, err)

		require.Len(t, remaining, 1)
		assert.Equal(t, "0xa", remaining[0].Address)
		require.Len(t, storage.byChain["chain2"], 1)
		assert.Equal(t, "0xa", storage.byChain["chain2"][0].Address)
	})

	t.Run("deletes each key material blob exactly once", func(t *testing.T) {
		blobs := new(blobStorageMock)
		storage := newAccountStorageMock()
		account := Account{Address: "0xa", SignKeyID: "blob-key", SignCertID: "blob-cert"}
		storage.byChain["chain1"] = []Account{account}
		storage.byChain["chain2"] = []Account{account}
		svc := New(storage, twoChainDirectory(), WithBlobStorage(blobs))

		_, err := svc.DeleteAccount(ctx, "0xa")
		require.NoError(t, err)

		assert.ElementsMatch(t, []string{"blob-key", "blob-cert"}, blobs.deleted)
	})

	t.Run("drops the cached DID metadata on every chain", func(t *testing.T) {
		metadata := new(metadataPurgerMock)
		storage := newAccountStorageMock()
		storage.byChain["chain1"] = []Account{{Address: "0xa"}}
		storage.byChain["chain2"] = []Account{{Address: "0xa"}}
		svc := New(storage, twoChainDirectory(), WithMetadataPurger(metadata))

		_, err := svc.DeleteAccount(ctx, "0xa")
		require.NoError(t, err)

		assert.ElementsMatch(t, []string{"chain1/0xa", "chain2/0xa"}, metadata.cleared)
	})

	t.Run("promotes the head entry when the removed account was current", func(t *testing.T) {
		storage := newAccountStorageMock()
		storage.byChain["chain1"] = []Account{{Address: "0xa"}, {Address: "0xb", IsCurrent: true}}
		svc := New(storage, twoChainDirectory())

		_, err := svc.DeleteAccount(ctx, "0xb")
		require.NoError(t, err)

		accounts := storage.byChain["chain1"]
		require.Len(t, accounts, 1)
		assert.True(t, accounts[0].IsCurrent)
	})

	t.Run("returns ErrAccountNotFound for an unknown address", func(t *testing.T) {
		svc := New(newAccountStorageMock(), twoChainDirectory())

		_, err := svc.DeleteAccount(ctx, "0xmissing")
		require.ErrorIs(t, err, ErrAccountNotFound)
	})
}

func TestService_SetCurrentAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("flips the selection to the given address", func(t *testing.T) {
		storage := newAccountStorageMock()
		storage.byChain["chain1"] = []Account{{Address: "0xa", IsCurrent: true}, {Address: "0xb"}}
		svc := New(storage, twoChainDirectory())

		require.NoError(t, svc.SetCurrentAccount(ctx, "chain1", "0xb"))

		accounts := storage.byChain["chain1"]
		assert.False(t, accounts[0].IsCurrent)
		assert.True(t, accounts[1].IsCurrent)
	})

	t.Run("falls back to the head entry for an unknown address", func(t *testing.T) {
		storage := newAccountStorageMock()
		storage.byChain["chain1"] = []Account{{Address: "0xa"}, {Address: "0xb", IsCurrent: true}}
		svc := New(storage, twoChainDirectory())

		require.NoError(t, svc.SetCurrentAccount(ctx, "chain1", "0xmissing"))

		accounts := storage.byChain["chain1"]
		assert.True(t, accounts[0].IsCurrent)
		assert.False(t, accounts[1].IsCurrent)
	})

	t.Run("returns ErrNoCurrentAccount for an empty chain", func(t *testing.T) {
		svc := New(newAccountStorageMock(), twoChainDirectory())

		err := svc.SetCurrentAccount(ctx, "chain1", "0xa")
		require.ErrorIs(t, err, ErrNoCurrentAccount)
	})

	t.Run("publishes AccountChanged when the active chain selection moves", func(t *testing.T) {
		pub := new(publisherMock)
		storage := newAccountStorageMock()
		storage.byChain["chain1"] = []Account{{Address: "0xa", IsCurrent: true}, {Address: "0xb", Name: "bob"}}
		svc := New(storage, twoChainDirectory(), WithEventPublisher(pub))

		require.NoError(t, svc.SetCurrentAccount(ctx, "chain1", "0xb"))

		require.Len(t, pub.events, 1)
		changed, ok := pub.events[0].(eventbus.AccountChanged)
		require.True(t, ok)
		assert.Equal(t, "0xb", changed.Address)
		assert.Equal(t, "bob", changed.Name)
	})
}

func TestService_CurrentAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the flagged account of the active chain", func(t *testing.T) {
		storage := newAccountStorageMock()
		storage.byChain["chain1"] = []Account{{Address: "0xa"}, {Address: "0xb", IsCurrent: true}}
		svc := New(storage, twoChainDirectory())

		account, err := svc.CurrentAccount(ctx)
		require.NoError(t, err)
		assert.Equal(t, "0xb", account.Address)
	})

	t.Run("self-heals by promoting and persisting the head entry", func(t *testing.T) {
		storage := newAccountStorageMock()
		storage.byChain["chain1"] = []Account{{Address: "0xa"}, {Address: "0xb"}}
		svc := New(storage, twoChainDirectory())

		account, err := svc.CurrentAccount(ctx)
		require.NoError(t, err)
		assert.Equal(t, "0xa", account.Address)
		assert.True(t, storage.byChain["chain1"][0].IsCurrent)
	})

	t.Run("returns ErrNoCurrentAccount when the active chain is empty", func(t *testing.T) {
		svc := New(newAccountStorageMock(), twoChainDirectory())

		_, err := svc.CurrentAccount(ctx)
		require.ErrorIs(t, err, ErrNoCurrentAccount)
	})
}

func TestService_SyncToChain(t *testing.T) {
	ctx := context.Background()

	t.Run("seeds a chain with the merged account set of the others", func(t *testing.T) {
		storage := newAccountStorageMock()
		storage.byChain["chain1"] = []Account{
			{Address: "0xa", IsCurrent: true, AuthHosts: []string{"dapp.example"}},
			{Address: "0xb"},
		}
		dir := &chainDirectoryMock{ids: []string{"chain1", "chain3"}}
		svc := New(storage, dir)

		require.NoError(t, svc.SyncToChain(ctx, "chain3"))

		accounts := storage.byChain["chain3"]
		require.Len(t, accounts, 2)
		assert.Equal(t, "0xa", accounts[0].Address)
		assert.Equal(t, "0xb", accounts[1].Address)
		assert.Nil(t, accounts[0].AuthHosts, "authorization grants are chain-local")
		assert.True(t, accounts[0].IsCurrent, "seeded chain promotes its head entry")
	})

	t.Run("does not duplicate addresses already on the target", func(t *testing.T) {
		storage := newAccountStorageMock()
		storage.byChain["chain1"] = []Account{{Address: "0xa", Name: "alice"}}
		storage.byChain["chain2"] = []Account{{Address: "0xa", Name: "stale", IsCurrent: true}}
		dir := &chainDirectoryMock{ids: []string{"chain1", "chain2"}}
		svc := New(storage, dir)

		require.NoError(t, svc.SyncToChain(ctx, "chain2"))

		accounts := storage.byChain["chain2"]
		require.Len(t, accounts, 1)
		assert.Equal(t, "alice", accounts[0].Name)
		assert.True(t, accounts[0].IsCurrent, "existing selection survives the merge")
	})

	t.Run("no other chains means nothing to seed", func(t *testing.T) {
		storage := newAccountStorageMock()
		dir := &chainDirectoryMock{ids: []string{"chain1"}}
		svc := New(storage, dir)

		require.NoError(t, svc.SyncToChain(ctx, "chain1"))
		assert.Empty(t, storage.byChain["chain1"])
	})
}

func TestService_Accounts(t *testing.T) {
	ctx := context.Background()

	storage := newAccountStorageMock()
	storage.byChain["chain1"] = []Account{
		{Address: "0xhd1", WalletID: "wallet-1"},
		{Address: "0xhd2", WalletID: "wallet-2"},
		{Address: "0xjbok"},
	}
	svc := New(storage, twoChainDirectory())

	t.Run("no filter returns everything", func(t *testing.T) {
		accounts, err := svc.Accounts(ctx, "chain1", Filter{})
		require.NoError(t, err)
		assert.Len(t, accounts, 3)
	})

	t.Run("hd kind keeps wallet-derived accounts", func(t *testing.T) {
		accounts, err := svc.Accounts(ctx, "chain1", Filter{Kind: KindHD})
		require.NoError(t, err)
		assert.Len(t, accounts, 2)
	})

	t.Run("jbok kind keeps standalone accounts", func(t *testing.T) {
		accounts, err := svc.Accounts(ctx, "chain1", Filter{Kind: KindJBOK})
		require.NoError(t, err)
		require.Len(t, accounts, 1)
		assert.Equal(t, "0xjbok", accounts[0].Address)
	})

	t.Run("wallet id narrows to one wallet", func(t *testing.T) {
		accounts, err := svc.Accounts(ctx, "chain1", Filter{WalletID: "wallet-2"})
		require.NoError(t, err)
		require.Len(t, accounts, 1)
		assert.Equal(t, "0xhd2", accounts[0].Address)
	})
}

func TestService_HasAccount(t *testing.T) {
	ctx := context.Background()

	storage := newAccountStorageMock()
	storage.byChain["chain2"] = []Account{{Address: "0xa"}}
	svc := New(storage, twoChainDirectory())

	t.Run("finds an address on any chain", func(t *testing.T) {
		found, err := svc.HasAccount(ctx, "0xa")
		require.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("reports false for an unknown address", func(t *testing.T) {
		found, err := svc.HasAccount(ctx, "0xmissing")
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestService_UpdateAuthHosts(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces the grants of one address on one chain", func(t *testing.T) {
		storage := newAccountStorageMock()
		storage.byChain["chain1"] = []Account{{Address: "0xa"}}
		storage.byChain["chain2"] = []Account{{Address: "0xa"}}
		svc := New(storage, twoChainDirectory())

		err := svc.UpdateAuthHosts(ctx, "chain1", "0xa", []string{"dapp.example"})
		require.NoError(t, err)

		assert.Equal(t, []string{"dapp.example"}, storage.byChain["chain1"][0].AuthHosts)
		assert.Nil(t, storage.byChain["chain2"][0].AuthHosts)
	})

	t.Run("returns ErrAccountNotFound for an unknown address", func(t *testing.T) {
		svc := New(newAccountStorageMock(), twoChainDirectory())

		err := svc.UpdateAuthHosts(ctx, "chain1", "0xmissing", nil)
		require.ErrorIs(t, err, ErrAccountNotFound)
	})
}

func TestService_HasWalletAccounts(t *testing.T) {
	ctx := context.Background()

	storage := newAccountStorageMock()
	storage.byChain["chain1"] = []Account{{Address: "0xa", WalletID: "wallet-1"}}
	svc := New(storage, twoChainDirectory())

	t.Run("true while derived accounts exist", func(t *testing.T) {
		inUse, err := svc.HasWalletAccounts(ctx, "chain1", "wallet-1")
		require.NoError(t, err)
		assert.True(t, inUse)
	})

	t.Run("false otherwise", func(t *testing.T) {
		inUse, err := svc.HasWalletAccounts(ctx, "chain1", "wallet-2")
		require.NoError(t, err)
		assert.False(t, inUse)
	})
}
