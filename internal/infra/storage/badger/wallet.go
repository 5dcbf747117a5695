package badger

import (
	"context"
	"fmt"

	"github.com/gabapcia/chainkeeper/internal/walletregistry"
)

// walletListKey builds the key holding a chain's wallet list.
func walletListKey(chainID string) string {
	return fmt.Sprintf("chain_wallet_%s", chainID)
}

// ListWallets loads the wallet list of the given chain. A chain that was
// never written yields an empty slice.
func (c *client) ListWallets(ctx context.Context, chainID string) ([]walletregistry.Wallet, error) {
	var wallets []walletregistry.Wallet
	if _, err := c.getJSON(walletListKey(chainID), &wallets); err != nil {
		return nil, err
	}
	return wallets, nil
}

// SaveWallets replaces the wallet list of the given chain.
func (c *client) SaveWallets(ctx context.Context, chainID string, wallets []walletregistry.Wallet) error {
	return c.setJSON(walletListKey(chainID), wallets, 0)
}

// Ensure the client satisfies the WalletStorage interface at compile time.
var _ walletregistry.WalletStorage = (*client)(nil)
