package badger

import (
	"context"
	"fmt"

	"github.com/gabapcia/chainkeeper/internal/accountregistry"
)

// accountListKey builds the key holding a chain's account list.
func accountListKey(chainID string) string {
	return fmt.Sprintf("chain_account_%s", chainID)
}

// ListAccounts loads the account list of the given chain. A chain that was
// never written yields an empty slice.
func (c *client) ListAccounts(ctx context.Context, chainID string) ([]accountregistry.Account, error) {
	var accounts []accountregistry.Account
	if _, err := c.getJSON(accountListKey(chainID), &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// SaveAccounts replaces the account list of the given chain.
func (c *client) SaveAccounts(ctx context.Context, chainID string, accounts []accountregistry.Account) error {
	return c.setJSON(accountListKey(chainID), accounts, 0)
}

// ClearAccounts removes the account list of the given chain.
func (c *client) ClearAccounts(ctx context.Context, chainID string) error {
	return c.remove(accountListKey(chainID))
}

// Ensure the client satisfies the AccountStorage interface at compile time.
var _ accountregistry.AccountStorage = (*client)(nil)
