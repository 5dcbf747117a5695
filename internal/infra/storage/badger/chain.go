package badger

import (
	"context"

	"github.com/gabapcia/chainkeeper/internal/accountregistry"
	"github.com/gabapcia/chainkeeper/internal/chainregistry"
	"github.com/gabapcia/chainkeeper/internal/txtracker"
)

const (
	// chainListKey holds the full chain list as one JSON array.
	chainListKey = "chain_list"

	// activeChainKey holds the active chain record.
	activeChainKey = "active_chain"
)

// ListChains loads every registered chain, in stored order.
func (c *client) ListChains(ctx context.Context) ([]chainregistry.Chain, error) {
	var chains []chainregistry.Chain
	if _, err := c.getJSON(chainListKey, &chains); err != nil {
		return nil, err
	}
	return chains, nil
}

// SaveChains replaces the chain list.
func (c *client) SaveChains(ctx context.Context, chains []chainregistry.Chain) error {
	return c.setJSON(chainListKey, chains, 0)
}

// LoadActiveChain reads the persisted active chain pointer, returning
// chainregistry.ErrNoActiveChain when none was ever stored.
func (c *client) LoadActiveChain(ctx context.Context) (chainregistry.Chain, error) {
	var chain chainregistry.Chain
	found, err := c.getJSON(activeChainKey, &chain)
	if err != nil {
		return chainregistry.Chain{}, err
	}
	if !found {
		return chainregistry.Chain{}, chainregistry.ErrNoActiveChain
	}
	return chain, nil
}

// SaveActiveChain persists the active chain pointer.
func (c *client) SaveActiveChain(ctx context.Context, chain chainregistry.Chain) error {
	return c.setJSON(activeChainKey, chain, 0)
}

// ChainIDs lists the ids of every registered chain, in list order.
func (c *client) ChainIDs(ctx context.Context) ([]string, error) {
	chains, err := c.ListChains(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(chains))
	for i, chain := range chains {
		ids[i] = chain.ChainID
	}
	return ids, nil
}

// ActiveChain resolves the active chain reference, falling back to the head
// of the chain list when no pointer is stored.
func (c *client) ActiveChain(ctx context.Context) (accountregistry.ChainRef, error) {
	chain, err := c.LoadActiveChain(ctx)
	if err == nil {
		return accountregistry.ChainRef{ChainID: chain.ChainID, ChainName: chain.ChainName}, nil
	}
	if err != chainregistry.ErrNoActiveChain {
		return accountregistry.ChainRef{}, err
	}

	chains, err := c.ListChains(ctx)
	if err != nil {
		return accountregistry.ChainRef{}, err
	}
	if len(chains) == 0 {
		return accountregistry.ChainRef{}, chainregistry.ErrNoActiveChain
	}
	return accountregistry.ChainRef{ChainID: chains[0].ChainID, ChainName: chains[0].ChainName}, nil
}

// Ensure the client satisfies the consumer interfaces at compile time.
var (
	_ chainregistry.ChainStorage     = (*client)(nil)
	_ chainregistry.SelectionStorage = (*client)(nil)
	_ accountregistry.ChainDirectory = (*client)(nil)
	_ txtracker.ChainDirectory       = (*client)(nil)
)
