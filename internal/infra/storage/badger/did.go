package badger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gabapcia/chainkeeper/internal/accountregistry"
	"github.com/gabapcia/chainkeeper/internal/chainregistry"
)

// didCacheKey builds the key holding a chain's DID document cache, a JSON
// object keyed by account address.
func didCacheKey(chainID string) string {
	return fmt.Sprintf("chain_did_%s", chainID)
}

// SaveDIDDocument caches the DID document of an address on a chain. The
// document is opaque to the store.
func (c *client) SaveDIDDocument(ctx context.Context, chainID, address string, doc json.RawMessage) error {
	cache := make(map[string]json.RawMessage)
	if _, err := c.getJSON(didCacheKey(chainID), &cache); err != nil {
		return err
	}

	cache[address] = doc
	return c.setJSON(didCacheKey(chainID), cache, 0)
}

// DIDDocument loads the cached DID document of an address, or (nil, nil)
// when none is cached.
func (c *client) DIDDocument(ctx context.Context, chainID, address string) (json.RawMessage, error) {
	cache := make(map[string]json.RawMessage)
	if _, err := c.getJSON(didCacheKey(chainID), &cache); err != nil {
		return nil, err
	}
	return cache[address], nil
}

// ClearAccountMetadata drops the cached DID document of one address.
func (c *client) ClearAccountMetadata(ctx context.Context, chainID, address string) error {
	cache := make(map[string]json.RawMessage)
	found, err := c.getJSON(didCacheKey(chainID), &cache)
	if err != nil || !found {
		return err
	}

	if _, ok := cache[address]; !ok {
		return nil
	}
	delete(cache, address)
	return c.setJSON(didCacheKey(chainID), cache, 0)
}

// ClearChainMetadata drops a chain's entire DID cache.
func (c *client) ClearChainMetadata(ctx context.Context, chainID string) error {
	return c.remove(didCacheKey(chainID))
}

// Ensure the client satisfies the consumer interfaces at compile time.
var (
	_ accountregistry.MetadataPurger = (*client)(nil)
	_ chainregistry.MetadataPurger   = (*client)(nil)
)
