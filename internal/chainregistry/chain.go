package chainregistry

import (
	"context"
	"errors"
)

// AccountMode identifies how identities authenticate against a chain.
type AccountMode string

const (
	// AccountModeCert authenticates with a signing certificate (CA mode).
	AccountModeCert AccountMode = "permissionedWithCert"

	// AccountModeKey authenticates with a permissioned key pair.
	AccountModeKey AccountMode = "permissionedWithKey"

	// AccountModePublic authenticates with a bare public key; TLS is never
	// enabled in this mode.
	AccountModePublic AccountMode = "public"
)

var (
	// ErrChainNotFound means no registered chain matches the requested id.
	ErrChainNotFound = errors.New("chain not found")

	// ErrDuplicateChain means a chain with the same id is already registered.
	ErrDuplicateChain = errors.New("chain id already registered")

	// ErrOfficialChain means the operation would remove a built-in chain,
	// which is immutable by contract.
	ErrOfficialChain = errors.New("official chains cannot be deleted")

	// ErrNoActiveChain means no chain is registered, so no active selection
	// can be resolved.
	ErrNoActiveChain = errors.New("no active chain")
)

// Chain is one configured blockchain network: its stable identifier plus the
// connection and display metadata needed to reach and render it.
type Chain struct {
	ChainID     string      `json:"chainId" validate:"required"`
	ChainName   string      `json:"chainName" validate:"required"`
	NodeIP      string      `json:"nodeIp" validate:"required"`
	TLSEnable   bool        `json:"tlsEnable"`
	AccountMode AccountMode `json:"accountMode" validate:"required,oneof=permissionedWithCert permissionedWithKey public"`
	Protocol    string      `json:"protocol,omitempty"`
	BrowserLink string      `json:"browserLink,omitempty"`
	IsOfficial  bool        `json:"isOfficial"`
	EnableGas   bool        `json:"enableGas"`
}

// Patch is a partial update to a chain. Nil fields are left untouched.
// ChainID, AccountMode, and IsOfficial are deliberately absent: identity and
// the built-in flag never change after registration.
type Patch struct {
	ChainName   *string `json:"chainName,omitempty"`
	NodeIP      *string `json:"nodeIp,omitempty"`
	TLSEnable   *bool   `json:"tlsEnable,omitempty"`
	Protocol    *string `json:"protocol,omitempty"`
	BrowserLink *string `json:"browserLink,omitempty"`
	EnableGas   *bool   `json:"enableGas,omitempty"`
}

// apply copies the non-nil patch fields onto the chain.
func (p Patch) apply(c *Chain) {
	if p.ChainName != nil {
		c.ChainName = *p.ChainName
	}
	if p.NodeIP != nil {
		c.NodeIP = *p.NodeIP
	}
	if p.TLSEnable != nil {
		c.TLSEnable = *p.TLSEnable
	}
	if p.Protocol != nil {
		c.Protocol = *p.Protocol
	}
	if p.BrowserLink != nil {
		c.BrowserLink = *p.BrowserLink
	}
	if p.EnableGas != nil {
		c.EnableGas = *p.EnableGas
	}
}

// ChainStorage persists the ordered chain list. The list is stored and
// rewritten whole: at registry scale (a handful of networks) positional
// resolution belongs here, never in callers.
type ChainStorage interface {
	// ListChains returns every registered chain, most recently added first.
	// An empty list is a valid steady state, not an error.
	ListChains(ctx context.Context) ([]Chain, error)

	// SaveChains replaces the stored chain list with the given one.
	SaveChains(ctx context.Context, chains []Chain) error
}

// SelectionStorage persists the single active-chain pointer.
type SelectionStorage interface {
	// SaveActiveChain records chain as the globally active selection.
	SaveActiveChain(ctx context.Context, chain Chain) error

	// LoadActiveChain returns the recorded selection, or ErrNoActiveChain
	// when none has been stored yet.
	LoadActiveChain(ctx context.Context) (Chain, error)
}
