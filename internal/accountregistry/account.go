// Package accountregistry keeps the account book. Accounts are global: every
// mutation fans out to the account list of every registered chain through an
// idempotent merge, so the same address set is visible everywhere while each
// chain keeps its own current selection and authorization grants.
package accountregistry

import (
	"context"
	"errors"
)

var (
	// ErrAccountNotFound indicates no account with the given address exists.
	ErrAccountNotFound = errors.New("account not found")

	// ErrNoCurrentAccount indicates the chain has no accounts to select from.
	ErrNoCurrentAccount = errors.New("no current account")
)

// Kind partitions accounts by how their key material was produced.
type Kind string

const (
	// KindAll matches every account.
	KindAll Kind = "all"

	// KindHD matches accounts derived from a registered wallet.
	KindHD Kind = "hd"

	// KindJBOK matches standalone imported accounts.
	KindJBOK Kind = "jbok"
)

// Account is one signing identity. Key material lives in the blob store and
// is referenced by id only.
type Account struct {
	Address     string   `json:"address"     validate:"required"`
	Name        string   `json:"name"        validate:"required"`
	SignKeyID   string   `json:"signKeyId,omitempty"`
	SignCertID  string   `json:"signCertId,omitempty"`
	PublicKeyID string   `json:"publicKeyId,omitempty"`
	OrgID       string   `json:"orgId,omitempty"`
	Color       string   `json:"color,omitempty"`
	IsCurrent   bool     `json:"isCurrent"`
	AuthHosts   []string `json:"authHosts,omitempty"`
	WalletID    string   `json:"walletId,omitempty"`
	WalletIndex int      `json:"walletIndex,omitempty"`
}

// blobIDs returns the blob references the account holds, skipping empties.
func (a Account) blobIDs() []string {
	ids := make([]string, 0, 3)
	for _, id := range []string{a.SignKeyID, a.SignCertID, a.PublicKeyID} {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Filter narrows an Accounts listing.
type Filter struct {
	// Kind restricts results to HD or JBOK accounts. Zero value and KindAll
	// match everything.
	Kind Kind

	// WalletID, when set, restricts results to accounts derived from the
	// given wallet.
	WalletID string
}

func (f Filter) match(a Account) bool {
	switch f.Kind {
	case KindHD:
		if a.WalletID == "" {
			return false
		}
	case KindJBOK:
		if a.WalletID != "" {
			return false
		}
	}

	return f.WalletID == "" || a.WalletID == f.WalletID
}

// AccountStorage persists the per-chain account lists.
type AccountStorage interface {
	// ListAccounts loads the account list of the given chain. A chain with
	// no stored list yields an empty slice, not an error.
	ListAccounts(ctx context.Context, chainID string) ([]Account, error)

	// SaveAccounts replaces the account list of the given chain.
	SaveAccounts(ctx context.Context, chainID string, accounts []Account) error

	// ClearAccounts removes the account list of the given chain.
	ClearAccounts(ctx context.Context, chainID string) error
}

// ChainRef identifies a chain without pulling in its full record.
type ChainRef struct {
	ChainID   string
	ChainName string
}

// ChainDirectory is the slice of the chain registry the account book needs:
// the fan-out targets and the active selection.
type ChainDirectory interface {
	// ChainIDs returns the ids of every registered chain, in list order.
	ChainIDs(ctx context.Context) ([]string, error)

	// ActiveChain resolves the active chain reference.
	ActiveChain(ctx context.Context) (ChainRef, error)
}

// BlobStorage deletes key material when its last referencing address is
// removed.
type BlobStorage interface {
	DeleteBlob(ctx context.Context, id string) error
}

// MetadataPurger drops the cached DID document of a removed address.
type MetadataPurger interface {
	ClearAccountMetadata(ctx context.Context, chainID, address string) error
}
