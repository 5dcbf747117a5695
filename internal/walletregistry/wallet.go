// Package walletregistry keeps the HD wallets registered per chain. Wallets
// are chain-scoped, unlike accounts: each chain has its own list and its own
// current selection. The registry stores mnemonics as given; encryption at
// rest is the caller's responsibility through the optional Cipher.
package walletregistry

import (
	"context"
	"errors"
)

var (
	// ErrWalletNotFound indicates no wallet with the given id exists on the
	// chain.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrNoWallets indicates the chain has no wallets to select from.
	ErrNoWallets = errors.New("no wallets registered")

	// ErrWalletInUse indicates the wallet still has derived accounts and
	// cannot be deleted.
	ErrWalletInUse = errors.New("wallet has derived accounts")
)

// Wallet is one HD seed registered on a chain. Mnemonic holds the recovery
// phrase, plaintext unless a Cipher is configured.
type Wallet struct {
	ID        string `json:"id"`
	Name      string `json:"name"     validate:"required"`
	Mnemonic  string `json:"mnemonic" validate:"required"`
	IsCurrent bool   `json:"isCurrent"`
}

// WalletStorage persists the per-chain wallet lists.
type WalletStorage interface {
	// ListWallets loads the wallet list of the given chain. A chain with no
	// stored list yields an empty slice, not an error.
	ListWallets(ctx context.Context, chainID string) ([]Wallet, error)

	// SaveWallets replaces the wallet list of the given chain.
	SaveWallets(ctx context.Context, chainID string, wallets []Wallet) error
}

// AccountDirectory answers whether a wallet still backs accounts on a chain.
type AccountDirectory interface {
	HasWalletAccounts(ctx context.Context, chainID, walletID string) (bool, error)
}

// Cipher protects mnemonics at rest. Encrypt runs before a wallet is stored
// and Decrypt before one is returned.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// nopCipher stores mnemonics as given.
type nopCipher struct{}

func (nopCipher) Encrypt(plaintext string) (string, error)  { return plaintext, nil }
func (nopCipher) Decrypt(ciphertext string) (string, error) { return ciphertext, nil }
