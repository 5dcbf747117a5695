package accountregistry

import (
	"context"
	"reflect"
	"slices"

	"github.com/gabapcia/chainkeeper/internal/eventbus"
	"github.com/gabapcia/chainkeeper/internal/pkg/logger"
	"github.com/gabapcia/chainkeeper/internal/pkg/types"
	"github.com/gabapcia/chainkeeper/internal/pkg/validator"
)

// EventPublisher forwards account selection changes to the notification
// bridge.
type EventPublisher interface {
	Emit(event eventbus.Event)
}

// Service is the account repository surface.
type Service interface {
	// Accounts lists the accounts of the given chain, optionally narrowed by
	// the filter.
	Accounts(ctx context.Context, chainID string, filter Filter) ([]Account, error)

	// AddAccount registers the account and mirrors it onto every chain. A
	// new address gets the next palette color and becomes current on the
	// origin chain. Mirror writes to other chains are best effort.
	AddAccount(ctx context.Context, chainID string, account Account) error

	// DeleteAccount removes the address from every chain, deletes its key
	// material blobs exactly once, and drops its cached DID metadata.
	// Returns the remaining account list of the active chain.
	DeleteAccount(ctx context.Context, address string) ([]Account, error)

	// SetCurrentAccount flips the current selection of the given chain to
	// the given address. An unknown address falls back to the head entry.
	SetCurrentAccount(ctx context.Context, chainID, address string) error

	// CurrentAccount returns the current account of the active chain,
	// promoting the head entry when nothing is flagged.
	CurrentAccount(ctx context.Context) (Account, error)

	// HasAccount reports whether any chain holds the given address.
	HasAccount(ctx context.Context, address string) (bool, error)

	// UpdateAuthHosts replaces the authorization grants of the address on
	// the given chain. Grants are per chain and never mirrored.
	UpdateAuthHosts(ctx context.Context, chainID, address string, hosts []string) error

	// SyncToChain seeds the given chain with the merged account set of every
	// other chain.
	SyncToChain(ctx context.Context, chainID string) error

	// ClearChain removes the account list of the given chain. Blobs are
	// untouched since their addresses survive on the other chains.
	ClearChain(ctx context.Context, chainID string) error

	// HasWalletAccounts reports whether the given chain still holds accounts
	// derived from the given wallet.
	HasWalletAccounts(ctx context.Context, chainID, walletID string) (bool, error)
}

// service is the concrete Service implementation.
type service struct {
	storage AccountStorage
	chains  ChainDirectory

	blobs    BlobStorage
	metadata MetadataPurger
	events   EventPublisher
}

var _ Service = (*service)(nil)

// config collects optional collaborators.
type config struct {
	blobs    BlobStorage
	metadata MetadataPurger
	events   EventPublisher
}

// Option wires an optional collaborator into the repository.
type Option func(*config)

// WithBlobStorage enables key material cleanup on DeleteAccount.
func WithBlobStorage(b BlobStorage) Option {
	return func(c *config) {
		c.blobs = b
	}
}

// WithMetadataPurger enables DID metadata cleanup on DeleteAccount.
func WithMetadataPurger(p MetadataPurger) Option {
	return func(c *config) {
		c.metadata = p
	}
}

// WithEventPublisher enables AccountChanged notifications.
func WithEventPublisher(p EventPublisher) Option {
	return func(c *config) {
		c.events = p
	}
}

// New creates the account repository on top of the given storage and chain
// directory.
func New(storage AccountStorage, chains ChainDirectory, opts ...Option) *service {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		storage:  storage,
		chains:   chains,
		blobs:    cfg.blobs,
		metadata: cfg.metadata,
		events:   cfg.events,
	}
}

// Accounts implements Service.
func (s *service) Accounts(ctx context.Context, chainID string, filter Filter) ([]Account, error) {
	accounts, err := s.storage.ListAccounts(ctx, chainID)
	if err != nil {
		return nil, err
	}

	filtered := make([]Account, 0, len(accounts))
	for _, a := range accounts {
		if filter.match(a) {
			filtered = append(filtered, a)
		}
	}

	return filtered, nil
}

// AddAccount implements Service.
func (s *service) AddAccount(ctx context.Context, chainID string, account Account) error {
	if err := validator.Validate(account); err != nil {
		return err
	}

	before, active, hadCurrent := s.currentOnActive(ctx)

	origin, err := s.storage.ListAccounts(ctx, chainID)
	if err != nil {
		return err
	}
	if account.Color == "" && !slices.ContainsFunc(origin, func(a Account) bool { return a.Address == account.Address }) {
		account.Color = paletteColor(len(origin))
	}

	// Origin chain first; the account takes over the current selection there.
	merged := mergeAccounts(origin, []Account{account})
	setCurrent(merged, account.Address)
	if err := s.storage.SaveAccounts(ctx, chainID, merged); err != nil {
		return err
	}

	chainIDs, err := s.chains.ChainIDs(ctx)
	if err != nil {
		logger.Warn(ctx, "chain listing for account fan-out failed", "error", err)
		chainIDs = nil
	}
	mirror := account
	mirror.IsCurrent = false
	mirror.AuthHosts = nil
	for _, id := range chainIDs {
		if id == chainID {
			continue
		}
		if err := s.mirrorOnto(ctx, id, []Account{mirror}); err != nil {
			logger.Warn(ctx, "account mirror write failed", "chain.id", id, "error", err)
		}
	}

	s.emitIfCurrentChanged(ctx, before, active, hadCurrent)
	return nil
}

// mirrorOnto merges incoming into the given chain's list and saves it.
func (s *service) mirrorOnto(ctx context.Context, chainID string, incoming []Account) error {
	existing, err := s.storage.ListAccounts(ctx, chainID)
	if err != nil {
		return err
	}

	merged := mergeAccounts(existing, incoming)
	normalizeCurrent(merged)
	return s.storage.SaveAccounts(ctx, chainID, merged)
}

// DeleteAccount implements Service.
func (s *service) DeleteAccount(ctx context.Context, address string) ([]Account, error) {
	chainIDs, err := s.chains.ChainIDs(ctx)
	if err != nil {
		return nil, err
	}

	before, active, hadCurrent := s.currentOnActive(ctx)

	var (
		removed = false
		blobs   = types.NewSet[string]()
	)
	for _, id := range chainIDs {
		accounts, err := s.storage.ListAccounts(ctx, id)
		if err != nil {
			logger.Warn(ctx, "account listing for removal failed", "chain.id", id, "error", err)
			continue
		}

		i := slices.IndexFunc(accounts, func(a Account) bool { return a.Address == address })
		if i < 0 {
			continue
		}
		removed = true

		for _, blobID := range accounts[i].blobIDs() {
			blobs.Add(blobID)
		}

		accounts = slices.Delete(accounts, i, i+1)
		normalizeCurrent(accounts)
		if err := s.storage.SaveAccounts(ctx, id, accounts); err != nil {
			logger.Warn(ctx, "account removal write failed", "chain.id", id, "error", err)
			continue
		}

		if s.metadata != nil {
			if err := s.metadata.ClearAccountMetadata(ctx, id, address); err != nil {
				logger.Warn(ctx, "did metadata cleanup failed", "chain.id", id, "account.address", address, "error", err)
			}
		}
	}

	if !removed {
		return nil, ErrAccountNotFound
	}

	// Every chain dropped the address, so its key material is unreachable.
	// Each blob id is deleted once even when mirrored records shared it.
	if s.blobs != nil {
		for blobID := range blobs.ToIter() {
			if err := s.blobs.DeleteBlob(ctx, blobID); err != nil {
				logger.Warn(ctx, "key material blob delete failed", "blob.id", blobID, "error", err)
			}
		}
	}

	s.emitIfCurrentChanged(ctx, before, active, hadCurrent)

	if active.ChainID == "" {
		return nil, nil
	}
	return s.storage.ListAccounts(ctx, active.ChainID)
}

// SetCurrentAccount implements Service.
func (s *service) SetCurrentAccount(ctx context.Context, chainID, address string) error {
	before, active, hadCurrent := s.currentOnActive(ctx)

	accounts, err := s.storage.ListAccounts(ctx, chainID)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		return ErrNoCurrentAccount
	}

	if !setCurrent(accounts, address) {
		logger.Warn(ctx, "current account fallback to head entry",
			"chain.id", chainID,
			"account.address", address,
		)
		setCurrent(accounts, accounts[0].Address)
	}

	if err := s.storage.SaveAccounts(ctx, chainID, accounts); err != nil {
		return err
	}

	s.emitIfCurrentChanged(ctx, before, active, hadCurrent)
	return nil
}

// setCurrent flips the current flag to the given address, clearing every
// other entry. Reports whether the address was found.
func setCurrent(accounts []Account, address string) bool {
	found := false
	for i := range accounts {
		accounts[i].IsCurrent = accounts[i].Address == address
		found = found || accounts[i].IsCurrent
	}
	return found
}

// CurrentAccount implements Service.
func (s *service) CurrentAccount(ctx context.Context) (Account, error) {
	active, err := s.chains.ActiveChain(ctx)
	if err != nil {
		return Account{}, err
	}

	accounts, err := s.storage.ListAccounts(ctx, active.ChainID)
	if err != nil {
		return Account{}, err
	}
	if len(accounts) == 0 {
		return Account{}, ErrNoCurrentAccount
	}

	if i := currentOf(accounts); i >= 0 {
		return accounts[i], nil
	}

	// Nothing flagged; promote the head entry and persist the repair.
	normalizeCurrent(accounts)
	if err := s.storage.SaveAccounts(ctx, active.ChainID, accounts); err != nil {
		return Account{}, err
	}

	return accounts[0], nil
}

// HasAccount implements Service.
func (s *service) HasAccount(ctx context.Context, address string) (bool, error) {
	chainIDs, err := s.chains.ChainIDs(ctx)
	if err != nil {
		return false, err
	}

	for _, id := range chainIDs {
		accounts, err := s.storage.ListAccounts(ctx, id)
		if err != nil {
			return false, err
		}
		if slices.ContainsFunc(accounts, func(a Account) bool { return a.Address == address }) {
			return true, nil
		}
	}

	return false, nil
}

// UpdateAuthHosts implements Service.
func (s *service) UpdateAuthHosts(ctx context.Context, chainID, address string, hosts []string) error {
	accounts, err := s.storage.ListAccounts(ctx, chainID)
	if err != nil {
		return err
	}

	i := slices.IndexFunc(accounts, func(a Account) bool { return a.Address == address })
	if i < 0 {
		return ErrAccountNotFound
	}

	accounts[i].AuthHosts = hosts
	return s.storage.SaveAccounts(ctx, chainID, accounts)
}

// SyncToChain implements Service.
func (s *service) SyncToChain(ctx context.Context, chainID string) error {
	chainIDs, err := s.chains.ChainIDs(ctx)
	if err != nil {
		return err
	}

	// Merged baseline over every other chain, first-seen order. Selection
	// and authorization grants are chain-local and start fresh.
	var (
		baseline []Account
		seen     = types.NewSet[string]()
	)
	for _, id := range chainIDs {
		if id == chainID {
			continue
		}

		accounts, err := s.storage.ListAccounts(ctx, id)
		if err != nil {
			return err
		}
		for _, a := range accounts {
			if seen.Contains(a.Address) {
				continue
			}
			seen.Add(a.Address)

			a.IsCurrent = false
			a.AuthHosts = nil
			baseline = append(baseline, a)
		}
	}
	if len(baseline) == 0 {
		return nil
	}

	return s.mirrorOnto(ctx, chainID, baseline)
}

// ClearChain implements Service.
func (s *service) ClearChain(ctx context.Context, chainID string) error {
	return s.storage.ClearAccounts(ctx, chainID)
}

// HasWalletAccounts implements Service.
func (s *service) HasWalletAccounts(ctx context.Context, chainID, walletID string) (bool, error) {
	accounts, err := s.storage.ListAccounts(ctx, chainID)
	if err != nil {
		return false, err
	}

	return slices.ContainsFunc(accounts, func(a Account) bool { return a.WalletID == walletID }), nil
}

// currentOnActive snapshots the current account of the active chain before a
// mutation, for change detection afterwards.
func (s *service) currentOnActive(ctx context.Context) (Account, ChainRef, bool) {
	active, err := s.chains.ActiveChain(ctx)
	if err != nil {
		return Account{}, ChainRef{}, false
	}

	accounts, err := s.storage.ListAccounts(ctx, active.ChainID)
	if err != nil {
		return Account{}, active, false
	}

	if i := currentOf(accounts); i >= 0 {
		return accounts[i], active, true
	}
	return Account{}, active, false
}

// emitIfCurrentChanged publishes AccountChanged when the active chain's
// current account differs from the pre-mutation snapshot.
func (s *service) emitIfCurrentChanged(ctx context.Context, before Account, active ChainRef, hadCurrent bool) {
	if s.events == nil || active.ChainID == "" {
		return
	}

	accounts, err := s.storage.ListAccounts(ctx, active.ChainID)
	if err != nil {
		return
	}
	i := currentOf(accounts)
	if i < 0 {
		return
	}

	after := accounts[i]
	if hadCurrent && reflect.DeepEqual(before, after) {
		return
	}

	s.events.Emit(eventbus.AccountChanged{
		Address:   after.Address,
		Name:      after.Name,
		Color:     after.Color,
		ChainID:   active.ChainID,
		ChainName: active.ChainName,
	})
}
