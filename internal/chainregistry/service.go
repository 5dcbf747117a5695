// Package chainregistry owns the list of configured blockchain networks and
// the active-chain selection. Registering a chain mirrors the existing global
// account set onto it; deleting one cascades into the per-chain state the
// other components keep (accounts, transaction logs, DID metadata) without
// ever touching shared blobs.
package chainregistry

import (
	"context"
	"errors"
	"slices"

	"github.com/gabapcia/chainkeeper/internal/eventbus"
	"github.com/gabapcia/chainkeeper/internal/pkg/logger"
	"github.com/gabapcia/chainkeeper/internal/pkg/validator"
)

// AccountMirror is the slice of the account repository the registry drives:
// seeding a freshly-added chain with the global account backlog, and clearing
// a chain's account list when the chain goes away.
type AccountMirror interface {
	// SyncToChain writes the merged global account set under the given
	// chain's storage key.
	SyncToChain(ctx context.Context, chainID string) error

	// ClearChain removes the given chain's account list. Blob references are
	// left alone; addresses surviving on other chains keep their material.
	ClearChain(ctx context.Context, chainID string) error
}

// TxLogPurger removes a chain's transaction log as part of chain deletion.
type TxLogPurger interface {
	PurgeChain(ctx context.Context, chainID string) error
}

// MetadataPurger removes a chain's cached DID metadata as part of chain
// deletion.
type MetadataPurger interface {
	ClearChainMetadata(ctx context.Context, chainID string) error
}

// EventPublisher forwards selection changes to the notification bridge.
type EventPublisher interface {
	Emit(event eventbus.Event)
}

// Service is the chain registry surface exposed to UI and background callers.
type Service interface {
	// List returns every registered chain, most recently added first.
	List(ctx context.Context) ([]Chain, error)

	// Get returns the chain with the given id, or ErrChainNotFound.
	Get(ctx context.Context, chainID string) (Chain, error)

	// Add validates and registers a new chain at the head of the list,
	// rejecting duplicate ids, then mirrors the existing global account set
	// onto it. The mirror step is best effort: a failure is logged and the
	// registration stands, since the merge-tolerant account sync self-heals
	// on the next account write.
	Add(ctx context.Context, chain Chain) ([]Chain, error)

	// Update applies a partial patch to the chain with the given id and
	// returns the updated record.
	Update(ctx context.Context, chainID string, patch Patch) (Chain, error)

	// Delete removes the chain with the given id and cascades: the chain's
	// transaction logs, account list, and DID metadata are cleared. Official
	// chains are refused with ErrOfficialChain. Returns the remaining list.
	Delete(ctx context.Context, chainID string) ([]Chain, error)

	// SetActive marks the chain with the given id as the global active
	// selection and publishes a ChainSelected event.
	SetActive(ctx context.Context, chainID string) (Chain, error)

	// Active resolves the active chain. When no pointer has been stored it
	// falls back to the first registered chain, so a result is guaranteed
	// whenever the list is non-empty; ErrNoActiveChain otherwise.
	Active(ctx context.Context) (Chain, error)
}

// service is the concrete Service implementation.
type service struct {
	chainStorage     ChainStorage
	selectionStorage SelectionStorage

	accounts AccountMirror
	txLogs   TxLogPurger
	metadata MetadataPurger
	events   EventPublisher
}

var _ Service = (*service)(nil)

// config collects optional collaborators.
type config struct {
	accounts AccountMirror
	txLogs   TxLogPurger
	metadata MetadataPurger
	events   EventPublisher
}

// Option wires an optional collaborator into the registry.
type Option func(*config)

// WithAccountMirror enables backlog sync on Add and account cleanup on Delete.
func WithAccountMirror(m AccountMirror) Option {
	return func(c *config) {
		c.accounts = m
	}
}

// WithTxLogPurger enables transaction-log cleanup on Delete.
func WithTxLogPurger(p TxLogPurger) Option {
	return func(c *config) {
		c.txLogs = p
	}
}

// WithMetadataPurger enables DID metadata cleanup on Delete.
func WithMetadataPurger(p MetadataPurger) Option {
	return func(c *config) {
		c.metadata = p
	}
}

// WithEventPublisher enables ChainSelected notifications.
func WithEventPublisher(p EventPublisher) Option {
	return func(c *config) {
		c.events = p
	}
}

// New creates the chain registry service on top of the given storage.
func New(cs ChainStorage, ss SelectionStorage, opts ...Option) *service {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		chainStorage:     cs,
		selectionStorage: ss,
		accounts:         cfg.accounts,
		txLogs:           cfg.txLogs,
		metadata:         cfg.metadata,
		events:           cfg.events,
	}
}

// List implements Service.
func (s *service) List(ctx context.Context) ([]Chain, error) {
	return s.chainStorage.ListChains(ctx)
}

// Get implements Service.
func (s *service) Get(ctx context.Context, chainID string) (Chain, error) {
	chains, err := s.chainStorage.ListChains(ctx)
	if err != nil {
		return Chain{}, err
	}

	for _, c := range chains {
		if c.ChainID == chainID {
			return c, nil
		}
	}

	return Chain{}, ErrChainNotFound
}

// Add implements Service.
func (s *service) Add(ctx context.Context, chain Chain) ([]Chain, error) {
	if err := validator.Validate(chain); err != nil {
		return nil, err
	}

	chains, err := s.chainStorage.ListChains(ctx)
	if err != nil {
		return nil, err
	}

	if slices.ContainsFunc(chains, func(c Chain) bool { return c.ChainID == chain.ChainID }) {
		return nil, ErrDuplicateChain
	}

	chains = append([]Chain{chain}, chains...)
	if err := s.chainStorage.SaveChains(ctx, chains); err != nil {
		return nil, err
	}

	if s.accounts != nil {
		if err := s.accounts.SyncToChain(ctx, chain.ChainID); err != nil {
			logger.Warn(ctx, "account backlog sync onto new chain failed",
				"chain.id", chain.ChainID,
				"error", err,
			)
		}
	}

	return chains, nil
}

// Update implements Service.
func (s *service) Update(ctx context.Context, chainID string, patch Patch) (Chain, error) {
	chains, err := s.chainStorage.ListChains(ctx)
	if err != nil {
		return Chain{}, err
	}

	i := slices.IndexFunc(chains, func(c Chain) bool { return c.ChainID == chainID })
	if i < 0 {
		return Chain{}, ErrChainNotFound
	}

	patch.apply(&chains[i])
	if err := s.chainStorage.SaveChains(ctx, chains); err != nil {
		return Chain{}, err
	}

	// Keep the persisted active pointer in step with the record it copies.
	if active, err := s.selectionStorage.LoadActiveChain(ctx); err == nil && active.ChainID == chainID {
		if err := s.selectionStorage.SaveActiveChain(ctx, chains[i]); err != nil {
			logger.Warn(ctx, "active chain pointer refresh failed", "chain.id", chainID, "error", err)
		}
	}

	return chains[i], nil
}

// Delete implements Service.
func (s *service) Delete(ctx context.Context, chainID string) ([]Chain, error) {
	chains, err := s.chainStorage.ListChains(ctx)
	if err != nil {
		return nil, err
	}

	i := slices.IndexFunc(chains, func(c Chain) bool { return c.ChainID == chainID })
	if i < 0 {
		return nil, ErrChainNotFound
	}
	if chains[i].IsOfficial {
		return nil, ErrOfficialChain
	}

	chains = slices.Delete(chains, i, i+1)
	if err := s.chainStorage.SaveChains(ctx, chains); err != nil {
		return nil, err
	}

	s.cascade(ctx, chainID)
	return chains, nil
}

// cascade clears the per-chain state owned by the other components. Every
// step is best effort: a failed cleanup leaves an unreachable key behind,
// never an inconsistent registry.
func (s *service) cascade(ctx context.Context, chainID string) {
	if s.txLogs != nil {
		if err := s.txLogs.PurgeChain(ctx, chainID); err != nil {
			logger.Warn(ctx, "tx log purge failed", "chain.id", chainID, "error", err)
		}
	}
	if s.accounts != nil {
		if err := s.accounts.ClearChain(ctx, chainID); err != nil {
			logger.Warn(ctx, "account list cleanup failed", "chain.id", chainID, "error", err)
		}
	}
	if s.metadata != nil {
		if err := s.metadata.ClearChainMetadata(ctx, chainID); err != nil {
			logger.Warn(ctx, "did metadata cleanup failed", "chain.id", chainID, "error", err)
		}
	}
}

// SetActive implements Service.
func (s *service) SetActive(ctx context.Context, chainID string) (Chain, error) {
	chain, err := s.Get(ctx, chainID)
	if err != nil {
		return Chain{}, err
	}

	if err := s.selectionStorage.SaveActiveChain(ctx, chain); err != nil {
		return Chain{}, err
	}

	if s.events != nil {
		s.events.Emit(eventbus.ChainSelected{
			ChainID:   chain.ChainID,
			ChainName: chain.ChainName,
		})
	}

	return chain, nil
}

// Active implements Service.
func (s *service) Active(ctx context.Context) (Chain, error) {
	chain, err := s.selectionStorage.LoadActiveChain(ctx)
	if err == nil {
		return chain, nil
	}
	if !errors.Is(err, ErrNoActiveChain) {
		return Chain{}, err
	}

	chains, err := s.chainStorage.ListChains(ctx)
	if err != nil {
		return Chain{}, err
	}
	if len(chains) == 0 {
		return Chain{}, ErrNoActiveChain
	}

	return chains[0], nil
}
