package walletregistry

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/gabapcia/chainkeeper/internal/eventbus"
	"github.com/gabapcia/chainkeeper/internal/pkg/logger"
	"github.com/gabapcia/chainkeeper/internal/pkg/validator"
)

// EventPublisher forwards wallet changes to the notification bridge.
type EventPublisher interface {
	Emit(event eventbus.Event)
}

// Service is the wallet registry surface.
type Service interface {
	// Wallets lists the wallets of the given chain, most recently added
	// first, with mnemonics decrypted.
	Wallets(ctx context.Context, chainID string) ([]Wallet, error)

	// AddWallet validates and registers the wallet at the head of the
	// chain's list, assigning it a fresh id and making it current.
	AddWallet(ctx context.Context, chainID string, wallet Wallet) (Wallet, error)

	// WalletByID returns the wallet with the given id on the chain.
	WalletByID(ctx context.Context, chainID, walletID string) (Wallet, error)

	// CurrentWallet returns the chain's current wallet, promoting the head
	// entry when nothing is flagged.
	CurrentWallet(ctx context.Context, chainID string) (Wallet, error)

	// SetCurrentWallet flips the chain's current selection to the given id.
	// An unknown id falls back to the head entry.
	SetCurrentWallet(ctx context.Context, chainID, walletID string) error

	// DeleteWallet removes the wallet, refusing with ErrWalletInUse while
	// accounts derived from it still exist on the chain.
	DeleteWallet(ctx context.Context, chainID, walletID string) error
}

// service is the concrete Service implementation.
type service struct {
	storage  WalletStorage
	accounts AccountDirectory
	cipher   Cipher
	events   EventPublisher
}

var _ Service = (*service)(nil)

// config collects optional collaborators.
type config struct {
	accounts AccountDirectory
	cipher   Cipher
	events   EventPublisher
}

// Option wires an optional collaborator into the registry.
type Option func(*config)

// WithAccountDirectory enables the derived-account check on DeleteWallet.
// Without it deletion is unconditional.
func WithAccountDirectory(d AccountDirectory) Option {
	return func(c *config) {
		c.accounts = d
	}
}

// WithCipher encrypts mnemonics at rest.
func WithCipher(ci Cipher) Option {
	return func(c *config) {
		c.cipher = ci
	}
}

// WithEventPublisher enables WalletChanged notifications.
func WithEventPublisher(p EventPublisher) Option {
	return func(c *config) {
		c.events = p
	}
}

// New creates the wallet registry on top of the given storage. Without a
// Cipher, mnemonics are stored in plaintext and a warning is logged once.
func New(storage WalletStorage, opts ...Option) *service {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.cipher == nil {
		logger.Warn(context.Background(), "no mnemonic cipher configured, wallet seeds are stored in plaintext")
		cfg.cipher = nopCipher{}
	}

	return &service{
		storage:  storage,
		accounts: cfg.accounts,
		cipher:   cfg.cipher,
		events:   cfg.events,
	}
}

// Wallets implements Service.
func (s *service) Wallets(ctx context.Context, chainID string) ([]Wallet, error) {
	wallets, err := s.storage.ListWallets(ctx, chainID)
	if err != nil {
		return nil, err
	}

	for i := range wallets {
		plain, err := s.cipher.Decrypt(wallets[i].Mnemonic)
		if err != nil {
			return nil, err
		}
		wallets[i].Mnemonic = plain
	}

	return wallets, nil
}

// AddWallet implements Service.
func (s *service) AddWallet(ctx context.Context, chainID string, wallet Wallet) (Wallet, error) {
	if err := validator.Validate(wallet); err != nil {
		return Wallet{}, err
	}

	wallets, err := s.storage.ListWallets(ctx, chainID)
	if err != nil {
		return Wallet{}, err
	}

	wallet.ID = uuid.NewString()
	wallet.IsCurrent = true

	sealed := wallet
	sealed.Mnemonic, err = s.cipher.Encrypt(wallet.Mnemonic)
	if err != nil {
		return Wallet{}, err
	}

	for i := range wallets {
		wallets[i].IsCurrent = false
	}
	wallets = append([]Wallet{sealed}, wallets...)
	if err := s.storage.SaveWallets(ctx, chainID, wallets); err != nil {
		return Wallet{}, err
	}

	s.emit(chainID, wallet.ID)
	return wallet, nil
}

// WalletByID implements Service.
func (s *service) WalletByID(ctx context.Context, chainID, walletID string) (Wallet, error) {
	wallets, err := s.storage.ListWallets(ctx, chainID)
	if err != nil {
		return Wallet{}, err
	}

	i := slices.IndexFunc(wallets, func(w Wallet) bool { return w.ID == walletID })
	if i < 0 {
		return Wallet{}, ErrWalletNotFound
	}

	wallet := wallets[i]
	wallet.Mnemonic, err = s.cipher.Decrypt(wallet.Mnemonic)
	if err != nil {
		return Wallet{}, err
	}

	return wallet, nil
}

// CurrentWallet implements Service.
func (s *service) CurrentWallet(ctx context.Context, chainID string) (Wallet, error) {
	wallets, err := s.storage.ListWallets(ctx, chainID)
	if err != nil {
		return Wallet{}, err
	}
	if len(wallets) == 0 {
		return Wallet{}, ErrNoWallets
	}

	i := slices.IndexFunc(wallets, func(w Wallet) bool { return w.IsCurrent })
	if i < 0 {
		// Nothing flagged; promote the head entry and persist the repair.
		wallets[0].IsCurrent = true
		if err := s.storage.SaveWallets(ctx, chainID, wallets); err != nil {
			return Wallet{}, err
		}
		i = 0
	}

	wallet := wallets[i]
	wallet.Mnemonic, err = s.cipher.Decrypt(wallet.Mnemonic)
	if err != nil {
		return Wallet{}, err
	}

	return wallet, nil
}

// SetCurrentWallet implements Service.
func (s *service) SetCurrentWallet(ctx context.Context, chainID, walletID string) error {
	wallets, err := s.storage.ListWallets(ctx, chainID)
	if err != nil {
		return err
	}
	if len(wallets) == 0 {
		return ErrNoWallets
	}

	found := false
	for i := range wallets {
		wallets[i].IsCurrent = wallets[i].ID == walletID
		found = found || wallets[i].IsCurrent
	}
	if !found {
		logger.Warn(ctx, "current wallet fallback to head entry",
			"chain.id", chainID,
			"wallet.id", walletID,
		)
		wallets[0].IsCurrent = true
		walletID = wallets[0].ID
	}

	if err := s.storage.SaveWallets(ctx, chainID, wallets); err != nil {
		return err
	}

	s.emit(chainID, walletID)
	return nil
}

// DeleteWallet implements Service.
func (s *service) DeleteWallet(ctx context.Context, chainID, walletID string) error {
	if s.accounts != nil {
		inUse, err := s.accounts.HasWalletAccounts(ctx, chainID, walletID)
		if err != nil {
			return err
		}
		if inUse {
			return ErrWalletInUse
		}
	}

	wallets, err := s.storage.ListWallets(ctx, chainID)
	if err != nil {
		return err
	}

	i := slices.IndexFunc(wallets, func(w Wallet) bool { return w.ID == walletID })
	if i < 0 {
		return ErrWalletNotFound
	}

	wasCurrent := wallets[i].IsCurrent
	wallets = slices.Delete(wallets, i, i+1)
	if wasCurrent && len(wallets) > 0 {
		wallets[0].IsCurrent = true
	}

	if err := s.storage.SaveWallets(ctx, chainID, wallets); err != nil {
		return err
	}

	if wasCurrent && len(wallets) > 0 {
		s.emit(chainID, wallets[0].ID)
	}
	return nil
}

// emit publishes a WalletChanged notification.
func (s *service) emit(chainID, walletID string) {
	if s.events == nil {
		return
	}

	s.events.Emit(eventbus.WalletChanged{
		ChainID:  chainID,
		WalletID: walletID,
	})
}
