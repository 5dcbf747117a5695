package eventbus

// Kind discriminates the closed set of events the bridge can carry.
type Kind string

const (
	// KindAccountChanged fires when the globally-selected account changes.
	KindAccountChanged Kind = "account-changed"

	// KindTxStatusChanged fires when a transaction log reaches a terminal state.
	KindTxStatusChanged Kind = "tx-status-changed"

	// KindChainSelected fires when the active chain selection changes.
	KindChainSelected Kind = "chain-selected"

	// KindWalletChanged fires when the current wallet selection changes.
	KindWalletChanged Kind = "wallet-changed"
)

// Event is implemented by every payload the bridge delivers. The set of
// implementations is closed: subscribers switch on Kind and type-assert the
// concrete payload without needing to handle unknown shapes.
type Event interface {
	Kind() Kind
}

// AccountChanged carries the public-safe projection of the newly-selected
// account together with the active chain it was resolved on. Key material
// never travels on the bus.
type AccountChanged struct {
	Address   string
	Name      string
	Color     string
	ChainID   string
	ChainName string
}

// Kind implements Event.
func (AccountChanged) Kind() Kind { return KindAccountChanged }

// TxStatusChanged reports a single pending-to-terminal transition of a
// transaction log entry.
type TxStatusChanged struct {
	ChainID string
	TxID    string
	Status  string
	Code    int
}

// Kind implements Event.
func (TxStatusChanged) Kind() Kind { return KindTxStatusChanged }

// ChainSelected reports a change of the active chain pointer.
type ChainSelected struct {
	ChainID   string
	ChainName string
}

// Kind implements Event.
func (ChainSelected) Kind() Kind { return KindChainSelected }

// WalletChanged reports a change of the current wallet on a chain.
type WalletChanged struct {
	ChainID  string
	WalletID string
}

// Kind implements Event.
func (WalletChanged) Kind() Kind { return KindWalletChanged }
