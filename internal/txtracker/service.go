package txtracker

import (
	"context"
	"sync"
	"time"

	"github.com/gabapcia/chainkeeper/internal/eventbus"
	"github.com/gabapcia/chainkeeper/internal/pkg/logger"
	"github.com/gabapcia/chainkeeper/internal/pkg/resilience/retry"
	"github.com/gabapcia/chainkeeper/internal/pkg/validator"
)

const (
	// defaultMaxLogLength caps each chain's log list; the oldest entries are
	// evicted first.
	defaultMaxLogLength = 1000

	// defaultSweepInterval is how often the background loop reconciles every
	// pending entry.
	defaultSweepInterval = 30 * time.Second

	// triggerBuffer absorbs bursts of reconciliation pokes.
	triggerBuffer = 64
)

// EventPublisher forwards status transitions to the notification bridge.
type EventPublisher interface {
	Emit(event eventbus.Event)
}

// Service is the transaction tracker surface.
type Service interface {
	// Append records a freshly submitted transaction as pending at the head
	// of its chain's log, evicting the oldest entry past the cap.
	Append(ctx context.Context, log TxLog) error

	// Logs lists the given chain's entries, newest first, optionally
	// narrowed by the filter.
	Logs(ctx context.Context, chainID string, filter Filter) ([]TxLog, error)

	// Reconcile fetches the receipt of one pending entry and applies the
	// terminal status when the transaction has settled. It is idempotent:
	// an already-final entry and a not-yet-settled one both leave the log
	// unchanged and return nil.
	Reconcile(ctx context.Context, chainID, txID string) error

	// ReconcileAll reconciles every pending entry of the chain.
	ReconcileAll(ctx context.Context, chainID string) error

	// PurgeChain removes the chain's log list.
	PurgeChain(ctx context.Context, chainID string) error

	// Trigger asks the background loop to reconcile the chain soon. It
	// never blocks; when the loop is saturated the next sweep covers it.
	Trigger(chainID string)

	// Start launches the background reconciliation loop.
	Start(ctx context.Context) error

	// Close stops the loop and waits for it to drain.
	Close()
}

// service is the concrete Service implementation.
type service struct {
	storage TxLogStorage
	query   ChainQuery

	guard  IdempotencyGuard
	rt     retry.Retry
	chains ChainDirectory
	events EventPublisher

	maxLogLength  int
	sweepInterval time.Duration

	mu        sync.Mutex
	triggerCh chan string
	cancel    context.CancelFunc
	done      chan struct{}
}

var _ Service = (*service)(nil)

// config collects the tracker knobs.
type config struct {
	guard         IdempotencyGuard
	rt            retry.Retry
	chains        ChainDirectory
	events        EventPublisher
	maxLogLength  int
	sweepInterval time.Duration
}

// Option configures the tracker.
type Option func(*config)

// WithIdempotencyGuard coordinates reconcilers across processes. Defaults to
// a guard that never blocks.
func WithIdempotencyGuard(g IdempotencyGuard) Option {
	return func(c *config) {
		c.guard = g
	}
}

// WithRetry sets the retry policy for receipt fetches.
func WithRetry(r retry.Retry) Option {
	return func(c *config) {
		c.rt = r
	}
}

// WithChainDirectory lets the background sweep walk every registered chain.
// Without it only triggered chains are reconciled.
func WithChainDirectory(d ChainDirectory) Option {
	return func(c *config) {
		c.chains = d
	}
}

// WithEventPublisher enables TxStatusChanged notifications.
func WithEventPublisher(p EventPublisher) Option {
	return func(c *config) {
		c.events = p
	}
}

// WithMaxLogLength overrides the per-chain log cap.
func WithMaxLogLength(n int) Option {
	return func(c *config) {
		c.maxLogLength = n
	}
}

// WithSweepInterval overrides the background sweep period.
func WithSweepInterval(d time.Duration) Option {
	return func(c *config) {
		c.sweepInterval = d
	}
}

// New creates the transaction tracker on top of the given storage and chain
// query client.
func New(storage TxLogStorage, query ChainQuery, opts ...Option) *service {
	cfg := config{
		guard:         NewNopIdempotencyGuard(),
		rt:            retry.New(),
		maxLogLength:  defaultMaxLogLength,
		sweepInterval: defaultSweepInterval,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		storage:       storage,
		query:         query,
		guard:         cfg.guard,
		rt:            cfg.rt,
		chains:        cfg.chains,
		events:        cfg.events,
		maxLogLength:  cfg.maxLogLength,
		sweepInterval: cfg.sweepInterval,
		triggerCh:     make(chan string, triggerBuffer),
	}
}

// Append implements Service.
func (s *service) Append(ctx context.Context, log TxLog) error {
	if err := validator.Validate(log); err != nil {
		return err
	}

	log.Status = StatusPending
	if log.Timestamp == 0 {
		log.Timestamp = time.Now().Unix()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logs, err := s.storage.ListTxLogs(ctx, log.ChainID)
	if err != nil {
		return err
	}

	logs = append([]TxLog{log}, logs...)
	if len(logs) > s.maxLogLength {
		logs = logs[:s.maxLogLength]
	}

	return s.storage.SaveTxLogs(ctx, log.ChainID, logs)
}

// Logs implements Service.
func (s *service) Logs(ctx context.Context, chainID string, filter Filter) ([]TxLog, error) {
	logs, err := s.storage.ListTxLogs(ctx, chainID)
	if err != nil {
		return nil, err
	}

	filtered := make([]TxLog, 0, len(logs))
	for _, log := range logs {
		if filter.match(log) {
			filtered = append(filtered, log)
		}
	}

	return filtered, nil
}

// PurgeChain implements Service.
func (s *service) PurgeChain(ctx context.Context, chainID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.storage.ClearTxLogs(ctx, chainID)
}

// Trigger implements Service.
func (s *service) Trigger(chainID string) {
	select {
	case s.triggerCh <- chainID:
	default:
	}
}

// Start implements Service.
func (s *service) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx)
	return nil
}

// Close implements Service.
func (s *service) Close() {
	if s.cancel == nil {
		return
	}

	s.cancel()
	<-s.done
}

// run is the background loop: periodic sweeps over every registered chain,
// plus on-demand passes for triggered chains.
func (s *service) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case chainID := <-s.triggerCh:
			if err := s.ReconcileAll(ctx, chainID); err != nil {
				logger.Warn(ctx, "triggered reconciliation failed", "chain.id", chainID, "error", err)
			}
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep reconciles every registered chain.
func (s *service) sweep(ctx context.Context) {
	if s.chains == nil {
		return
	}

	chainIDs, err := s.chains.ChainIDs(ctx)
	if err != nil {
		logger.Warn(ctx, "chain listing for reconciliation sweep failed", "error", err)
		return
	}

	for _, chainID := range chainIDs {
		if err := s.ReconcileAll(ctx, chainID); err != nil {
			logger.Warn(ctx, "reconciliation sweep failed", "chain.id", chainID, "error", err)
		}
	}
}
