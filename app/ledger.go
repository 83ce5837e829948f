package app

import (
	"context"
	"sync"
	"time"

	"github.com/obridge/weave"
	"github.com/obridge/weave/errors"
	"github.com/obridge/weave/x"
	"github.com/tendermint/tendermint/libs/log"
)

// Operation is a single request submitted to the ledger: a message together
// with the conditions that authorized it.
type Operation struct {
	Msg     weave.Msg
	Signers []weave.Condition
}

var _ weave.Tx = (*Operation)(nil)

func (op *Operation) GetMsg() (weave.Msg, error) {
	if op.Msg == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "msg")
	}
	return op.Msg, nil
}

// Ledger executes operations against the store, one at a time. Each
// operation sees the state left by all previously delivered operations.
type Ledger struct {
	mu      sync.Mutex
	db      weave.CacheableKVStore
	handler weave.Handler
	chainID string
	height  int64
	now     func() time.Time
	logger  log.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the source of the block time. It defaults to time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// WithLogger sets the logger passed to the handlers.
func WithLogger(logger log.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// NewLedger returns a ledger operating on the given store. The handler is
// usually a Router wrapped with decorators.
func NewLedger(db weave.CacheableKVStore, h weave.Handler, opts ...Option) *Ledger {
	l := &Ledger{
		db:      db,
		handler: h,
		chainID: loadChainID(db),
		now:     time.Now,
		logger:  log.NewNopLogger(),
	}
	for _, fn := range opts {
		fn(l)
	}
	return l
}

// ChainID returns the chain id set by the genesis, or an empty string if
// the ledger was not initialized yet.
func (l *Ledger) ChainID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.chainID
}

// Height returns the number of delivered operations.
func (l *Ledger) Height() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.height
}

// InitGenesis stores the chain id and runs the initializer with the
// genesis application state. A ledger can be initialized only once.
func (l *Ledger) InitGenesis(gen *Genesis, init weave.Initializer) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.chainID != "" {
		return errors.Wrapf(errors.ErrDuplicate, "ledger initialized with chain %q", l.chainID)
	}
	cache := l.db.CacheWrap()
	if err := saveChainID(cache, gen.ChainID); err != nil {
		cache.Discard()
		return err
	}
	if err := init.FromGenesis(gen.AppState, cache); err != nil {
		cache.Discard()
		return errors.Wrap(err, "genesis")
	}
	if err := cache.Write(); err != nil {
		return err
	}
	l.chainID = gen.ChainID
	l.logger.Info("ledger initialized", "chain_id", gen.ChainID)
	return nil
}

// Check validates the operation against the current state without
// modifying it.
func (l *Ledger) Check(ctx context.Context, op *Operation) (*weave.CheckResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cache := l.db.CacheWrap()
	defer cache.Discard()
	return l.handler.Check(l.context(ctx, op), cache, op)
}

// Deliver executes the operation. The state is modified only if the
// operation succeeds.
func (l *Ledger) Deliver(ctx context.Context, op *Operation) (*weave.DeliverResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cache := l.db.CacheWrap()
	res, err := l.handler.Deliver(l.context(ctx, op), cache, op)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "commit")
	}
	l.height++
	return res, nil
}

// View calls fn with a read only access to the current state.
func (l *Ledger) View(fn func(db weave.ReadOnlyKVStore) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(l.db)
}

func (l *Ledger) context(ctx context.Context, op *Operation) weave.Context {
	height := l.height + 1
	ctx = weave.WithHeight(ctx, height)
	if _, ok := weave.BlockTime(ctx); !ok {
		ctx = weave.WithBlockTime(ctx, l.now())
	}
	if l.chainID != "" {
		ctx = weave.WithChainID(ctx, l.chainID)
	}
	ctx = weave.WithLogger(ctx, l.logger.With("height", height, "path", weave.GetPath(op)))
	return x.WithSigners(ctx, op.Signers...)
}
