package monitor

import (
	"context"
	"encoding/hex"
	"strings"
	"time"

	"github.com/obridge/weave/errors"
	"github.com/obridge/weave/x/htlc"
	"github.com/tendermint/tendermint/libs/log"
)

// DefaultDelay is the pause between two consecutive block requests.
const DefaultDelay = 200 * time.Millisecond

// Poller reads blocks one by one and hands the operations of the followed
// programs with decodable extra data to a sink.
type Poller struct {
	src      BlockSource
	sink     Sink
	programs map[string]bool
	delay    time.Duration
	logger   log.Logger
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithDelay sets the pause between two block requests.
func WithDelay(d time.Duration) PollerOption {
	return func(p *Poller) {
		p.delay = d
	}
}

// WithLogger sets the poller logger.
func WithLogger(logger log.Logger) PollerOption {
	return func(p *Poller) {
		p.logger = logger
	}
}

// NewPoller returns a poller following operations of the given programs.
func NewPoller(src BlockSource, sink Sink, programs []string, opts ...PollerOption) *Poller {
	p := &Poller{
		src:      src,
		sink:     sink,
		programs: make(map[string]bool, len(programs)),
		delay:    DefaultDelay,
		logger:   log.NewNopLogger(),
	}
	for _, name := range programs {
		p.programs[name] = true
	}
	for _, fn := range opts {
		fn(p)
	}
	p.logger = p.logger.With("module", "monitor", "programs", strings.Join(programs, ","))
	return p
}

// Run processes blocks starting at the given height until the context is
// cancelled or an error other than ErrNotAvailable occurs. It returns the
// first height that was not processed.
func (p *Poller) Run(ctx context.Context, height int64) (int64, error) {
	for {
		if err := ctx.Err(); err != nil {
			return height, err
		}

		block, err := p.src.Block(ctx, height)
		switch {
		case err == nil:
			if err := p.process(ctx, block); err != nil {
				p.logger.Error("cannot process block", "height", height, "err", err)
				return height, err
			}
			height++
		case ErrNotAvailable.Is(err):
			p.logger.Debug("block not available", "height", height)
		default:
			p.logger.Error("cannot fetch block", "height", height, "err", err)
			return height, errors.Wrapf(err, "block %d", height)
		}

		select {
		case <-ctx.Done():
			return height, ctx.Err()
		case <-time.After(p.delay):
		}
	}
}

func (p *Poller) process(ctx context.Context, b *Block) error {
	for _, op := range b.Ops {
		if !p.programs[op.Program] || len(op.Memo) == 0 {
			continue
		}
		extra, err := htlc.DecodeExtraData(op.Memo)
		if err != nil {
			p.logger.Info("skipping operation",
				"height", b.Height,
				"path", op.Path,
				"data", hex.EncodeToString(op.Data),
				"err", err)
			continue
		}
		e := Event{
			Height: b.Height,
			Time:   b.Time,
			Path:   op.Path,
			Data:   op.Data,
			Extra:  extra,
		}
		if err := p.sink.Handle(ctx, e); err != nil {
			return errors.Wrapf(err, "operation %s", op.Path)
		}
	}
	return nil
}
