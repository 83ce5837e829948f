package monitor

import (
	"context"
	"time"

	"github.com/obridge/weave/x/htlc"
)

// Block is a single ledger height as seen by the poller.
type Block struct {
	Height int64
	Time   time.Time
	Ops    []Op
}

// Op is an operation included in a block.
type Op struct {
	// Program is the name of the extension that executed the operation,
	// ie. htlc.
	Program string
	Path    string
	// Data is the result of the operation, for a prepare the escrow ID.
	Data []byte
	// Memo is the opaque extra data attached by the requestor.
	Memo []byte
}

// BlockSource provides blocks by height.
type BlockSource interface {
	// Block returns the block at given height or ErrNotAvailable if it
	// does not exist yet.
	Block(ctx context.Context, height int64) (*Block, error)
}

// Event is an operation of the followed program with decoded extra data.
type Event struct {
	Height int64
	Time   time.Time
	Path   string
	Data   []byte
	Extra  *htlc.ExtraData
}

// Sink consumes events found by the poller. Returning an error stops the
// poller.
type Sink interface {
	Handle(ctx context.Context, e Event) error
}

// SinkFunc is an adapter to use a function as a Sink.
type SinkFunc func(ctx context.Context, e Event) error

func (fn SinkFunc) Handle(ctx context.Context, e Event) error {
	return fn(ctx, e)
}
