package monitor

import (
	"context"
	"strings"
	"sync"

	"github.com/obridge/weave"
	"github.com/obridge/weave/errors"
)

// DefaultRetention is the number of most recent blocks kept by a Journal.
const DefaultRetention = 10000

// memoCarrier is implemented by messages that attach extra data.
type memoCarrier interface {
	GetMemo() []byte
}

// Journal is a decorator recording every successfully delivered operation
// as a block at the ledger height it was executed at. It serves the
// recorded blocks as a BlockSource.
type Journal struct {
	mu        sync.Mutex
	blocks    map[int64]*Block
	latest    int64
	retention int64
}

var (
	_ weave.Decorator = (*Journal)(nil)
	_ BlockSource     = (*Journal)(nil)
)

// NewJournal returns a journal keeping at most retention blocks.
func NewJournal(retention int64) *Journal {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Journal{
		blocks:    make(map[int64]*Block),
		retention: retention,
	}
}

func (j *Journal) Check(ctx weave.Context, store weave.KVStore, tx weave.Tx, next weave.Checker) (*weave.CheckResult, error) {
	return next.Check(ctx, store, tx)
}

func (j *Journal) Deliver(ctx weave.Context, store weave.KVStore, tx weave.Tx, next weave.Deliverer) (*weave.DeliverResult, error) {
	res, err := next.Deliver(ctx, store, tx)
	if err != nil {
		return nil, err
	}
	height, ok := weave.GetHeight(ctx)
	if !ok {
		return res, nil
	}
	msg, err := tx.GetMsg()
	if err != nil {
		return res, nil
	}

	op := Op{
		Path: msg.Path(),
		Data: res.Data,
	}
	if i := strings.IndexByte(op.Path, '/'); i > 0 {
		op.Program = op.Path[:i]
	}
	if m, ok := msg.(memoCarrier); ok {
		op.Memo = m.GetMemo()
	}
	b := &Block{Height: height, Ops: []Op{op}}
	if t, ok := weave.BlockTime(ctx); ok {
		b.Time = t
	}
	j.add(b)
	return res, nil
}

func (j *Journal) add(b *Block) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if existing, ok := j.blocks[b.Height]; ok {
		existing.Ops = append(existing.Ops, b.Ops...)
		return
	}
	j.blocks[b.Height] = b
	if b.Height > j.latest {
		j.latest = b.Height
	}
	delete(j.blocks, b.Height-j.retention)
}

// Block returns the block recorded at given height. Heights that were not
// delivered yet are not available, heights dropped by the retention are
// not found.
func (j *Journal) Block(ctx context.Context, height int64) (*Block, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if height > j.latest {
		return nil, errors.Wrapf(ErrNotAvailable, "latest height is %d", j.latest)
	}
	b, ok := j.blocks[height]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "height %d", height)
	}
	copied := *b
	copied.Ops = append([]Op(nil), b.Ops...)
	return &copied, nil
}
