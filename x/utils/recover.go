package utils

import (
	"github.com/obridge/weave"
	"github.com/obridge/weave/errors"
)

// Recovery turns a panic raised by a handler into an ErrPanic failure of
// the operation. The panic is logged with the operation path, the error
// returned to the caller carries no details.
type Recovery struct{}

var _ weave.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator
func NewRecovery() Recovery {
	return Recovery{}
}

func (r Recovery) Check(ctx weave.Context, store weave.KVStore, tx weave.Tx, next weave.Checker) (_ *weave.CheckResult, err error) {
	defer r.recover(ctx, tx, &err)
	return next.Check(ctx, store, tx)
}

func (r Recovery) Deliver(ctx weave.Context, store weave.KVStore, tx weave.Tx, next weave.Deliverer) (_ *weave.DeliverResult, err error) {
	defer r.recover(ctx, tx, &err)
	return next.Deliver(ctx, store, tx)
}

// recover must be deferred directly, otherwise the builtin recover is a
// no-op.
func (Recovery) recover(ctx weave.Context, tx weave.Tx, err *error) {
	p := recover()
	if p == nil {
		return
	}
	path := "(missing)"
	if tx != nil {
		path = weave.GetPath(tx)
	}
	weave.GetLogger(ctx).Error("operation panicked", "path", path, "panic", p)
	*err = errors.Wrapf(errors.ErrPanic, "%v", p)
}
