package app

import (
	"reflect"

	"github.com/obridge/weave"
)

// Decorators is an ordered list of decorators that is not yet bound to a
// handler. The first decorator is the outermost one.
type Decorators struct {
	chain []weave.Decorator
}

// ChainDecorators returns the list of given decorators. Nil decorators are
// skipped, so that optional ones can be passed unconditionally.
//
//	app.ChainDecorators(
//		utils.NewLogging(),
//		utils.NewRecovery(),
//		utils.NewMetrics(registerer),
//	).WithHandler(router)
func ChainDecorators(chain ...weave.Decorator) Decorators {
	return Decorators{}.Chain(chain...)
}

// Chain returns a new list with given decorators appended after the existing
// ones.
func (d Decorators) Chain(chain ...weave.Decorator) Decorators {
	next := make([]weave.Decorator, 0, len(d.chain)+len(chain))
	next = append(next, d.chain...)
	for _, dec := range chain {
		if !isNil(dec) {
			next = append(next, dec)
		}
	}
	return Decorators{chain: next}
}

func isNil(d weave.Decorator) bool {
	if d == nil {
		return true
	}
	v := reflect.ValueOf(d)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// WithHandler binds the decorators to h. Every operation passes through all
// decorators, in the order they were declared, before reaching h.
func (d Decorators) WithHandler(h weave.Handler) weave.Handler {
	for i := len(d.chain) - 1; i >= 0; i-- {
		h = step{decorator: d.chain[i], next: h}
	}
	return h
}

// step binds a single decorator to the handler it wraps.
type step struct {
	decorator weave.Decorator
	next      weave.Handler
}

var _ weave.Handler = step{}

func (s step) Check(ctx weave.Context, store weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	return s.decorator.Check(ctx, store, tx, s.next)
}

func (s step) Deliver(ctx weave.Context, store weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	return s.decorator.Deliver(ctx, store, tx, s.next)
}
