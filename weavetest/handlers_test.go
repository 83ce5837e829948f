package weavetest

import (
	"context"
	"testing"

	"github.com/obridge/weave/errors"
	"github.com/obridge/weave/store"
)

func TestHandlerCounts(t *testing.T) {
	h := &Handler{DeliverErr: errors.ErrNotFound}
	d := &Decorator{}
	db := store.MemStore()

	if _, err := d.Check(context.Background(), db, &Tx{}, h); err != nil {
		t.Fatalf("unexpected check error: %s", err)
	}
	if _, err := d.Deliver(context.Background(), db, &Tx{}, h); !errors.ErrNotFound.Is(err) {
		t.Fatalf("unexpected deliver error: %v", err)
	}
	if h.CallCount() != 2 || d.CheckCallCount() != 1 || d.DeliverCallCount() != 1 {
		t.Fatalf("unexpected call counts: %d %d %d", h.CallCount(), d.CheckCallCount(), d.DeliverCallCount())
	}
}

func TestNewConditionIsUnique(t *testing.T) {
	a, b := NewCondition(), NewCondition()
	if a.Equals(b) {
		t.Fatal("conditions must be unique")
	}
	if err := a.Validate(); err != nil {
		t.Fatalf("invalid condition: %s", err)
	}
}
