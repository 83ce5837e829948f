package utils

import (
	"context"
	"testing"

	"github.com/obridge/weave/errors"
	"github.com/obridge/weave/store"
	"github.com/obridge/weave/weavetest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	ctx := context.Background()
	db := store.MemStore()
	tx := &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "test/msg"}}

	ok := &weavetest.Handler{}
	_, err := m.Check(ctx, db, tx, ok)
	assert.NoError(t, err)
	_, err = m.Deliver(ctx, db, tx, ok)
	assert.NoError(t, err)
	_, err = m.Deliver(ctx, db, tx, ok)
	assert.NoError(t, err)

	failing := &weavetest.Handler{DeliverErr: errors.ErrNotFound}
	_, err = m.Deliver(ctx, db, tx, failing)
	assert.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("test/msg", "check", "0")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("test/msg", "deliver", "0")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("test/msg", "deliver", "3")))
}
