package utils

import (
	"strconv"
	"time"

	"github.com/obridge/weave"
	"github.com/obridge/weave/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a decorator counting executed operations and measuring how
// long they take. Operations are labeled with the message path, the phase
// (check or deliver) and the resulting error code, 0 for success.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

var _ weave.Decorator = (*Metrics)(nil)

// NewMetrics creates a Metrics decorator and registers its collectors with
// the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "obridge_operations_total",
		Help: "Total number of operations processed by the ledger",
	}, []string{"path", "phase", "code"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "obridge_operation_duration_seconds",
		Help:    "Time spent processing an operation",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "phase"})

	reg.MustRegister(operations, duration)
	return &Metrics{
		operations: operations,
		duration:   duration,
	}
}

func (m *Metrics) Check(ctx weave.Context, store weave.KVStore, tx weave.Tx, next weave.Checker) (*weave.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, store, tx)
	m.observe(tx, "check", start, err)
	return res, err
}

func (m *Metrics) Deliver(ctx weave.Context, store weave.KVStore, tx weave.Tx, next weave.Deliverer) (*weave.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)
	m.observe(tx, "deliver", start, err)
	return res, err
}

func (m *Metrics) observe(tx weave.Tx, phase string, start time.Time, err error) {
	path := weave.GetPath(tx)
	code := errors.Code(err)
	m.operations.WithLabelValues(path, phase, strconv.FormatUint(uint64(code), 10)).Inc()
	m.duration.WithLabelValues(path, phase).Observe(time.Since(start).Seconds())
}
