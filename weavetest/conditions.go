package weavetest

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/obridge/weave"
)

var counter uint64

// NewCondition returns a new condition, unique within the test run. It
// represents a signature of a participant.
func NewCondition() weave.Condition {
	n := atomic.AddUint64(&counter, 1)
	return weave.NewCondition("test", "seq", SequenceID(n))
}

// SequenceID returns the 8 byte big endian encoding of n. It is a handy
// way of building deterministic identifiers in tests.
func SequenceID(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}
