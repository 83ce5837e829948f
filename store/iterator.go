package store

import "github.com/obridge/weave"

// sliceIterator returns entries of a materialized range. Stores are small
// and all operations are serialized, so a range is copied before iteration
// and the iterator is safe to use while the store is modified.
type sliceIterator struct {
	items   []item
	reverse bool
}

var _ weave.Iterator = (*sliceIterator)(nil)

func newSliceIterator(items []item, reverse bool) *sliceIterator {
	return &sliceIterator{items: items, reverse: reverse}
}

// Next returns the next entry or ErrIteratorDone.
func (s *sliceIterator) Next() (key, value []byte, err error) {
	if len(s.items) == 0 {
		return nil, nil, weave.ErrIteratorDone
	}
	var it item
	if s.reverse {
		it, s.items = s.items[len(s.items)-1], s.items[:len(s.items)-1]
	} else {
		it, s.items = s.items[0], s.items[1:]
	}
	return clone(it.key), clone(it.value), nil
}

// Release drops all remaining entries.
func (s *sliceIterator) Release() {
	s.items = nil
}
