package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/obridge/weave"
	"github.com/obridge/weave/errors"
)

const (
	// DefaultFreeListSize is the size we hold for free node in btree
	DefaultFreeListSize = btree.DefaultFreeListSize

	degree = 2
)

// item is a single btree entry. A nil value with deleted set marks a
// removal that must shadow the parent store.
type item struct {
	key     []byte
	value   []byte
	deleted bool
}

// Less returns true iff second argument is greater than first
func (i item) Less(than btree.Item) bool {
	return bytes.Compare(i.key, than.(item).key) < 0
}

// Store is a btree backed key value store. It keeps the committed
// state of the ledger.
type Store struct {
	bt   *btree.BTree
	free *btree.FreeList
}

var _ weave.CacheableKVStore = (*Store)(nil)

// MemStore returns an empty store. There is no persistence.
func MemStore() *Store {
	free := btree.NewFreeList(DefaultFreeListSize)
	return &Store{
		bt:   btree.NewWithFreeList(degree, free),
		free: free,
	}
}

// Get returns the value stored under given key or nil.
func (s *Store) Get(key []byte) ([]byte, error) {
	if key == nil {
		return nil, errors.Wrap(errors.ErrInput, "nil key")
	}
	if res := s.bt.Get(item{key: key}); res != nil {
		return res.(item).value, nil
	}
	return nil, nil
}

// Has returns true if a value is stored under given key.
func (s *Store) Has(key []byte) (bool, error) {
	if key == nil {
		return false, errors.Wrap(errors.ErrInput, "nil key")
	}
	return s.bt.Has(item{key: key}), nil
}

// Set stores a copy of the value under given key.
func (s *Store) Set(key, value []byte) error {
	if key == nil {
		return errors.Wrap(errors.ErrInput, "nil key")
	}
	if value == nil {
		return errors.Wrap(errors.ErrInput, "nil value")
	}
	s.bt.ReplaceOrInsert(item{key: clone(key), value: clone(value)})
	return nil
}

// Delete removes the value stored under given key. It is not an error to
// delete a missing key.
func (s *Store) Delete(key []byte) error {
	if key == nil {
		return errors.Wrap(errors.ErrInput, "nil key")
	}
	s.bt.Delete(item{key: key})
	return nil
}

// Iterator over a domain of keys in ascending order. End is exclusive, nil
// start or end means unbounded.
func (s *Store) Iterator(start, end []byte) (weave.Iterator, error) {
	return newSliceIterator(collect(s.bt, start, end), false), nil
}

// ReverseIterator over a domain of keys in descending order.
func (s *Store) ReverseIterator(start, end []byte) (weave.Iterator, error) {
	return newSliceIterator(collect(s.bt, start, end), true), nil
}

// CacheWrap returns a scratch pad on top of this store.
func (s *Store) CacheWrap() weave.KVCacheWrap {
	return newCacheWrap(s, s.free)
}

// collect returns all btree items within given range in ascending order.
func collect(bt *btree.BTree, start, end []byte) []item {
	var res []item
	fn := func(i btree.Item) bool {
		it := i.(item)
		if end != nil && bytes.Compare(it.key, end) >= 0 {
			return false
		}
		res = append(res, it)
		return true
	}
	if start == nil {
		bt.Ascend(fn)
	} else {
		bt.AscendGreaterOrEqual(item{key: start}, fn)
	}
	return res
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
