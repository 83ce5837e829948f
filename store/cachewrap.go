package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/obridge/weave"
	"github.com/obridge/weave/errors"
)

// CacheWrap keeps all writes in its own btree until Write is called. Reads
// fall through to the parent for keys that were not touched.
type CacheWrap struct {
	bt     *btree.BTree
	free   *btree.FreeList
	parent weave.KVStore
	done   bool
}

var _ weave.KVCacheWrap = (*CacheWrap)(nil)

func newCacheWrap(parent weave.KVStore, free *btree.FreeList) *CacheWrap {
	return &CacheWrap{
		bt:     btree.NewWithFreeList(degree, free),
		free:   free,
		parent: parent,
	}
}

// NewCacheWrap layers a cache over any store.
func NewCacheWrap(parent weave.KVStore) *CacheWrap {
	return newCacheWrap(parent, btree.NewFreeList(DefaultFreeListSize))
}

func (c *CacheWrap) usable() error {
	if c.done {
		return errors.Wrap(errors.ErrState, "cache wrap already written or discarded")
	}
	return nil
}

// Get reads from the cache if the key was modified, else from the parent.
func (c *CacheWrap) Get(key []byte) ([]byte, error) {
	if err := c.usable(); err != nil {
		return nil, err
	}
	if key == nil {
		return nil, errors.Wrap(errors.ErrInput, "nil key")
	}
	if res := c.bt.Get(item{key: key}); res != nil {
		it := res.(item)
		if it.deleted {
			return nil, nil
		}
		return it.value, nil
	}
	return c.parent.Get(key)
}

// Has reads from the cache if the key was modified, else from the parent.
func (c *CacheWrap) Has(key []byte) (bool, error) {
	if err := c.usable(); err != nil {
		return false, err
	}
	if key == nil {
		return false, errors.Wrap(errors.ErrInput, "nil key")
	}
	if res := c.bt.Get(item{key: key}); res != nil {
		return !res.(item).deleted, nil
	}
	return c.parent.Has(key)
}

// Set records the write in the cache.
func (c *CacheWrap) Set(key, value []byte) error {
	if err := c.usable(); err != nil {
		return err
	}
	if key == nil {
		return errors.Wrap(errors.ErrInput, "nil key")
	}
	if value == nil {
		return errors.Wrap(errors.ErrInput, "nil value")
	}
	c.bt.ReplaceOrInsert(item{key: clone(key), value: clone(value)})
	return nil
}

// Delete records the removal in the cache.
func (c *CacheWrap) Delete(key []byte) error {
	if err := c.usable(); err != nil {
		return err
	}
	if key == nil {
		return errors.Wrap(errors.ErrInput, "nil key")
	}
	c.bt.ReplaceOrInsert(item{key: clone(key), deleted: true})
	return nil
}

// Iterator over a domain of keys in ascending order. Cached writes shadow
// the parent content.
func (c *CacheWrap) Iterator(start, end []byte) (weave.Iterator, error) {
	merged, err := c.merge(start, end)
	if err != nil {
		return nil, err
	}
	return newSliceIterator(merged, false), nil
}

// ReverseIterator over a domain of keys in descending order.
func (c *CacheWrap) ReverseIterator(start, end []byte) (weave.Iterator, error) {
	merged, err := c.merge(start, end)
	if err != nil {
		return nil, err
	}
	return newSliceIterator(merged, true), nil
}

func (c *CacheWrap) merge(start, end []byte) ([]item, error) {
	if err := c.usable(); err != nil {
		return nil, err
	}
	it, err := c.parent.Iterator(start, end)
	if err != nil {
		return nil, errors.Wrap(err, "parent iterator")
	}
	defer it.Release()

	var parent []item
	for {
		k, v, err := it.Next()
		if weave.ErrIteratorDone.Is(err) {
			break
		}
		if err != nil {
			return nil, err
		}
		parent = append(parent, item{key: k, value: v})
	}
	cached := collect(c.bt, start, end)

	res := make([]item, 0, len(parent)+len(cached))
	for len(parent) > 0 || len(cached) > 0 {
		switch {
		case len(cached) == 0:
			res = append(res, parent...)
			parent = nil
		case len(parent) == 0 || bytes.Compare(cached[0].key, parent[0].key) < 0:
			if !cached[0].deleted {
				res = append(res, cached[0])
			}
			cached = cached[1:]
		case bytes.Equal(cached[0].key, parent[0].key):
			if !cached[0].deleted {
				res = append(res, cached[0])
			}
			cached, parent = cached[1:], parent[1:]
		default:
			res = append(res, parent[0])
			parent = parent[1:]
		}
	}
	return res, nil
}

// CacheWrap layers another cache on top of this one.
func (c *CacheWrap) CacheWrap() weave.KVCacheWrap {
	return newCacheWrap(c, c.free)
}

// Write flushes all cached operations to the parent store, in key order.
// The cache cannot be used afterwards.
func (c *CacheWrap) Write() error {
	if err := c.usable(); err != nil {
		return err
	}
	var err error
	c.bt.Ascend(func(i btree.Item) bool {
		it := i.(item)
		if it.deleted {
			err = c.parent.Delete(it.key)
		} else {
			err = c.parent.Set(it.key, it.value)
		}
		return err == nil
	})
	c.Discard()
	return errors.Wrap(err, "write to parent")
}

// Discard drops all cached operations. The cache cannot be used afterwards.
func (c *CacheWrap) Discard() {
	c.bt.Clear(true)
	c.done = true
}
