package store

import (
	"testing"

	"github.com/obridge/weave"
	"github.com/obridge/weave/errors"
	"github.com/obridge/weave/weavetest/assert"
)

func keys(t testing.TB, it weave.Iterator) []string {
	t.Helper()
	defer it.Release()
	var res []string
	for {
		k, _, err := it.Next()
		if weave.ErrIteratorDone.Is(err) {
			return res
		}
		assert.Nil(t, err)
		res = append(res, string(k))
	}
}

func TestMemStoreGetSetDelete(t *testing.T) {
	db := MemStore()

	v, err := db.Get([]byte("a"))
	assert.Nil(t, err)
	assert.Nil(t, v)

	assert.Nil(t, db.Set([]byte("a"), []byte("1")))
	v, err = db.Get([]byte("a"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("1"), v)

	has, err := db.Has([]byte("a"))
	assert.Nil(t, err)
	assert.Equal(t, true, has)

	assert.Nil(t, db.Delete([]byte("a")))
	has, err = db.Has([]byte("a"))
	assert.Nil(t, err)
	assert.Equal(t, false, has)

	assert.IsErr(t, errors.ErrInput, db.Set(nil, []byte("x")))
	_, err = db.Get(nil)
	assert.IsErr(t, errors.ErrInput, err)
}

func TestMemStoreIterator(t *testing.T) {
	db := MemStore()
	for _, k := range []string{"b", "d", "a", "c"} {
		assert.Nil(t, db.Set([]byte(k), []byte(k)))
	}

	it, err := db.Iterator(nil, nil)
	assert.Nil(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, keys(t, it))

	it, err = db.Iterator([]byte("b"), []byte("d"))
	assert.Nil(t, err)
	assert.Equal(t, []string{"b", "c"}, keys(t, it))

	it, err = db.ReverseIterator([]byte("b"), nil)
	assert.Nil(t, err)
	assert.Equal(t, []string{"d", "c", "b"}, keys(t, it))
}

func TestCacheWrapWriteAndDiscard(t *testing.T) {
	db := MemStore()
	assert.Nil(t, db.Set([]byte("keep"), []byte("1")))
	assert.Nil(t, db.Set([]byte("drop"), []byte("2")))

	cache := db.CacheWrap()
	assert.Nil(t, cache.Set([]byte("new"), []byte("3")))
	assert.Nil(t, cache.Delete([]byte("drop")))

	// Parent is not modified until written.
	v, err := db.Get([]byte("new"))
	assert.Nil(t, err)
	assert.Nil(t, v)
	v, err = cache.Get([]byte("drop"))
	assert.Nil(t, err)
	assert.Nil(t, v)

	it, err := cache.Iterator(nil, nil)
	assert.Nil(t, err)
	assert.Equal(t, []string{"keep", "new"}, keys(t, it))

	discarded := db.CacheWrap()
	assert.Nil(t, discarded.Set([]byte("lost"), []byte("4")))
	discarded.Discard()
	_, err = discarded.Get([]byte("lost"))
	assert.IsErr(t, errors.ErrState, err)

	assert.Nil(t, cache.Write())
	it, err = db.Iterator(nil, nil)
	assert.Nil(t, err)
	assert.Equal(t, []string{"keep", "new"}, keys(t, it))
	assert.IsErr(t, errors.ErrState, cache.Write())
}

func TestNestedCacheWrap(t *testing.T) {
	db := MemStore()
	outer := db.CacheWrap()
	assert.Nil(t, outer.Set([]byte("a"), []byte("1")))

	inner := outer.CacheWrap()
	assert.Nil(t, inner.Set([]byte("b"), []byte("2")))
	assert.Nil(t, inner.Delete([]byte("a")))
	inner.Discard()

	it, err := outer.Iterator(nil, nil)
	assert.Nil(t, err)
	assert.Equal(t, []string{"a"}, keys(t, it))

	inner = outer.CacheWrap()
	assert.Nil(t, inner.Set([]byte("b"), []byte("2")))
	assert.Nil(t, inner.Write())
	assert.Nil(t, outer.Write())

	it, err = db.ReverseIterator(nil, nil)
	assert.Nil(t, err)
	assert.Equal(t, []string{"b", "a"}, keys(t, it))
}
