package orm

import (
	"bytes"

	"github.com/gogo/protobuf/proto"
	"github.com/obridge/weave"
	"github.com/obridge/weave/errors"
)

// index keeps a set of primary keys for every indexed value. Each reference
// is stored under its own key:
//
//   <prefix><varint len(value)><value><primary key>
//
// The length prefix ensures that a value is never a prefix of another value
// lookup.
type index struct {
	prefix []byte
	fn     IndexerFunc
}

func (i *index) refPrefix(value []byte) []byte {
	k := append([]byte{}, i.prefix...)
	k = append(k, proto.EncodeVarint(uint64(len(value)))...)
	return append(k, value...)
}

func (i *index) update(db weave.KVStore, key []byte, prev, next Model) error {
	var prevVal, nextVal []byte
	var err error
	if prev != nil {
		if prevVal, err = i.fn(prev); err != nil {
			return errors.Wrap(err, "previous value")
		}
	}
	if next != nil {
		if nextVal, err = i.fn(next); err != nil {
			return errors.Wrap(err, "new value")
		}
	}
	if prev != nil && next != nil && bytes.Equal(prevVal, nextVal) {
		return nil
	}
	if prevVal != nil {
		if err := db.Delete(append(i.refPrefix(prevVal), key...)); err != nil {
			return err
		}
	}
	if nextVal != nil {
		if err := db.Set(append(i.refPrefix(nextVal), key...), []byte{1}); err != nil {
			return err
		}
	}
	return nil
}

func (i *index) keys(db weave.ReadOnlyKVStore, value []byte) ([][]byte, error) {
	start := i.refPrefix(value)
	it, err := db.Iterator(start, prefixEnd(start))
	if err != nil {
		return nil, errors.Wrap(err, "index iterator")
	}
	defer it.Release()

	var res [][]byte
	for {
		k, _, err := it.Next()
		if weave.ErrIteratorDone.Is(err) {
			return res, nil
		}
		if err != nil {
			return nil, err
		}
		res = append(res, k[len(start):])
	}
}

// prefixEnd returns the smallest key that is greater than all keys starting
// with given prefix, or nil if there is no such key.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte{}, prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
