package htlc

import (
	"github.com/obridge/weave"
	"github.com/obridge/weave/codec"
	"github.com/obridge/weave/coin"
	"github.com/obridge/weave/errors"
	"github.com/obridge/weave/x/lock"
)

// DeriveUUID returns an escrow ID bound to the economic terms of an
// exchange. Both parties can compute it independently before any escrow is
// prepared.
func DeriveUUID(from, to weave.Address, amount coin.Coin, l *lock.HashTimeLock, d lock.Direction) ([]byte, error) {
	raw, err := codec.NewEncoder().
		Bytes(1, from).
		Bytes(2, to).
		Message(3, &amount).
		Message(4, &lock.Descriptor{Lock: l}).
		Int64(5, int64(d)).
		Result()
	if err != nil {
		return nil, errors.Wrap(err, "serialize terms")
	}
	return lock.Keccak256([]byte(packageName), raw), nil
}
