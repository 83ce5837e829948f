package cash

import (
	"testing"

	"github.com/obridge/weave"
	"github.com/obridge/weave/coin"
	"github.com/obridge/weave/errors"
	"github.com/obridge/weave/store"
	"github.com/obridge/weave/weavetest"
	"github.com/obridge/weave/weavetest/assert"
)

func TestMoveCoins(t *testing.T) {
	alice := weavetest.NewCondition().Address()
	bob := weavetest.NewCondition().Address()

	cases := map[string]struct {
		issue     coin.Coin
		move      coin.Coin
		wantErr   *errors.Error
		wantAlice coin.Coin
		wantBob   coin.Coin
	}{
		"full balance": {
			issue:     coin.NewCoin(100, "SOL"),
			move:      coin.NewCoin(100, "SOL"),
			wantAlice: coin.NewCoin(0, "SOL"),
			wantBob:   coin.NewCoin(100, "SOL"),
		},
		"partial": {
			issue:     coin.NewCoin(100, "SOL"),
			move:      coin.NewCoin(30, "SOL"),
			wantAlice: coin.NewCoin(70, "SOL"),
			wantBob:   coin.NewCoin(30, "SOL"),
		},
		"insufficient funds": {
			issue:     coin.NewCoin(10, "SOL"),
			move:      coin.NewCoin(11, "SOL"),
			wantErr:   errors.ErrAmount,
			wantAlice: coin.NewCoin(10, "SOL"),
			wantBob:   coin.NewCoin(0, "SOL"),
		},
		"other asset": {
			issue:     coin.NewCoin(10, "SOL"),
			move:      coin.NewCoin(1, "USDC"),
			wantErr:   errors.ErrAmount,
			wantAlice: coin.NewCoin(10, "SOL"),
			wantBob:   coin.NewCoin(0, "SOL"),
		},
		"zero is a no-op": {
			issue:     coin.NewCoin(10, "SOL"),
			move:      coin.NewCoin(0, "SOL"),
			wantAlice: coin.NewCoin(10, "SOL"),
			wantBob:   coin.NewCoin(0, "SOL"),
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			ctrl := NewController(NewBucket())
			assert.Nil(t, ctrl.IssueCoins(db, alice, tc.issue))

			cache := db.CacheWrap()
			err := ctrl.MoveCoins(cache, alice, bob, tc.move)
			assert.IsErr(t, tc.wantErr, err)
			if err == nil {
				assert.Nil(t, cache.Write())
			} else {
				cache.Discard()
			}

			balance := func(addr weave.Address, ticker string) coin.Coin {
				cs, err := ctrl.Balance(db, addr)
				assert.Nil(t, err)
				return cs.Balance(ticker)
			}
			assert.Equal(t, tc.wantAlice, balance(alice, tc.wantAlice.Ticker))
			assert.Equal(t, tc.wantBob, balance(bob, tc.wantBob.Ticker))
		})
	}
}

func TestEmptyWalletIsRemoved(t *testing.T) {
	db := store.MemStore()
	bucket := NewBucket()
	ctrl := NewController(bucket)
	alice := weavetest.NewCondition().Address()
	bob := weavetest.NewCondition().Address()

	assert.Nil(t, ctrl.IssueCoins(db, alice, coin.NewCoin(5, "SOL")))
	assert.Nil(t, ctrl.MoveCoins(db, alice, bob, coin.NewCoin(5, "SOL")))
	assert.IsErr(t, errors.ErrNotFound, bucket.Has(db, alice))
	assert.Nil(t, bucket.Has(db, bob))
}

func TestGenesis(t *testing.T) {
	alice := weavetest.NewCondition().Address()
	raw := `[{"address": "` + alice.String() + `", "coins": ["100 SOL", {"ticker": "USDC", "amount": 7}]}]`
	opts := weave.Options{"cash": []byte(raw)}

	db := store.MemStore()
	assert.Nil(t, Initializer{}.FromGenesis(opts, db))

	cs, err := NewController(NewBucket()).Balance(db, alice)
	assert.Nil(t, err)
	assert.Equal(t, coin.NewCoin(100, "SOL"), cs.Balance("SOL"))
	assert.Equal(t, coin.NewCoin(7, "USDC"), cs.Balance("USDC"))
}
