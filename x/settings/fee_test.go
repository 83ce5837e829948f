package settings

import (
	"math"
	"testing"

	"github.com/obridge/weave"
	"github.com/obridge/weave/coin"
	"github.com/obridge/weave/errors"
	"github.com/obridge/weave/store"
	"github.com/obridge/weave/weavetest/assert"
)

func TestFee(t *testing.T) {
	cases := map[string]struct {
		amount  uint64
		rate    uint32
		maxFee  uint64
		want    uint64
		wantErr *errors.Error
	}{
		"ten percent": {
			amount: 2000000000,
			rate:   1000,
			want:   200000000,
		},
		"capped": {
			amount: 1000,
			rate:   1000,
			maxFee: 50,
			want:   50,
		},
		"cap above the fee": {
			amount: 1000,
			rate:   1000,
			maxFee: 500,
			want:   100,
		},
		"zero cap is no cap": {
			amount: 1000,
			rate:   1000,
			want:   100,
		},
		"truncated": {
			amount: 19999,
			rate:   1,
			want:   1,
		},
		"zero rate": {
			amount: 1000,
			rate:   0,
			want:   0,
		},
		"no overflow of the product": {
			amount: math.MaxUint64,
			rate:   MaxFeeRate,
			want:   math.MaxUint64,
		},
		"half of the largest amount": {
			amount: math.MaxUint64,
			rate:   5000,
			want:   math.MaxUint64 / 2,
		},
		"rate above one hundred percent": {
			amount:  1,
			rate:    MaxFeeRate + 1,
			wantErr: ErrInvalidFeeRate,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := Fee(tc.amount, tc.rate, tc.maxFee)
			assert.IsErr(t, tc.wantErr, err)
			if tc.wantErr == nil {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestFeeCalculatorQuote(t *testing.T) {
	db := store.MemStore()
	caps := NewAssetFeeCapBucket()
	err := caps.Put(db, []byte("USDC"), &AssetFeeCap{
		Metadata: &weave.Metadata{Schema: 1},
		Ticker:   "USDC",
		MaxFee:   50,
	})
	assert.Nil(t, err)

	reg := &Registry{FeeRateBp: 1000}
	calc := NewFeeCalculator()

	fee, err := calc.Quote(db, reg, coin.NewCoin(1000, "USDC"))
	assert.Nil(t, err)
	assert.Equal(t, coin.NewCoin(50, "USDC"), fee)

	fee, err = calc.Quote(db, reg, coin.NewCoin(1000, "SOL"))
	assert.Nil(t, err)
	assert.Equal(t, coin.NewCoin(100, "SOL"), fee)
}
