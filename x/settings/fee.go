package settings

import (
	"math/bits"

	"github.com/obridge/weave"
	"github.com/obridge/weave/coin"
	"github.com/obridge/weave/errors"
	"github.com/obridge/weave/orm"
)

// MaxFeeRate is the fee rate of 100%, expressed in basis points.
const MaxFeeRate uint32 = 10000

// Fee returns floor(amount * rateBp / 10000), limited by maxFee when
// maxFee is greater than zero. The product is computed on 128 bits and
// cannot overflow.
func Fee(amount uint64, rateBp uint32, maxFee uint64) (uint64, error) {
	if rateBp > MaxFeeRate {
		return 0, errors.Wrapf(ErrInvalidFeeRate, "%d basis points", rateBp)
	}
	hi, lo := bits.Mul64(amount, uint64(rateBp))
	// hi < rateBp <= 10000, so the quotient fits in 64 bits.
	fee, _ := bits.Div64(hi, lo, uint64(MaxFeeRate))
	if maxFee > 0 && fee > maxFee {
		fee = maxFee
	}
	return fee, nil
}

// FeeCalculator computes the fee of an escrow, using the fee rate of the
// registry and the cap declared for the asset.
type FeeCalculator struct {
	caps orm.ModelBucket
}

// NewFeeCalculator returns a calculator reading caps from the default
// asset fee cap bucket.
func NewFeeCalculator() FeeCalculator {
	return FeeCalculator{caps: NewAssetFeeCapBucket()}
}

// Quote returns the fee charged on given amount. An asset without a declared
// cap is charged the full percentage.
func (c FeeCalculator) Quote(db weave.ReadOnlyKVStore, reg *Registry, amount coin.Coin) (coin.Coin, error) {
	maxFee, err := c.MaxFee(db, amount.Ticker)
	if err != nil {
		return coin.Coin{}, err
	}
	fee, err := Fee(amount.Amount, reg.FeeRateBp, maxFee)
	if err != nil {
		return coin.Coin{}, err
	}
	return coin.NewCoin(fee, amount.Ticker), nil
}

// MaxFee returns the fee cap of given asset or zero if none is declared.
func (c FeeCalculator) MaxFee(db weave.ReadOnlyKVStore, ticker string) (uint64, error) {
	var fc AssetFeeCap
	switch err := c.caps.One(db, []byte(ticker), &fc); {
	case err == nil:
		return fc.MaxFee, nil
	case errors.ErrNotFound.Is(err):
		return 0, nil
	default:
		return 0, errors.Wrap(err, "load fee cap")
	}
}
