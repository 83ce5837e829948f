package settings

import (
	"github.com/obridge/weave"
	"github.com/obridge/weave/coin"
	"github.com/obridge/weave/errors"
)

const optKey = "settings"

// GenesisSettings is used to parse the json from genesis file.
type GenesisSettings struct {
	Admin        weave.Address `json:"admin"`
	FeeRecipient weave.Address `json:"fee_recipient"`
	FeeRateBp    uint32        `json:"fee_rate_bp"`
	Reservation  *coin.Coin    `json:"reservation"`
	MaxFees      []struct {
		Ticker string `json:"ticker"`
		MaxFee uint64 `json:"max_fee"`
	} `json:"max_fees"`
}

// Initializer fulfils the weave.Initializer interface to load the registry
// from the genesis file.
type Initializer struct{}

var _ weave.Initializer = Initializer{}

// FromGenesis creates the registry and the asset fee caps. Nothing is
// created when the genesis does not declare the registry.
func (Initializer) FromGenesis(opts weave.Options, db weave.KVStore) error {
	var gen *GenesisSettings
	if err := opts.ReadOptions(optKey, &gen); err != nil {
		return errors.Wrap(errors.ErrInput, "cannot read settings genesis")
	}
	if gen == nil {
		return nil
	}
	reg := &Registry{
		Metadata:     &weave.Metadata{Schema: 1},
		Admin:        gen.Admin,
		FeeRecipient: gen.FeeRecipient,
		FeeRateBp:    gen.FeeRateBp,
		Reservation:  gen.Reservation,
	}
	if err := SaveRegistry(db, reg); err != nil {
		return errors.Wrap(err, "registry")
	}
	caps := NewAssetFeeCapBucket()
	for _, mf := range gen.MaxFees {
		fc := &AssetFeeCap{
			Metadata: &weave.Metadata{Schema: 1},
			Ticker:   mf.Ticker,
			MaxFee:   mf.MaxFee,
			Payer:    gen.Admin,
		}
		if err := caps.Put(db, []byte(mf.Ticker), fc); err != nil {
			return errors.Wrapf(err, "fee cap %q", mf.Ticker)
		}
	}
	return nil
}
