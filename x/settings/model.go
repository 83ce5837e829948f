package settings

import (
	"io"

	"github.com/obridge/weave"
	"github.com/obridge/weave/codec"
	"github.com/obridge/weave/coin"
	"github.com/obridge/weave/errors"
	"github.com/obridge/weave/gconf"
	"github.com/obridge/weave/orm"
	"github.com/obridge/weave/x"
)

// registryPkg is the name under which the registry singleton is stored.
const registryPkg = "settings"

// Registry is the global configuration of the escrow engines.
type Registry struct {
	Metadata *weave.Metadata `json:"metadata"`
	// Admin is the only address allowed to change the registry.
	Admin weave.Address `json:"admin"`
	// FeeRecipient receives all fees. It is empty until configured.
	FeeRecipient weave.Address `json:"fee_recipient"`
	// FeeRateBp is the fee rate in basis points.
	FeeRateBp uint32 `json:"fee_rate_bp"`
	// Reservation is taken from the depositor of every escrow and returned
	// when the escrow is closed.
	Reservation *coin.Coin `json:"reservation"`
}

var _ gconf.Configuration = (*Registry)(nil)

func (r *Registry) Validate() error {
	if err := r.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	var errs error
	errs = errors.AppendField(errs, "Admin", x.RequireAddress(r.Admin))
	errs = errors.AppendField(errs, "FeeRecipient", x.ValidateOptionalAddress(r.FeeRecipient))
	if r.FeeRateBp > MaxFeeRate {
		errs = errors.AppendField(errs, "FeeRateBp", ErrInvalidFeeRate)
	}
	if r.Reservation != nil {
		errs = errors.AppendField(errs, "Reservation", r.Reservation.Validate())
	}
	return errs
}

// HasFeeRecipient returns true if fees can be collected.
func (r *Registry) HasFeeRecipient() bool {
	return len(r.FeeRecipient) != 0
}

// ReservationCoin returns the reservation charged per escrow. It is a zero
// value coin when no reservation is configured.
func (r *Registry) ReservationCoin() coin.Coin {
	if r.Reservation == nil {
		return coin.Coin{}
	}
	return *r.Reservation
}

func (r *Registry) Marshal() ([]byte, error) {
	return codec.NewEncoder().
		Message(1, r.Metadata).
		Bytes(2, r.Admin).
		Bytes(3, r.FeeRecipient).
		Uint32(4, r.FeeRateBp).
		Message(5, r.Reservation).
		Result()
}

func (r *Registry) Unmarshal(raw []byte) error {
	*r = Registry{}
	d := codec.NewDecoder(raw)
	for {
		field, _, err := d.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch field {
		case 1:
			r.Metadata = &weave.Metadata{}
			err = d.Message(r.Metadata)
		case 2:
			r.Admin, err = d.Bytes()
		case 3:
			r.FeeRecipient, err = d.Bytes()
		case 4:
			r.FeeRateBp, err = d.Uint32()
		case 5:
			r.Reservation = &coin.Coin{}
			err = d.Message(r.Reservation)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, "registry")
		}
	}
}

// LoadRegistry returns the registry singleton. ErrNotFound is returned if
// the registry was never initialized.
func LoadRegistry(db gconf.ReadStore) (*Registry, error) {
	var r Registry
	if err := gconf.Load(db, registryPkg, &r); err != nil {
		return nil, errors.Wrap(err, "settings")
	}
	return &r, nil
}

// SaveRegistry validates and stores the registry singleton.
func SaveRegistry(db gconf.Store, r *Registry) error {
	return gconf.Save(db, registryPkg, r)
}

// AssetFeeCap limits the fee charged for a single asset.
type AssetFeeCap struct {
	Metadata *weave.Metadata `json:"metadata"`
	Ticker   string          `json:"ticker"`
	// MaxFee is the maximum fee charged per escrow. Zero means that the
	// fee is not capped.
	MaxFee uint64 `json:"max_fee"`
	// Payer is the address that declared the cap.
	Payer weave.Address `json:"payer"`
}

var _ orm.Model = (*AssetFeeCap)(nil)

func (c *AssetFeeCap) Validate() error {
	if err := c.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	var errs error
	if !coin.IsTicker(c.Ticker) {
		errs = errors.AppendField(errs, "Ticker", errors.ErrCurrency)
	}
	errs = errors.AppendField(errs, "Payer", x.ValidateOptionalAddress(c.Payer))
	return errs
}

func (c *AssetFeeCap) Marshal() ([]byte, error) {
	return codec.NewEncoder().
		Message(1, c.Metadata).
		String(2, c.Ticker).
		Uint64(3, c.MaxFee).
		Bytes(4, c.Payer).
		Result()
}

func (c *AssetFeeCap) Unmarshal(raw []byte) error {
	*c = AssetFeeCap{}
	d := codec.NewDecoder(raw)
	for {
		field, _, err := d.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch field {
		case 1:
			c.Metadata = &weave.Metadata{}
			err = d.Message(c.Metadata)
		case 2:
			c.Ticker, err = d.String()
		case 3:
			c.MaxFee, err = d.Uint64()
		case 4:
			c.Payer, err = d.Bytes()
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, "asset fee cap")
		}
	}
}

// NewAssetFeeCapBucket returns a bucket of fee caps, keyed by ticker.
func NewAssetFeeCapBucket() orm.ModelBucket {
	return orm.NewModelBucket("feecap", &AssetFeeCap{})
}
