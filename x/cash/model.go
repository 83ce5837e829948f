package cash

import (
	"io"

	"github.com/obridge/weave"
	"github.com/obridge/weave/codec"
	"github.com/obridge/weave/coin"
	"github.com/obridge/weave/errors"
	"github.com/obridge/weave/orm"
)

// Wallet holds all coins owned by a single address.
type Wallet struct {
	Metadata *weave.Metadata
	Coins    coin.Coins
}

var _ orm.Model = (*Wallet)(nil)

func (w *Wallet) Validate() error {
	if err := w.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	return errors.Wrap(w.Coins.Validate(), "coins")
}

func (w *Wallet) Marshal() ([]byte, error) {
	e := codec.NewEncoder().Message(1, w.Metadata)
	for _, c := range w.Coins {
		e.Message(2, c)
	}
	return e.Result()
}

func (w *Wallet) Unmarshal(raw []byte) error {
	*w = Wallet{}
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
			w.Metadata = &weave.Metadata{}
			err = d.Message(w.Metadata)
		case 2:
			var c coin.Coin
			if err = d.Message(&c); err == nil {
				w.Coins = append(w.Coins, &c)
			}
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, "wallet")
		}
	}
}

// NewBucket returns a bucket for wallets, keyed by the owner address.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket("cash", &Wallet{})
}
