package cash

import (
	"github.com/obridge/weave"
	"github.com/obridge/weave/coin"
	"github.com/obridge/weave/errors"
	"github.com/obridge/weave/orm"
)

// Controller is the functionality needed by the escrow extensions to move
// value. Balance is used by queries and tests.
type Controller interface {
	Balance(db weave.ReadOnlyKVStore, addr weave.Address) (coin.Coins, error)
	MoveCoins(db weave.KVStore, src, dest weave.Address, amount coin.Coin) error
	IssueCoins(db weave.KVStore, dest weave.Address, amount coin.Coin) error
}

// BaseController is the default Controller implementation.
type BaseController struct {
	bucket orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a controller operating on the wallet bucket.
func NewController(bucket orm.ModelBucket) BaseController {
	return BaseController{bucket: bucket}
}

// Balance returns all coins held by given address. A missing wallet holds
// nothing.
func (c BaseController) Balance(db weave.ReadOnlyKVStore, addr weave.Address) (coin.Coins, error) {
	w, err := c.wallet(db, addr)
	if err != nil {
		return nil, err
	}
	return w.Coins, nil
}

func (c BaseController) wallet(db weave.ReadOnlyKVStore, addr weave.Address) (*Wallet, error) {
	var w Wallet
	switch err := c.bucket.One(db, addr, &w); {
	case err == nil:
		return &w, nil
	case errors.ErrNotFound.Is(err):
		return &Wallet{Metadata: &weave.Metadata{Schema: 1}}, nil
	default:
		return nil, errors.Wrap(err, "load wallet")
	}
}

// save stores the wallet or removes it when it holds nothing.
func (c BaseController) save(db weave.KVStore, addr weave.Address, w *Wallet) error {
	if w.Coins.IsEmpty() {
		if err := c.bucket.Delete(db, addr); err != nil && !errors.ErrNotFound.Is(err) {
			return errors.Wrap(err, "delete wallet")
		}
		return nil
	}
	return errors.Wrap(c.bucket.Put(db, addr, w), "save wallet")
}

// MoveCoins moves the given amount from src to dest.
// If src doesn't have sufficient coins, it fails with ErrAmount.
// Moving a zero amount is a no-op.
func (c BaseController) MoveCoins(db weave.KVStore, src, dest weave.Address, amount coin.Coin) error {
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	if amount.IsZero() || src.Equals(dest) {
		return nil
	}

	sender, err := c.wallet(db, src)
	if err != nil {
		return err
	}
	if sender.Coins, err = sender.Coins.Subtract(amount); err != nil {
		return errors.Wrapf(err, "insufficient funds of %s", src)
	}
	if err := c.save(db, src, sender); err != nil {
		return err
	}

	recipient, err := c.wallet(db, dest)
	if err != nil {
		return err
	}
	if recipient.Coins, err = recipient.Coins.Add(amount); err != nil {
		return errors.Wrapf(err, "credit %s", dest)
	}
	return c.save(db, dest, recipient)
}

// IssueCoins attempts to add the given amount of coins to
// the destination address. Fails if it overflows the wallet.
func (c BaseController) IssueCoins(db weave.KVStore, dest weave.Address, amount coin.Coin) error {
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	w, err := c.wallet(db, dest)
	if err != nil {
		return err
	}
	if w.Coins, err = w.Coins.Add(amount); err != nil {
		return err
	}
	return c.save(db, dest, w)
}
