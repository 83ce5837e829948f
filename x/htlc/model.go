package htlc

import (
	"io"

	"github.com/obridge/weave"
	"github.com/obridge/weave/codec"
	"github.com/obridge/weave/coin"
	"github.com/obridge/weave/errors"
	"github.com/obridge/weave/orm"
	"github.com/obridge/weave/x"
	"github.com/obridge/weave/x/lock"
)

const (
	shortIDLength = 16
	longIDLength  = 32

	maxMemoSize = 1024
)

// Escrow holds a deposit locked under a hash time lock. It is stored under
// its ID and exists only until it is either confirmed or refunded.
type Escrow struct {
	Metadata *weave.Metadata `json:"metadata"`
	// From is the depositor. Refunds are always paid to this address.
	From weave.Address `json:"from"`
	// To receives the deposit minus the fee on confirmation.
	To weave.Address `json:"to"`
	// Amount is the whole deposit.
	Amount *coin.Coin `json:"amount"`
	// Fee is computed when the escrow is prepared and never recomputed.
	Fee *coin.Coin `json:"fee"`
	// Reservation is taken from the depositor in addition to the amount
	// and returned to the depositor when the escrow is closed.
	Reservation *coin.Coin         `json:"reservation,omitempty"`
	Lock        *lock.HashTimeLock `json:"lock"`
	Direction   lock.Direction     `json:"direction"`
	Memo        []byte             `json:"memo,omitempty"`
	Address     weave.Address      `json:"address"`
}

var _ orm.Model = (*Escrow)(nil)

func (e *Escrow) Validate() error {
	if err := e.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	var errs error
	errs = errors.AppendField(errs, "From", x.RequireAddress(e.From))
	errs = errors.AppendField(errs, "To", x.RequireAddress(e.To))
	errs = errors.AppendField(errs, "Address", x.RequireAddress(e.Address))
	if e.Amount == nil || !e.Amount.IsPositive() {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	} else {
		errs = errors.AppendField(errs, "Amount", e.Amount.Validate())
	}
	if e.Fee == nil {
		errs = errors.AppendField(errs, "Fee", errors.ErrEmpty)
	} else if e.Amount != nil && (!e.Fee.SameType(*e.Amount) || e.Fee.Amount > e.Amount.Amount) {
		errs = errors.AppendField(errs, "Fee", errors.ErrAmount)
	}
	if e.Reservation != nil {
		errs = errors.AppendField(errs, "Reservation", e.Reservation.Validate())
	}
	if e.Lock == nil {
		errs = errors.AppendField(errs, "Lock", errors.ErrEmpty)
	} else {
		errs = errors.AppendField(errs, "Lock", e.Lock.Validate())
		errs = errors.AppendField(errs, "Lock", e.Lock.CheckRefundTime())
	}
	if err := e.Direction.Validate(); err != nil {
		errs = errors.AppendField(errs, "Direction", ErrInvalidDirection)
	}
	if len(e.Memo) > maxMemoSize {
		errs = errors.AppendField(errs, "Memo", errors.ErrInput)
	}
	return errs
}

// Payout returns the amount paid to the recipient on confirmation.
func (e *Escrow) Payout() (coin.Coin, error) {
	return e.Amount.Subtract(*e.Fee)
}

func (e *Escrow) Marshal() ([]byte, error) {
	return codec.NewEncoder().
		Message(1, e.Metadata).
		Bytes(2, e.From).
		Bytes(3, e.To).
		Message(4, e.Amount).
		Message(5, e.Fee).
		Message(6, e.Reservation).
		Message(7, e.Lock).
		Int64(8, int64(e.Direction)).
		Bytes(9, e.Memo).
		Bytes(10, e.Address).
		Result()
}

func (e *Escrow) Unmarshal(raw []byte) error {
	*e = Escrow{}
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
			e.Metadata = &weave.Metadata{}
			err = d.Message(e.Metadata)
		case 2:
			e.From, err = d.Bytes()
		case 3:
			e.To, err = d.Bytes()
		case 4:
			e.Amount = &coin.Coin{}
			err = d.Message(e.Amount)
		case 5:
			e.Fee = &coin.Coin{}
			err = d.Message(e.Fee)
		case 6:
			e.Reservation = &coin.Coin{}
			err = d.Message(e.Reservation)
		case 7:
			e.Lock = &lock.HashTimeLock{}
			err = d.Message(e.Lock)
		case 8:
			var n int64
			n, err = d.Int64()
			e.Direction = lock.Direction(n)
		case 9:
			e.Memo, err = d.Bytes()
		case 10:
			e.Address, err = d.Bytes()
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, "escrow")
		}
	}
}

// EscrowAddress returns the address holding the funds of the escrow with
// given ID. Nobody can sign for it.
func EscrowAddress(id []byte) weave.Address {
	return weave.NewCondition("htlc", "uuid", id).Address()
}

// NewBucket returns a bucket of escrows, keyed by ID and indexed by both
// parties.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket("htlc", &Escrow{},
		orm.WithIndex("from", func(m orm.Model) ([]byte, error) {
			e, ok := m.(*Escrow)
			if !ok {
				return nil, errors.Wrapf(errors.ErrType, "%T", m)
			}
			return e.From, nil
		}),
		orm.WithIndex("recipient", func(m orm.Model) ([]byte, error) {
			e, ok := m.(*Escrow)
			if !ok {
				return nil, errors.Wrapf(errors.ErrType, "%T", m)
			}
			return e.To, nil
		}),
	)
}

func validateID(id []byte) error {
	if n := len(id); n != shortIDLength && n != longIDLength {
		return errors.Wrapf(errors.ErrInput, "ID must be %d or %d bytes, got %d", shortIDLength, longIDLength, n)
	}
	return nil
}
