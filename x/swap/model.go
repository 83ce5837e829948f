package swap

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

// Swap is an open offer to exchange Src for Dst. Fees of both legs are
// computed when the swap is prepared.
type Swap struct {
	Metadata *weave.Metadata `json:"metadata"`
	From     weave.Address   `json:"from"`
	// To is the counterparty. It can be empty, in which case the signer
	// of the confirmation becomes the counterparty.
	To          weave.Address      `json:"to,omitempty"`
	Src         *coin.Coin         `json:"src"`
	SrcFee      *coin.Coin         `json:"src_fee"`
	Dst         *coin.Coin         `json:"dst"`
	DstFee      *coin.Coin         `json:"dst_fee"`
	Reservation *coin.Coin         `json:"reservation,omitempty"`
	Lock        *lock.DeadlineLock `json:"lock"`
	Memo        []byte             `json:"memo,omitempty"`
	Address     weave.Address      `json:"address"`
}

var _ orm.Model = (*Swap)(nil)

func (s *Swap) Validate() error {
	if err := s.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	var errs error
	errs = errors.AppendField(errs, "From", x.RequireAddress(s.From))
	errs = errors.AppendField(errs, "To", x.ValidateOptionalAddress(s.To))
	errs = errors.AppendField(errs, "Address", x.RequireAddress(s.Address))
	errs = errors.AppendField(errs, "Src", validateLeg(s.Src, s.SrcFee))
	errs = errors.AppendField(errs, "Dst", validateLeg(s.Dst, s.DstFee))
	if s.Reservation != nil {
		errs = errors.AppendField(errs, "Reservation", s.Reservation.Validate())
	}
	if s.Lock == nil {
		errs = errors.AppendField(errs, "Lock", errors.ErrEmpty)
	} else {
		errs = errors.AppendField(errs, "Lock", s.Lock.Validate())
	}
	if len(s.Memo) > maxMemoSize {
		errs = errors.AppendField(errs, "Memo", errors.ErrInput)
	}
	return errs
}

func validateLeg(amount, fee *coin.Coin) error {
	if err := validAmount(amount); err != nil {
		return err
	}
	if fee == nil {
		return errors.Wrap(errors.ErrEmpty, "fee")
	}
	if !fee.SameType(*amount) || fee.Amount > amount.Amount {
		return errors.Wrap(errors.ErrAmount, "fee")
	}
	return nil
}

func validAmount(c *coin.Coin) error {
	if c == nil || !c.IsPositive() {
		return errors.ErrAmount
	}
	return c.Validate()
}

func (s *Swap) Marshal() ([]byte, error) {
	return codec.NewEncoder().
		Message(1, s.Metadata).
		Bytes(2, s.From).
		Bytes(3, s.To).
		Message(4, s.Src).
		Message(5, s.SrcFee).
		Message(6, s.Dst).
		Message(7, s.DstFee).
		Message(8, s.Reservation).
		Message(9, s.Lock).
		Bytes(10, s.Memo).
		Bytes(11, s.Address).
		Result()
}

func (s *Swap) Unmarshal(raw []byte) error {
	*s = Swap{}
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
			s.Metadata = &weave.Metadata{}
			err = d.Message(s.Metadata)
		case 2:
			s.From, err = d.Bytes()
		case 3:
			s.To, err = d.Bytes()
		case 4:
			s.Src = &coin.Coin{}
			err = d.Message(s.Src)
		case 5:
			s.SrcFee = &coin.Coin{}
			err = d.Message(s.SrcFee)
		case 6:
			s.Dst = &coin.Coin{}
			err = d.Message(s.Dst)
		case 7:
			s.DstFee = &coin.Coin{}
			err = d.Message(s.DstFee)
		case 8:
			s.Reservation = &coin.Coin{}
			err = d.Message(s.Reservation)
		case 9:
			s.Lock = &lock.DeadlineLock{}
			err = d.Message(s.Lock)
		case 10:
			s.Memo, err = d.Bytes()
		case 11:
			s.Address, err = d.Bytes()
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, "swap")
		}
	}
}

// SwapAddress returns the address holding the source deposit of the swap
// with given ID.
func SwapAddress(id []byte) weave.Address {
	return weave.NewCondition("swap", "uuid", id).Address()
}

// NewBucket returns a bucket of swaps, keyed by ID and indexed by the
// initiator.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket("swap", &Swap{},
		orm.WithIndex("from", func(m orm.Model) ([]byte, error) {
			s, ok := m.(*Swap)
			if !ok {
				return nil, errors.Wrapf(errors.ErrType, "%T", m)
			}
			return s.From, nil
		}),
	)
}

func validateID(id []byte) error {
	if n := len(id); n != shortIDLength && n != longIDLength {
		return errors.Wrapf(errors.ErrInput, "ID must be %d or %d bytes, got %d", shortIDLength, longIDLength, n)
	}
	return nil
}
