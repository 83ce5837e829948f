package swap

import (
	"io"

	"github.com/obridge/weave"
	"github.com/obridge/weave/codec"
	"github.com/obridge/weave/coin"
	"github.com/obridge/weave/errors"
	"github.com/obridge/weave/x"
	"github.com/obridge/weave/x/lock"
)

var (
	_ weave.Msg = (*PrepareMsg)(nil)
	_ weave.Msg = (*ConfirmMsg)(nil)
	_ weave.Msg = (*RefundMsg)(nil)
)

// PrepareMsg offers Src in exchange for Dst. The source amount is
// deposited when the swap is created.
type PrepareMsg struct {
	Metadata *weave.Metadata
	ID       []byte
	From     weave.Address
	// To is optional.
	To   weave.Address
	Src  *coin.Coin
	Dst  *coin.Coin
	Lock *lock.DeadlineLock
	Memo []byte
}

func (PrepareMsg) Path() string {
	return "swap/prepare"
}

// GetMemo returns the extra data attached by the requestor.
func (m *PrepareMsg) GetMemo() []byte {
	return m.Memo
}

func (m *PrepareMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	var errs error
	errs = errors.AppendField(errs, "ID", validateID(m.ID))
	errs = errors.AppendField(errs, "From", x.RequireAddress(m.From))
	errs = errors.AppendField(errs, "To", x.ValidateOptionalAddress(m.To))
	errs = errors.AppendField(errs, "Src", validAmount(m.Src))
	errs = errors.AppendField(errs, "Dst", validAmount(m.Dst))
	if m.Lock == nil {
		errs = errors.AppendField(errs, "Lock", errors.ErrEmpty)
	} else {
		errs = errors.AppendField(errs, "Lock", m.Lock.Validate())
	}
	if len(m.Memo) > maxMemoSize {
		errs = errors.AppendField(errs, "Memo", errors.ErrInput)
	}
	return errs
}

func (m *PrepareMsg) Marshal() ([]byte, error) {
	return codec.NewEncoder().
		Message(1, m.Metadata).
		Bytes(2, m.ID).
		Bytes(3, m.From).
		Bytes(4, m.To).
		Message(5, m.Src).
		Message(6, m.Dst).
		Message(7, m.Lock).
		Bytes(8, m.Memo).
		Result()
}

func (m *PrepareMsg) Unmarshal(raw []byte) error {
	*m = PrepareMsg{}
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
			m.Metadata = &weave.Metadata{}
			err = d.Message(m.Metadata)
		case 2:
			m.ID, err = d.Bytes()
		case 3:
			m.From, err = d.Bytes()
		case 4:
			m.To, err = d.Bytes()
		case 5:
			m.Src = &coin.Coin{}
			err = d.Message(m.Src)
		case 6:
			m.Dst = &coin.Coin{}
			err = d.Message(m.Dst)
		case 7:
			m.Lock = &lock.DeadlineLock{}
			err = d.Message(m.Lock)
		case 8:
			m.Memo, err = d.Bytes()
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, "prepare msg")
		}
	}
}

// ConfirmMsg settles both legs of a swap. It must be signed by the
// counterparty.
type ConfirmMsg struct {
	Metadata *weave.Metadata
	ID       []byte
	// Recipient, if set, must be the counterparty of the swap.
	Recipient weave.Address
	// FeeRecipient, if set, must be the currently configured fee
	// recipient.
	FeeRecipient weave.Address
}

func (ConfirmMsg) Path() string {
	return "swap/confirm"
}

func (m *ConfirmMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	var errs error
	errs = errors.AppendField(errs, "ID", validateID(m.ID))
	errs = errors.AppendField(errs, "Recipient", x.ValidateOptionalAddress(m.Recipient))
	errs = errors.AppendField(errs, "FeeRecipient", x.ValidateOptionalAddress(m.FeeRecipient))
	return errs
}

func (m *ConfirmMsg) Marshal() ([]byte, error) {
	return codec.NewEncoder().
		Message(1, m.Metadata).
		Bytes(2, m.ID).
		Bytes(3, m.Recipient).
		Bytes(4, m.FeeRecipient).
		Result()
}

func (m *ConfirmMsg) Unmarshal(raw []byte) error {
	*m = ConfirmMsg{}
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
			m.Metadata = &weave.Metadata{}
			err = d.Message(m.Metadata)
		case 2:
			m.ID, err = d.Bytes()
		case 3:
			m.Recipient, err = d.Bytes()
		case 4:
			m.FeeRecipient, err = d.Bytes()
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, "confirm msg")
		}
	}
}

// RefundMsg returns the source deposit of an expired swap to its
// initiator. Anyone can submit it.
type RefundMsg struct {
	Metadata *weave.Metadata
	ID       []byte
}

func (RefundMsg) Path() string {
	return "swap/refund"
}

func (m *RefundMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	return errors.AppendField(nil, "ID", validateID(m.ID))
}

func (m *RefundMsg) Marshal() ([]byte, error) {
	return codec.NewEncoder().Message(1, m.Metadata).Bytes(2, m.ID).Result()
}

func (m *RefundMsg) Unmarshal(raw []byte) error {
	*m = RefundMsg{}
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
			m.Metadata = &weave.Metadata{}
			err = d.Message(m.Metadata)
		case 2:
			m.ID, err = d.Bytes()
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, "refund msg")
		}
	}
}
