package htlc

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
	_ weave.Msg = (*UpdateConfigurationMsg)(nil)
)

// PrepareMsg locks the amount of the depositor in a new escrow.
type PrepareMsg struct {
	Metadata  *weave.Metadata
	ID        []byte
	From      weave.Address
	To        weave.Address
	Amount    *coin.Coin
	Lock      *lock.HashTimeLock
	Direction lock.Direction
	Memo      []byte
}

func (PrepareMsg) Path() string {
	return "htlc/prepare"
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
	errs = errors.AppendField(errs, "To", x.RequireAddress(m.To))
	if m.Amount == nil || !m.Amount.IsPositive() {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	} else {
		errs = errors.AppendField(errs, "Amount", m.Amount.Validate())
	}
	if m.Lock == nil {
		errs = errors.AppendField(errs, "Lock", errors.ErrEmpty)
	} else {
		errs = errors.AppendField(errs, "Lock", m.Lock.Validate())
	}
	if err := m.Direction.Validate(); err != nil {
		errs = errors.AppendField(errs, "Direction", ErrInvalidDirection)
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
		Message(5, m.Amount).
		Message(6, m.Lock).
		Int64(7, int64(m.Direction)).
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
			m.Amount = &coin.Coin{}
			err = d.Message(m.Amount)
		case 6:
			m.Lock = &lock.HashTimeLock{}
			err = d.Message(m.Lock)
		case 7:
			var n int64
			n, err = d.Int64()
			m.Direction = lock.Direction(n)
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

// ConfirmMsg releases an escrow to its recipient by revealing the preimage.
type ConfirmMsg struct {
	Metadata  *weave.Metadata
	ID        []byte
	Preimage  []byte
	Direction lock.Direction
	// Recipient, if set, must be the recipient of the escrow.
	Recipient weave.Address
	// FeeRecipient, if set, must be the currently configured fee
	// recipient.
	FeeRecipient weave.Address
}

func (ConfirmMsg) Path() string {
	return "htlc/confirm"
}

func (m *ConfirmMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	var errs error
	errs = errors.AppendField(errs, "ID", validateID(m.ID))
	if len(m.Preimage) != lock.PreimageSize {
		errs = errors.AppendField(errs, "Preimage", errors.ErrInput)
	}
	if err := m.Direction.Validate(); err != nil {
		errs = errors.AppendField(errs, "Direction", ErrInvalidDirection)
	}
	errs = errors.AppendField(errs, "Recipient", x.ValidateOptionalAddress(m.Recipient))
	errs = errors.AppendField(errs, "FeeRecipient", x.ValidateOptionalAddress(m.FeeRecipient))
	return errs
}

func (m *ConfirmMsg) Marshal() ([]byte, error) {
	return codec.NewEncoder().
		Message(1, m.Metadata).
		Bytes(2, m.ID).
		Bytes(3, m.Preimage).
		Int64(4, int64(m.Direction)).
		Bytes(5, m.Recipient).
		Bytes(6, m.FeeRecipient).
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
			m.Preimage, err = d.Bytes()
		case 4:
			var n int64
			n, err = d.Int64()
			m.Direction = lock.Direction(n)
		case 5:
			m.Recipient, err = d.Bytes()
		case 6:
			m.FeeRecipient, err = d.Bytes()
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, "confirm msg")
		}
	}
}

// RefundMsg returns the whole deposit of an expired escrow to the
// depositor. Anyone can submit it.
type RefundMsg struct {
	Metadata  *weave.Metadata
	ID        []byte
	Direction lock.Direction
}

func (RefundMsg) Path() string {
	return "htlc/refund"
}

func (m *RefundMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	var errs error
	errs = errors.AppendField(errs, "ID", validateID(m.ID))
	if err := m.Direction.Validate(); err != nil {
		errs = errors.AppendField(errs, "Direction", ErrInvalidDirection)
	}
	return errs
}

func (m *RefundMsg) Marshal() ([]byte, error) {
	return codec.NewEncoder().
		Message(1, m.Metadata).
		Bytes(2, m.ID).
		Int64(3, int64(m.Direction)).
		Result()
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
		case 3:
			var n int64
			n, err = d.Int64()
			m.Direction = lock.Direction(n)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, "refund msg")
		}
	}
}

// UpdateConfigurationMsg changes the configuration of this extension. Only
// non zero fields of the patch are applied.
type UpdateConfigurationMsg struct {
	Metadata *weave.Metadata
	Patch    *Configuration
}

func (UpdateConfigurationMsg) Path() string {
	return "htlc/update_configuration"
}

func (m *UpdateConfigurationMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if m.Patch == nil {
		return errors.Field("Patch", errors.ErrEmpty, "required")
	}
	return nil
}

func (m *UpdateConfigurationMsg) Marshal() ([]byte, error) {
	return codec.NewEncoder().Message(1, m.Metadata).Message(2, m.Patch).Result()
}

func (m *UpdateConfigurationMsg) Unmarshal(raw []byte) error {
	*m = UpdateConfigurationMsg{}
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
			m.Patch = &Configuration{}
			err = d.Message(m.Patch)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, "update configuration msg")
		}
	}
}
