package cash

import (
	"io"

	"github.com/obridge/weave"
	"github.com/obridge/weave/codec"
	"github.com/obridge/weave/coin"
	"github.com/obridge/weave/errors"
)

const (
	sendTxCost int64 = 100

	maxMemoSize int = 128
)

// SendMsg moves coins between two accounts.
type SendMsg struct {
	Metadata    *weave.Metadata
	Source      weave.Address
	Destination weave.Address
	Amount      *coin.Coin
	Memo        string
}

var _ weave.Msg = (*SendMsg)(nil)

// Path returns the routing path for this message
func (SendMsg) Path() string {
	return "cash/send"
}

// Validate makes sure that this is sensible
func (m *SendMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	var errs error
	if m.Amount == nil || !m.Amount.IsPositive() {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	} else {
		errs = errors.AppendField(errs, "Amount", m.Amount.Validate())
	}
	errs = errors.AppendField(errs, "Source", m.Source.Validate())
	errs = errors.AppendField(errs, "Destination", m.Destination.Validate())
	if len(m.Memo) > maxMemoSize {
		errs = errors.AppendField(errs, "Memo", errors.ErrInput)
	}
	return errs
}

func (m *SendMsg) Marshal() ([]byte, error) {
	return codec.NewEncoder().
		Message(1, m.Metadata).
		Bytes(2, m.Source).
		Bytes(3, m.Destination).
		Message(4, m.Amount).
		String(5, m.Memo).
		Result()
}

func (m *SendMsg) Unmarshal(raw []byte) error {
	*m = SendMsg{}
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
			m.Source, err = d.Bytes()
		case 3:
			m.Destination, err = d.Bytes()
		case 4:
			m.Amount = &coin.Coin{}
			err = d.Message(m.Amount)
		case 5:
			m.Memo, err = d.String()
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, "send msg")
		}
	}
}
