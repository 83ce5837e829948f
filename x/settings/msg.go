package settings

import (
	"io"

	"github.com/obridge/weave"
	"github.com/obridge/weave/codec"
	"github.com/obridge/weave/coin"
	"github.com/obridge/weave/errors"
	"github.com/obridge/weave/x"
)

var (
	_ weave.Msg = (*InitializeMsg)(nil)
	_ weave.Msg = (*ChangeAdminMsg)(nil)
	_ weave.Msg = (*SetFeeRecipientMsg)(nil)
	_ weave.Msg = (*SetFeeRateMsg)(nil)
	_ weave.Msg = (*SetMaxFeeForTokenMsg)(nil)
	_ weave.Msg = (*SetReservationMsg)(nil)
)

// InitializeMsg creates the registry. It can be processed only once.
type InitializeMsg struct {
	Metadata *weave.Metadata
	Admin    weave.Address
}

func (InitializeMsg) Path() string {
	return "settings/initialize"
}

func (m *InitializeMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	return errors.AppendField(nil, "Admin", x.RequireAddress(m.Admin))
}

func (m *InitializeMsg) Marshal() ([]byte, error) {
	return codec.NewEncoder().Message(1, m.Metadata).Bytes(2, m.Admin).Result()
}

func (m *InitializeMsg) Unmarshal(raw []byte) error {
	*m = InitializeMsg{}
	return unmarshalAddressMsg(raw, &m.Metadata, &m.Admin)
}

// ChangeAdminMsg transfers the registry administration. Both the current
// and the new administrator must sign it.
type ChangeAdminMsg struct {
	Metadata *weave.Metadata
	NewAdmin weave.Address
}

func (ChangeAdminMsg) Path() string {
	return "settings/change_admin"
}

func (m *ChangeAdminMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	return errors.AppendField(nil, "NewAdmin", x.RequireAddress(m.NewAdmin))
}

func (m *ChangeAdminMsg) Marshal() ([]byte, error) {
	return codec.NewEncoder().Message(1, m.Metadata).Bytes(2, m.NewAdmin).Result()
}

func (m *ChangeAdminMsg) Unmarshal(raw []byte) error {
	*m = ChangeAdminMsg{}
	return unmarshalAddressMsg(raw, &m.Metadata, &m.NewAdmin)
}

// SetFeeRecipientMsg changes the address collecting fees. Both the
// administrator and the new recipient must sign it.
type SetFeeRecipientMsg struct {
	Metadata     *weave.Metadata
	FeeRecipient weave.Address
}

func (SetFeeRecipientMsg) Path() string {
	return "settings/set_fee_recipient"
}

func (m *SetFeeRecipientMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	return errors.AppendField(nil, "FeeRecipient", x.RequireAddress(m.FeeRecipient))
}

func (m *SetFeeRecipientMsg) Marshal() ([]byte, error) {
	return codec.NewEncoder().Message(1, m.Metadata).Bytes(2, m.FeeRecipient).Result()
}

func (m *SetFeeRecipientMsg) Unmarshal(raw []byte) error {
	*m = SetFeeRecipientMsg{}
	return unmarshalAddressMsg(raw, &m.Metadata, &m.FeeRecipient)
}

// unmarshalAddressMsg decodes the layout shared by all messages carrying a
// single address.
func unmarshalAddressMsg(raw []byte, meta **weave.Metadata, addr *weave.Address) error {
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
			*meta = &weave.Metadata{}
			err = d.Message(*meta)
		case 2:
			*addr, err = d.Bytes()
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, "settings msg")
		}
	}
}

// SetFeeRateMsg changes the fee rate. Escrows that are already prepared
// keep the fee computed at the time they were created.
type SetFeeRateMsg struct {
	Metadata  *weave.Metadata
	FeeRateBp uint32
}

func (SetFeeRateMsg) Path() string {
	return "settings/set_fee_rate"
}

func (m *SetFeeRateMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if m.FeeRateBp > MaxFeeRate {
		return errors.Wrapf(ErrInvalidFeeRate, "%d basis points", m.FeeRateBp)
	}
	return nil
}

func (m *SetFeeRateMsg) Marshal() ([]byte, error) {
	return codec.NewEncoder().Message(1, m.Metadata).Uint32(2, m.FeeRateBp).Result()
}

func (m *SetFeeRateMsg) Unmarshal(raw []byte) error {
	*m = SetFeeRateMsg{}
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
			m.FeeRateBp, err = d.Uint32()
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, "set fee rate msg")
		}
	}
}

// SetMaxFeeForTokenMsg declares the fee cap of an asset. A zero MaxFee
// removes the cap.
type SetMaxFeeForTokenMsg struct {
	Metadata *weave.Metadata
	Ticker   string
	MaxFee   uint64
	// Payer is an optional address that must co-sign the change. It
	// defaults to the administrator.
	Payer weave.Address
}

func (SetMaxFeeForTokenMsg) Path() string {
	return "settings/set_max_fee_for_token"
}

func (m *SetMaxFeeForTokenMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	var errs error
	if !coin.IsTicker(m.Ticker) {
		errs = errors.AppendField(errs, "Ticker", errors.ErrCurrency)
	}
	errs = errors.AppendField(errs, "Payer", x.ValidateOptionalAddress(m.Payer))
	return errs
}

func (m *SetMaxFeeForTokenMsg) Marshal() ([]byte, error) {
	return codec.NewEncoder().
		Message(1, m.Metadata).
		String(2, m.Ticker).
		Uint64(3, m.MaxFee).
		Bytes(4, m.Payer).
		Result()
}

func (m *SetMaxFeeForTokenMsg) Unmarshal(raw []byte) error {
	*m = SetMaxFeeForTokenMsg{}
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
			m.Ticker, err = d.String()
		case 3:
			m.MaxFee, err = d.Uint64()
		case 4:
			m.Payer, err = d.Bytes()
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, "set max fee msg")
		}
	}
}

// SetReservationMsg changes the reservation charged for every new escrow.
// Nil or zero value removes the reservation.
type SetReservationMsg struct {
	Metadata    *weave.Metadata
	Reservation *coin.Coin
}

func (SetReservationMsg) Path() string {
	return "settings/set_reservation"
}

func (m *SetReservationMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if m.Reservation == nil || m.Reservation.IsZero() {
		return nil
	}
	return errors.AppendField(nil, "Reservation", m.Reservation.Validate())
}

func (m *SetReservationMsg) Marshal() ([]byte, error) {
	return codec.NewEncoder().Message(1, m.Metadata).Message(2, m.Reservation).Result()
}

func (m *SetReservationMsg) Unmarshal(raw []byte) error {
	*m = SetReservationMsg{}
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
			m.Reservation = &coin.Coin{}
			err = d.Message(m.Reservation)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, "set reservation msg")
		}
	}
}
