package htlc

import (
	"encoding/json"
	"io"

	"github.com/obridge/weave"
	"github.com/obridge/weave/codec"
	"github.com/obridge/weave/errors"
	"github.com/obridge/weave/gconf"
)

const packageName = "htlc"

// ConfirmPolicy tells who is allowed to confirm an escrow.
type ConfirmPolicy int32

const (
	// ConfirmByAnyone accepts a confirmation from any signer that knows
	// the preimage, within the window of its role.
	ConfirmByAnyone ConfirmPolicy = 1
	// ConfirmByParties accepts a confirmation only from the depositor or
	// the recipient.
	ConfirmByParties ConfirmPolicy = 2
)

func (p ConfirmPolicy) MarshalJSON() ([]byte, error) {
	switch p {
	case ConfirmByAnyone:
		return json.Marshal("anyone")
	case ConfirmByParties:
		return json.Marshal("parties")
	}
	return json.Marshal(int32(p))
}

func (p *ConfirmPolicy) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(errors.ErrInput, "confirm policy must be a string")
	}
	switch s {
	case "anyone":
		*p = ConfirmByAnyone
	case "parties":
		*p = ConfirmByParties
	default:
		return errors.Wrapf(errors.ErrInput, "unknown confirm policy %q", s)
	}
	return nil
}

// Configuration is the deployment configuration of this extension.
type Configuration struct {
	Metadata      *weave.Metadata `json:"metadata"`
	Owner         weave.Address   `json:"owner"`
	ConfirmPolicy ConfirmPolicy   `json:"confirm_policy"`
}

var _ gconf.OwnedConfig = (*Configuration)(nil)

func (c *Configuration) GetOwner() weave.Address {
	return c.Owner
}

func (c *Configuration) Validate() error {
	if err := c.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	var errs error
	if err := c.Owner.Validate(); err != nil {
		errs = errors.AppendField(errs, "Owner", err)
	}
	switch c.ConfirmPolicy {
	case ConfirmByAnyone, ConfirmByParties:
	default:
		errs = errors.AppendField(errs, "ConfirmPolicy", errors.ErrInput)
	}
	return errs
}

func (c *Configuration) Marshal() ([]byte, error) {
	return codec.NewEncoder().
		Message(1, c.Metadata).
		Bytes(2, c.Owner).
		Int64(3, int64(c.ConfirmPolicy)).
		Result()
}

func (c *Configuration) Unmarshal(raw []byte) error {
	*c = Configuration{}
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
			c.Owner, err = d.Bytes()
		case 3:
			var n int64
			n, err = d.Int64()
			c.ConfirmPolicy = ConfirmPolicy(n)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, "configuration")
		}
	}
}

// loadConfirmPolicy returns the configured confirm policy. Without a
// configuration anyone is allowed to confirm.
func loadConfirmPolicy(db gconf.ReadStore) (ConfirmPolicy, error) {
	var conf Configuration
	switch err := gconf.Load(db, packageName, &conf); {
	case err == nil:
		return conf.ConfirmPolicy, nil
	case errors.ErrNotFound.Is(err):
		return ConfirmByAnyone, nil
	default:
		return 0, errors.Wrap(err, "load configuration")
	}
}
