package lock

import (
	"encoding/json"
	"strings"

	"github.com/obridge/weave/errors"
)

// Direction tells which leg of a cross venue exchange an escrow is.
type Direction int32

const (
	// Out is the leg prepared first, by the party initiating the exchange.
	Out Direction = 1
	// In is the leg prepared in response, after the outbound leg is locked.
	In Direction = 2
)

// Validate returns an error if the direction is not one of the declared
// values.
func (d Direction) Validate() error {
	switch d {
	case Out, In:
		return nil
	}
	return errors.Wrapf(errors.ErrInput, "invalid direction %d", d)
}

func (d Direction) String() string {
	switch d {
	case Out:
		return "out"
	case In:
		return "in"
	}
	return "unknown"
}

func (d Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Direction) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(errors.ErrInput, "direction must be a string")
	}
	switch strings.ToLower(s) {
	case "out":
		*d = Out
	case "in":
		*d = In
	default:
		return errors.Wrapf(errors.ErrInput, "unknown direction %q", s)
	}
	return nil
}
