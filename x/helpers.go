package x

import (
	"github.com/obridge/weave"
	"github.com/obridge/weave/errors"
)

// AnyAddress returns the first address that is not empty. It is used to
// resolve optional message fields that default to the signer.
func AnyAddress(addrs ...weave.Address) weave.Address {
	for _, a := range addrs {
		if len(a) != 0 {
			return a
		}
	}
	return nil
}

// ValidateOptionalAddress returns an error if given address is set and
// not valid.
func ValidateOptionalAddress(a weave.Address) error {
	if len(a) == 0 {
		return nil
	}
	return a.Validate()
}

// RequireAddress returns an error if given address is empty or not valid.
func RequireAddress(a weave.Address) error {
	if len(a) == 0 {
		return errors.ErrEmpty
	}
	return a.Validate()
}
