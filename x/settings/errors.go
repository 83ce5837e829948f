package settings

import "github.com/obridge/weave/errors"

var (
	ErrInvalidFeeRate  = errors.Register(400, "invalid fee rate")
	ErrAccountMismatch = errors.Register(401, "account mismatch")
)
