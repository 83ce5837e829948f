package htlc

import "github.com/obridge/weave/errors"

var ErrInvalidDirection = errors.Register(500, "invalid direction")
