package lock

import "github.com/obridge/weave/errors"

var (
	ErrDeadlineExceeded  = errors.Register(300, "deadline exceeded")
	ErrNotRefundable     = errors.Register(301, "not refundable yet")
	ErrPreimageMismatch  = errors.Register(302, "preimage mismatch")
	ErrInvalidRefundTime = errors.Register(303, "invalid refund time")
)
