package monitor

import "github.com/obridge/weave/errors"

// ErrNotAvailable is returned by a BlockSource when the requested height
// was not produced yet.
var ErrNotAvailable = errors.Register(600, "block not available")
