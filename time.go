package weave

import (
	"encoding/json"
	"time"

	"github.com/obridge/weave/errors"
)

// UnixTime is a point in time as POSIX seconds. Escrow deadlines, refund
// times and block times all use it.
type UnixTime int64

// AsUnixTime truncates t to seconds.
func AsUnixTime(t time.Time) UnixTime {
	return UnixTime(t.Unix())
}

// Time returns the same moment as time.Time.
func (t UnixTime) Time() time.Time {
	return time.Unix(int64(t), 0)
}

// Add shifts the time by d, truncated to whole seconds.
func (t UnixTime) Add(d time.Duration) UnixTime {
	return t + UnixTime(d/time.Second)
}

// UnmarshalJSON accepts either a number of seconds or an RFC 3339 string.
// The string form is handy in genesis files.
func (t *UnixTime) UnmarshalJSON(raw []byte) error {
	var secs int64
	if err := json.Unmarshal(raw, &secs); err != nil {
		var stamp time.Time
		if err := json.Unmarshal(raw, &stamp); err != nil {
			return errors.Wrap(errors.ErrInput, "invalid time format")
		}
		secs = stamp.Unix()
	}
	if secs < 0 {
		return errors.Wrap(errors.ErrInput, "time before epoch")
	}
	*t = UnixTime(secs)
	return nil
}

func (t UnixTime) String() string {
	return t.Time().UTC().Format(time.RFC3339)
}
