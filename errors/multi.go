package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
//
// If only one non nil error is provided, it is returned without being
// wrapped. The resulting error satisfies Is for every error it contains and
// reports the code of the first one.
func Append(errs ...error) error {
	var flat []error
	for _, e := range errs {
		if isNilErr(e) {
			continue
		}
		if m, ok := e.(multiErr); ok {
			flat = append(flat, m...)
		} else {
			flat = append(flat, e)
		}
	}

	switch len(flat) {
	case 0:
		return nil
	case 1:
		return flat[0]
	}
	return multiErr(flat)
}

// multiErr is a collection of errors. It must never be empty.
type multiErr []error

func (m multiErr) Error() string {
	points := make([]string, len(m))
	for i, err := range m {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s", len(m), strings.Join(points, "\n\t"))
}

// Code returns the code of the first error. Collected errors are
// processed in fail-fast order.
func (m multiErr) Code() uint32 {
	return Code(m[0])
}

// Unpack implements unpacker interface.
func (m multiErr) Unpack() []error {
	return []error(m)
}

type unpacker interface {
	Unpack() []error
}
