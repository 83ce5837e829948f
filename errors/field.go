package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Field attaches the name of the model or message attribute that failed
// validation to err. Use Go names and dot notation for nested attributes,
// for example Lock.Hash or Amount.Ticker. Nil err results in nil.
func Field(name string, err error, description string, args ...interface{}) error {
	if isNilErr(err) {
		return nil
	}
	if len(args) != 0 {
		description = fmt.Sprintf(description, args...)
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	return &fieldError{name: name, desc: description, cause: err}
}

// AppendField adds a field error to errs. Nothing is added when fieldErr is
// nil.
func AppendField(errs error, name string, fieldErr error) error {
	return Append(errs, Field(name, fieldErr, ""))
}

type fieldError struct {
	name  string
	desc  string
	cause error
}

func (e *fieldError) Error() string {
	msg := fmt.Sprintf("field %q: ", e.name)
	if e.desc != "" {
		msg += e.desc + ": "
	}
	return msg + e.cause.Error()
}

// Cause implements the causer interface.
func (e *fieldError) Cause() error {
	return e.cause
}

// FieldErrors returns all errors collected in err that were created for the
// given field name.
func FieldErrors(err error, name string) []error {
	var found []error
	walk(err, func(e error) bool {
		if f, ok := e.(*fieldError); ok && f.name == name {
			found = append(found, e)
			return false
		}
		return true
	})
	return found
}

// walk calls visit for err and for every error it wraps or collects, depth
// first. Descending stops when visit returns false.
func walk(err error, visit func(error) bool) {
	for !isNilErr(err) {
		if !visit(err) {
			return
		}
		if u, ok := err.(unpacker); ok {
			for _, e := range u.Unpack() {
				walk(e, visit)
			}
			return
		}
		c, ok := err.(causer)
		if !ok {
			return
		}
		err = c.Cause()
	}
}
