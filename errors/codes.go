package errors

import "fmt"

const (
	// SuccessCode is reported for an operation that completed without an
	// error.
	SuccessCode uint32 = 0

	// Errors that were not created from a registered root error share the
	// internal code and are never described to a client.
	internalCode uint32 = 1
	internalDesc        = "internal error"
)

type coder interface {
	Code() uint32
}

// Code returns the code of the registered root error that err was created
// from. Causes are followed until an error providing a code is found.
func Code(err error) uint32 {
	if isNilErr(err) {
		return SuccessCode
	}
	for {
		if c, ok := err.(coder); ok {
			return c.Code()
		}
		c, ok := err.(causer)
		if !ok {
			return internalCode
		}
		err = c.Cause()
	}
}

// Info returns the code of err together with a description that can be
// exposed to a client. Unregistered errors and recovered panics are
// described generically unless debug is set, in which case the full
// description with the stack trace is returned.
func Info(err error, debug bool) (uint32, string) {
	code := Code(err)
	switch {
	case code == SuccessCode:
		return code, ""
	case debug:
		return code, fmt.Sprintf("%+v", err)
	case code == internalCode:
		return code, internalDesc
	case ErrPanic.Is(err):
		return code, ErrPanic.desc
	default:
		return code, err.Error()
	}
}

// IsInternal returns true if err does not come from a registered error or
// was recovered from a panic. Such errors are a fault of the process and
// not of the request.
func IsInternal(err error) bool {
	return Code(err) == internalCode || ErrPanic.Is(err)
}
