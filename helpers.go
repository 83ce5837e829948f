package weave

import (
	"reflect"

	"github.com/obridge/weave/errors"
)

// assign sets the value of src into the destination. Destination must be a
// pointer to a value of the same type as src, or a pointer to a pointer of
// that type.
func assign(dest, src interface{}) error {
	if dest == nil {
		return errors.Wrap(errors.ErrHuman, "destination cannot be nil")
	}
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Ptr || dv.IsNil() {
		return errors.Wrap(errors.ErrType, "destination must be a non nil pointer")
	}
	sv := reflect.ValueOf(src)
	if !sv.IsValid() {
		return errors.Wrap(errors.ErrType, "source cannot be nil")
	}

	target := dv.Elem()
	switch {
	case sv.Type().AssignableTo(target.Type()):
		target.Set(sv)
	case sv.Kind() == reflect.Ptr && sv.Elem().Type().AssignableTo(target.Type()):
		target.Set(sv.Elem())
	default:
		return errors.Wrapf(errors.ErrType, "%T cannot be assigned to %T", src, dest)
	}
	return nil
}
