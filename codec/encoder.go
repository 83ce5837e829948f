package codec

import (
	"reflect"

	"github.com/gogo/protobuf/proto"
)

// Marshaler is implemented by every type that can be serialized into the
// protobuf wire format.
type Marshaler interface {
	Marshal() ([]byte, error)
}

// Encoder builds a protobuf message field by field.
type Encoder struct {
	buf []byte
	err error
}

// NewEncoder returns an empty encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

func (e *Encoder) key(field int, wire int) {
	e.buf = append(e.buf, proto.EncodeVarint(uint64(field)<<3|uint64(wire))...)
}

// Uint64 writes a varint field. Zero value is omitted.
func (e *Encoder) Uint64(field int, v uint64) *Encoder {
	if v == 0 {
		return e
	}
	e.key(field, proto.WireVarint)
	e.buf = append(e.buf, proto.EncodeVarint(v)...)
	return e
}

// Int64 writes a varint field using two's complement, as proto int64 does.
func (e *Encoder) Int64(field int, v int64) *Encoder {
	return e.Uint64(field, uint64(v))
}

// Uint32 writes a varint field.
func (e *Encoder) Uint32(field int, v uint32) *Encoder {
	return e.Uint64(field, uint64(v))
}

// Bool writes a boolean field. False is omitted.
func (e *Encoder) Bool(field int, v bool) *Encoder {
	if !v {
		return e
	}
	return e.Uint64(field, 1)
}

// Bytes writes a length delimited field. Empty value is omitted.
func (e *Encoder) Bytes(field int, v []byte) *Encoder {
	if len(v) == 0 {
		return e
	}
	e.key(field, proto.WireBytes)
	e.buf = append(e.buf, proto.EncodeVarint(uint64(len(v)))...)
	e.buf = append(e.buf, v...)
	return e
}

// String writes a length delimited field. Empty value is omitted.
func (e *Encoder) String(field int, s string) *Encoder {
	return e.Bytes(field, []byte(s))
}

// Message writes an embedded message. Nil message, including a nil pointer
// of any type, is omitted. An embedded message that serializes to zero bytes
// is still written so that the presence of a oneof member is preserved.
func (e *Encoder) Message(field int, m Marshaler) *Encoder {
	if isNil(m) || e.err != nil {
		return e
	}
	raw, err := m.Marshal()
	if err != nil {
		e.err = err
		return e
	}
	e.key(field, proto.WireBytes)
	e.buf = append(e.buf, proto.EncodeVarint(uint64(len(raw)))...)
	e.buf = append(e.buf, raw...)
	return e
}

// Result returns the serialized message or the first error that happened
// while encoding embedded messages.
func (e *Encoder) Result() ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.buf, nil
}

func isNil(m Marshaler) bool {
	if m == nil {
		return true
	}
	v := reflect.ValueOf(m)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
