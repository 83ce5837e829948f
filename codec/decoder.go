package codec

import (
	"io"

	"github.com/gogo/protobuf/proto"
	"github.com/obridge/weave/errors"
)

// Unmarshaler is implemented by every type that can be deserialized from the
// protobuf wire format.
type Unmarshaler interface {
	Unmarshal([]byte) error
}

// Decoder reads a protobuf message field by field.
//
//	d := codec.NewDecoder(raw)
//	for {
//		field, wire, err := d.Next()
//		if err == io.EOF {
//			break
//		}
//		...
//	}
type Decoder struct {
	data []byte
	wire int
}

// NewDecoder returns a decoder reading given serialized message.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// Next reads the next field key. It returns io.EOF when the whole message was
// consumed.
func (d *Decoder) Next() (field int, wire int, err error) {
	if len(d.data) == 0 {
		return 0, 0, io.EOF
	}
	k, err := d.varint()
	if err != nil {
		return 0, 0, errors.Wrap(err, "field key")
	}
	field, wire = int(k>>3), int(k&7)
	if field <= 0 {
		return 0, 0, errors.Wrapf(errors.ErrInput, "illegal field number %d", field)
	}
	d.wire = wire
	return field, wire, nil
}

func (d *Decoder) varint() (uint64, error) {
	v, n := proto.DecodeVarint(d.data)
	if n == 0 {
		return 0, errors.Wrap(errors.ErrInput, "malformed varint")
	}
	d.data = d.data[n:]
	return v, nil
}

// Uint64 reads the value of a varint field.
func (d *Decoder) Uint64() (uint64, error) {
	if d.wire != proto.WireVarint {
		return 0, errors.Wrapf(errors.ErrInput, "wire type %d is not varint", d.wire)
	}
	return d.varint()
}

// Int64 reads the value of a varint field as a signed integer.
func (d *Decoder) Int64() (int64, error) {
	v, err := d.Uint64()
	return int64(v), err
}

// Uint32 reads the value of a varint field that must fit in 32 bits.
func (d *Decoder) Uint32() (uint32, error) {
	v, err := d.Uint64()
	if err != nil {
		return 0, err
	}
	if v > 1<<32-1 {
		return 0, errors.Wrap(errors.ErrOverflow, "uint32")
	}
	return uint32(v), nil
}

// Bool reads the value of a boolean field.
func (d *Decoder) Bool() (bool, error) {
	v, err := d.Uint64()
	return v != 0, err
}

// Bytes reads the value of a length delimited field. Returned slice is a copy.
func (d *Decoder) Bytes() ([]byte, error) {
	if d.wire != proto.WireBytes {
		return nil, errors.Wrapf(errors.ErrInput, "wire type %d is not length delimited", d.wire)
	}
	size, err := d.varint()
	if err != nil {
		return nil, err
	}
	if size > uint64(len(d.data)) {
		return nil, errors.Wrap(errors.ErrInput, "unexpected end of message")
	}
	out := make([]byte, size)
	copy(out, d.data[:size])
	d.data = d.data[size:]
	return out, nil
}

// String reads the value of a length delimited field as a string.
func (d *Decoder) String() (string, error) {
	b, err := d.Bytes()
	return string(b), err
}

// Message reads an embedded message into given destination.
func (d *Decoder) Message(dest Unmarshaler) error {
	b, err := d.Bytes()
	if err != nil {
		return err
	}
	return dest.Unmarshal(b)
}

// Skip discards the value of the current field.
func (d *Decoder) Skip() error {
	switch d.wire {
	case proto.WireVarint:
		_, err := d.varint()
		return err
	case proto.WireBytes:
		_, err := d.Bytes()
		return err
	case proto.WireFixed64:
		return d.drop(8)
	case proto.WireFixed32:
		return d.drop(4)
	default:
		return errors.Wrapf(errors.ErrInput, "unsupported wire type %d", d.wire)
	}
}

func (d *Decoder) drop(n int) error {
	if len(d.data) < n {
		return errors.Wrap(errors.ErrInput, "unexpected end of message")
	}
	d.data = d.data[n:]
	return nil
}
