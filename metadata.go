package weave

import (
	"io"

	"github.com/obridge/weave/codec"
	"github.com/obridge/weave/errors"
)

// Metadata is included in every model and message. It carries the schema
// version the entity was created with.
type Metadata struct {
	Schema uint32 `json:"schema"`
}

// Validate returns an error if the metadata is not valid. Only schema
// version 1 is currently supported.
func (m *Metadata) Validate() error {
	if m == nil {
		return errors.Wrap(errors.ErrMetadata, "missing metadata")
	}
	if m.Schema != 1 {
		return errors.Wrapf(errors.ErrMetadata, "unsupported schema version %d", m.Schema)
	}
	return nil
}

// Copy returns a copy of this object.
func (m *Metadata) Copy() *Metadata {
	if m == nil {
		return nil
	}
	cpy := *m
	return &cpy
}

func (m *Metadata) Marshal() ([]byte, error) {
	return codec.NewEncoder().Uint32(1, m.Schema).Result()
}

func (m *Metadata) Unmarshal(raw []byte) error {
	d := codec.NewDecoder(raw)
	for {
		field, _, err := d.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch field {
		case 1:
			m.Schema, err = d.Uint32()
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, "metadata")
		}
	}
}
