package lock

import (
	"encoding/json"
	"io"

	"github.com/obridge/weave/codec"
	"github.com/obridge/weave/errors"
)

// Descriptor wraps a Lock for serialization. Exactly one variant is
// encoded, using a distinct field number per lock kind.
type Descriptor struct {
	Lock Lock
}

func (d *Descriptor) Validate() error {
	if d.Lock == nil {
		return errors.Wrap(errors.ErrEmpty, "lock")
	}
	return d.Lock.Validate()
}

func (d *Descriptor) Marshal() ([]byte, error) {
	e := codec.NewEncoder()
	switch l := d.Lock.(type) {
	case *HashTimeLock:
		e.Message(1, l)
	case *DeadlineLock:
		e.Message(2, l)
	case nil:
	default:
		return nil, errors.Wrapf(errors.ErrType, "unknown lock %T", l)
	}
	return e.Result()
}

func (d *Descriptor) Unmarshal(raw []byte) error {
	*d = Descriptor{}
	dec := codec.NewDecoder(raw)
	for {
		field, _, err := dec.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch field {
		case 1:
			var l HashTimeLock
			err = dec.Message(&l)
			d.Lock = &l
		case 2:
			var l DeadlineLock
			err = dec.Message(&l)
			d.Lock = &l
		default:
			err = dec.Skip()
		}
		if err != nil {
			return errors.Wrap(err, "lock")
		}
	}
}

type jsonDescriptor struct {
	HashTime *HashTimeLock `json:"hash_time,omitempty"`
	Deadline *DeadlineLock `json:"deadline,omitempty"`
}

func (d Descriptor) MarshalJSON() ([]byte, error) {
	var j jsonDescriptor
	switch l := d.Lock.(type) {
	case *HashTimeLock:
		j.HashTime = l
	case *DeadlineLock:
		j.Deadline = l
	}
	return json.Marshal(j)
}

func (d *Descriptor) UnmarshalJSON(raw []byte) error {
	var j jsonDescriptor
	if err := json.Unmarshal(raw, &j); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	switch {
	case j.HashTime != nil && j.Deadline != nil:
		return errors.Wrap(errors.ErrInput, "only one lock kind can be set")
	case j.HashTime != nil:
		d.Lock = j.HashTime
	case j.Deadline != nil:
		d.Lock = j.Deadline
	default:
		d.Lock = nil
	}
	return nil
}
