package htlc

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/obridge/weave/errors"
)

// ExtraData describes the counterparty leg of a cross venue exchange. It is
// attached to an escrow as an opaque memo and decoded by the monitor.
type ExtraData struct {
	DstChainID string `json:"dst_chain_id"`
	DstAddress string `json:"dst_address"`
	DstToken   string `json:"dst_token"`
	DstAmount  string `json:"dst_amount"`
	Requestor  string `json:"requestor"`
	LPID       string `json:"lp_id"`
	UserSign   string `json:"user_sign"`
	LPSign     string `json:"lp_sign"`
}

func (e *ExtraData) fields() []*string {
	return []*string{
		&e.DstChainID,
		&e.DstAddress,
		&e.DstToken,
		&e.DstAmount,
		&e.Requestor,
		&e.LPID,
		&e.UserSign,
		&e.LPSign,
	}
}

// EncodeExtraData serializes all fields in declaration order, each as a
// 32 bit little endian length followed by the UTF-8 bytes.
func EncodeExtraData(e *ExtraData) ([]byte, error) {
	var out []byte
	var size [4]byte
	for i, f := range e.fields() {
		if !utf8.ValidString(*f) {
			return nil, errors.Wrapf(errors.ErrInput, "field %d is not valid UTF-8", i)
		}
		binary.LittleEndian.PutUint32(size[:], uint32(len(*f)))
		out = append(out, size[:]...)
		out = append(out, *f...)
	}
	return out, nil
}

// DecodeExtraData parses a blob produced by EncodeExtraData. Truncated
// input, trailing bytes and invalid UTF-8 are rejected.
func DecodeExtraData(raw []byte) (*ExtraData, error) {
	var e ExtraData
	for i, f := range e.fields() {
		if len(raw) < 4 {
			return nil, errors.Wrapf(errors.ErrInput, "field %d: missing length", i)
		}
		n := binary.LittleEndian.Uint32(raw[:4])
		raw = raw[4:]
		if uint64(len(raw)) < uint64(n) {
			return nil, errors.Wrapf(errors.ErrInput, "field %d: want %d bytes, got %d", i, n, len(raw))
		}
		if !utf8.Valid(raw[:n]) {
			return nil, errors.Wrapf(errors.ErrInput, "field %d is not valid UTF-8", i)
		}
		*f = string(raw[:n])
		raw = raw[n:]
	}
	if len(raw) != 0 {
		return nil, errors.Wrapf(errors.ErrInput, "%d trailing bytes", len(raw))
	}
	return &e, nil
}
