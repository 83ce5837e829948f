package weave

import (
	"testing"

	"github.com/obridge/weave/errors"
)

type pingMsg struct {
	Valid bool
}

func (m *pingMsg) Path() string               { return "test/ping" }
func (m *pingMsg) Marshal() ([]byte, error)   { return nil, nil }
func (m *pingMsg) Unmarshal(raw []byte) error { return nil }
func (m *pingMsg) Validate() error {
	if !m.Valid {
		return errors.Wrap(errors.ErrMsg, "not valid")
	}
	return nil
}

type pingTx struct {
	msg Msg
}

func (tx pingTx) GetMsg() (Msg, error) { return tx.msg, nil }

func TestLoadMsg(t *testing.T) {
	var msg pingMsg
	if err := LoadMsg(pingTx{msg: &pingMsg{Valid: true}}, &msg); err != nil {
		t.Fatalf("load: %s", err)
	}
	if !msg.Valid {
		t.Fatal("message not assigned")
	}

	var ptr *pingMsg
	if err := LoadMsg(pingTx{msg: &pingMsg{Valid: true}}, &ptr); err != nil || ptr == nil {
		t.Fatalf("load into pointer: %v", err)
	}

	if err := LoadMsg(pingTx{msg: &pingMsg{}}, &msg); !errors.ErrMsg.Is(err) {
		t.Fatalf("want invalid message error, got %v", err)
	}

	var wrong Metadata
	if err := LoadMsg(pingTx{msg: &pingMsg{Valid: true}}, &wrong); !errors.ErrType.Is(err) {
		t.Fatalf("want type error, got %v", err)
	}

	if got := GetPath(pingTx{msg: &pingMsg{}}); got != "test/ping" {
		t.Fatalf("unexpected path %q", got)
	}
}

func TestMetadataValidate(t *testing.T) {
	var nilMeta *Metadata
	if err := nilMeta.Validate(); !errors.ErrMetadata.Is(err) {
		t.Fatalf("want metadata error, got %v", err)
	}
	if err := (&Metadata{Schema: 2}).Validate(); !errors.ErrMetadata.Is(err) {
		t.Fatalf("want metadata error, got %v", err)
	}
	if err := (&Metadata{Schema: 1}).Validate(); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
}
