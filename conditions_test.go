package weave

import (
	"encoding/json"
	"testing"

	"github.com/obridge/weave/errors"
)

func TestConditionParse(t *testing.T) {
	cond := NewCondition("htlc", "uuid", []byte{0xca, 0xfe})
	ext, typ, data, err := cond.Parse()
	if err != nil {
		t.Fatalf("parse: %s", err)
	}
	if ext != "htlc" || typ != "uuid" || string(data) != "\xca\xfe" {
		t.Fatalf("unexpected result: %q %q %X", ext, typ, data)
	}
	if got := cond.String(); got != "htlc/uuid/CAFE" {
		t.Fatalf("unexpected string %q", got)
	}
	if err := Condition("no-slashes").Validate(); !errors.ErrInput.Is(err) {
		t.Fatalf("want input error, got %v", err)
	}
}

func TestConditionAddressIsDeterministic(t *testing.T) {
	a := NewCondition("swap", "uuid", []byte("abc")).Address()
	b := NewCondition("swap", "uuid", []byte("abc")).Address()
	c := NewCondition("htlc", "uuid", []byte("abc")).Address()
	if !a.Equals(b) {
		t.Fatal("same condition must produce the same address")
	}
	if a.Equals(c) {
		t.Fatal("different conditions must produce different addresses")
	}
	if err := a.Validate(); err != nil {
		t.Fatalf("invalid address: %s", err)
	}
}

func TestParseAddress(t *testing.T) {
	addr := NewCondition("sigs", "ed25519", []byte("alice")).Address()
	bech, err := addr.Bech32()
	if err != nil {
		t.Fatalf("bech32: %s", err)
	}

	cases := map[string]struct {
		input   string
		want    Address
		wantErr *errors.Error
	}{
		"default hex": {
			input: addr.String(),
			want:  addr,
		},
		"explicit hex": {
			input: "hex:" + addr.String(),
			want:  addr,
		},
		"condition": {
			input: "cond:sigs/ed25519/" + "616C696365",
			want:  addr,
		},
		"bech32": {
			input: bech,
			want:  addr,
		},
		"empty": {
			input: "",
			want:  nil,
		},
		"short hex": {
			input:   "CAFE",
			wantErr: errors.ErrInput,
		},
		"unknown format": {
			input:   "base64:AAAA",
			wantErr: errors.ErrType,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := ParseAddress(tc.input)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equals(tc.want) {
				t.Fatalf("want %s, got %s", tc.want, got)
			}
		})
	}
}

func TestAddressJSON(t *testing.T) {
	addr := NewCondition("sigs", "ed25519", []byte("bob")).Address()
	raw, err := json.Marshal(addr)
	if err != nil {
		t.Fatalf("marshal: %s", err)
	}
	var got Address
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %s", err)
	}
	if !got.Equals(addr) {
		t.Fatalf("want %s, got %s", addr, got)
	}
}

func TestEmptyAddressJSON(t *testing.T) {
	raw, err := json.Marshal(struct {
		FeeRecipient Address `json:"fee_recipient"`
	}{})
	if err != nil {
		t.Fatalf("marshal: %s", err)
	}
	if want := `{"fee_recipient":""}`; string(raw) != want {
		t.Fatalf("want %s, got %s", want, raw)
	}
	var got struct {
		FeeRecipient Address `json:"fee_recipient"`
	}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %s", err)
	}
	if got.FeeRecipient != nil {
		t.Fatalf("want nil address, got %s", got.FeeRecipient)
	}
}

func TestConditionJSON(t *testing.T) {
	cond := NewCondition("sigs", "ed25519", []byte("carol"))
	raw, err := json.Marshal(cond)
	if err != nil {
		t.Fatalf("marshal: %s", err)
	}
	if want := `"sigs/ed25519/6361726F6C"`; string(raw) != want {
		t.Fatalf("want %s, got %s", want, raw)
	}
	var got Condition
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %s", err)
	}
	if !got.Equals(cond) {
		t.Fatalf("want %s, got %s", cond, got)
	}
	if err := json.Unmarshal([]byte(`"not a condition"`), &got); !errors.ErrInput.Is(err) {
		t.Fatalf("unexpected error: %v", err)
	}
}
