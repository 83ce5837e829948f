package x

import (
	"context"
	"testing"

	"github.com/obridge/weave"
)

func TestSignerAuth(t *testing.T) {
	alice := weave.NewCondition("sigs", "ed25519", []byte("alice"))
	bob := weave.NewCondition("sigs", "ed25519", []byte("bob"))
	carol := weave.NewCondition("sigs", "ed25519", []byte("carol"))

	ctx := WithSigners(context.Background(), alice)
	ctx = WithSigners(ctx, bob)

	var auth SignerAuth
	if got := len(auth.GetConditions(ctx)); got != 2 {
		t.Fatalf("want 2 signers, got %d", got)
	}
	if !HasAllAddresses(ctx, auth, alice.Address(), bob.Address()) {
		t.Fatal("alice and bob must be signers")
	}
	if HasAllAddresses(ctx, auth, alice.Address(), carol.Address()) {
		t.Fatal("carol is not a signer")
	}
	if !MainSigner(ctx, auth).Equals(alice) {
		t.Fatal("alice must be the main signer")
	}
	if auth.HasAddress(context.Background(), alice.Address()) {
		t.Fatal("no signers in an empty context")
	}
}

func TestAnyAddress(t *testing.T) {
	a := weave.NewCondition("sigs", "ed25519", []byte("a")).Address()
	if got := AnyAddress(nil, a); !got.Equals(a) {
		t.Fatalf("unexpected address %s", got)
	}
	if got := AnyAddress(); got != nil {
		t.Fatalf("unexpected address %s", got)
	}
	if err := ValidateOptionalAddress(nil); err != nil {
		t.Fatalf("empty optional address: %s", err)
	}
	if err := RequireAddress(nil); err == nil {
		t.Fatal("empty address must be rejected")
	}
}
