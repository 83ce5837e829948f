package x

import (
	"context"

	"github.com/obridge/weave"
)

// Authenticator tells which conditions authorized the current operation.
// Handlers receive it in their constructor, so that tests can replace the
// signers carried by the ledger.
type Authenticator interface {
	// GetConditions returns all conditions that signed the operation. The
	// first one is the main signer.
	GetConditions(weave.Context) []weave.Condition
	// HasAddress returns true if any condition controls the address.
	HasAddress(weave.Context, weave.Address) bool
}

// MainSigner returns the condition that submitted the operation, or nil
// when the operation is not signed.
func MainSigner(ctx weave.Context, auth Authenticator) weave.Condition {
	signers := auth.GetConditions(ctx)
	if len(signers) == 0 {
		return nil
	}
	return signers[0]
}

// HasAllAddresses returns true if all elements in required are
// also in context.
func HasAllAddresses(ctx weave.Context, auth Authenticator, required ...weave.Address) bool {
	for _, r := range required {
		if !auth.HasAddress(ctx, r) {
			return false
		}
	}
	return true
}

type contextKey int

const contextKeySigners contextKey = iota

// WithSigners returns a context carrying the conditions that authorized
// the current operation. Signers are accumulated when called more than
// once.
func WithSigners(ctx weave.Context, signers ...weave.Condition) weave.Context {
	prev, _ := ctx.Value(contextKeySigners).([]weave.Condition)
	all := append(append([]weave.Condition{}, prev...), signers...)
	return context.WithValue(ctx, contextKeySigners, all)
}

// SignerAuth authenticates the conditions attached to the context with
// WithSigners.
type SignerAuth struct{}

var _ Authenticator = SignerAuth{}

// GetConditions returns all signers attached to the context.
func (SignerAuth) GetConditions(ctx weave.Context) []weave.Condition {
	signers, _ := ctx.Value(contextKeySigners).([]weave.Condition)
	return signers
}

// HasAddress returns true if any signer controls given address.
func (a SignerAuth) HasAddress(ctx weave.Context, addr weave.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}
