package weavetest

import (
	"context"

	"github.com/obridge/weave"
)

// Auth authenticates a fixed set of conditions, no matter the context.
// Signer is a shortcut for a single condition; it is used together with
// Signers.
type Auth struct {
	Signer  weave.Condition
	Signers []weave.Condition
}

func (a *Auth) GetConditions(weave.Context) []weave.Condition {
	if a.Signer == nil {
		return a.Signers
	}
	conds := make([]weave.Condition, 0, len(a.Signers)+1)
	return append(append(conds, a.Signers...), a.Signer)
}

func (a *Auth) HasAddress(ctx weave.Context, addr weave.Address) bool {
	return signedBy(a.GetConditions(ctx), addr)
}

// CtxAuth authenticates the conditions stored in the context with
// SetConditions. Instances with different keys do not see each other's
// conditions.
type CtxAuth struct {
	Key string
}

type ctxAuthKey string

func (a *CtxAuth) SetConditions(ctx weave.Context, conds ...weave.Condition) weave.Context {
	return context.WithValue(ctx, ctxAuthKey(a.Key), conds)
}

func (a *CtxAuth) GetConditions(ctx weave.Context) []weave.Condition {
	conds, _ := ctx.Value(ctxAuthKey(a.Key)).([]weave.Condition)
	return conds
}

func (a *CtxAuth) HasAddress(ctx weave.Context, addr weave.Address) bool {
	return signedBy(a.GetConditions(ctx), addr)
}

func signedBy(conds []weave.Condition, addr weave.Address) bool {
	for _, c := range conds {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}
