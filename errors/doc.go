/*
Package errors implements the error types used across the escrow engine.

Every error returned by a handler must wrap one of the root errors declared
with Register. The root error carries a numeric code that is exported to the
client, the wrapping layers carry the context.

	if !h.auth.HasAddress(ctx, e.From) {
		return errors.Wrap(errors.ErrUnauthorized, "depositor signature required")
	}

Use Is to test the kind of an error, no matter how many times it was wrapped:

	if errors.ErrNotFound.Is(err) {
		...
	}

The first wrap attaches a stack trace. Format an error with %+v to print it.
*/
package errors
