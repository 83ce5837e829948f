/*
Package x contains the helpers shared by the extensions implementing the
escrow engine (settings, htlc, swap, cash).

Authentication is abstracted behind the Authenticator interface. The ledger
attaches the conditions that authorized an operation to the context with
WithSigners and SignerAuth exposes them to the handlers.
*/
package x
