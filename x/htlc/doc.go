/*
Package htlc implements hash time locked escrows, used to exchange value with
a counterparty on another venue.

A depositor prepares an escrow by locking funds under a hash. The recipient
receives the funds, minus the fee frozen at prepare time, when the preimage of
the hash is revealed within the confirm window. If nobody confirms, the
depositor can take the whole deposit back once the earliest refund time is
reached.

Funds of each escrow are held by an address derived from the escrow ID. There
is no way to sign for that address, only this extension can move its funds.
*/
package htlc
