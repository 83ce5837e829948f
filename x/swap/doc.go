/*
Package swap implements atomic swaps of two assets held on the same ledger.

The initiator prepares a swap by depositing the source amount. The
counterparty confirms it before the deadline by paying the destination amount,
which settles both legs in a single operation. An unconfirmed swap can be
refunded once the confirm deadline passed.

A swap can be prepared without naming the counterparty. The first signer to
confirm it is then bound as the counterparty.
*/
package swap
