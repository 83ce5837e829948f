/*
Package coin defines the value moved by the ledger.

A Coin is an amount of base units of a single asset identified by its
ticker. Amounts are unsigned and all arithmetic fails instead of silently
overflowing.
*/
package coin
