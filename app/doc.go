/*
Package app assembles extensions into a ledger.

A Router dispatches operations to handlers by message path and
ChainDecorators wraps it with cross cutting concerns. The Ledger owns the
store and executes one operation at a time: every operation runs inside a
cache wrap which is written back only when the handler succeeds.
*/
package app
