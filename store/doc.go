/*
Package store provides the in-memory key value storage used by the ledger.

MemStore keeps the committed state in a btree. CacheWrap layers another
btree on top of any store: writes are kept aside until Write flushes them to
the parent, Discard drops them. The ledger runs every operation inside a
cache wrap so that a failed operation leaves no trace.
*/
package store
