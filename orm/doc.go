/*
Package orm provides typed storage of models on top of a KVStore.

A ModelBucket stores models of a single type under a common key prefix. It
validates every model before writing it and maintains secondary indexes
declared with WithIndex.
*/
package orm
