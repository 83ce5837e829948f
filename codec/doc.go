/*
Package codec provides the protobuf wire format primitives used by all models
and messages. Each type declares its schema in a codec.proto file next to the
Go code and implements Marshal and Unmarshal using an Encoder and a Decoder.

Encoding follows proto3 rules: zero values are not written and unknown fields
are skipped when decoding.
*/
package codec
