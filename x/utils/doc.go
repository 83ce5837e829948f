/*
Package utils provides decorators shared by all extensions: panic recovery,
logging of every executed operation and prometheus metrics.
*/
package utils
