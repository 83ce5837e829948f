/*
Package weavetest provides mocks and helpers for testing handlers,
decorators and anything else that depends on the weave interfaces.
*/
package weavetest
