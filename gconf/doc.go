/*
Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each extension owns a single configuration entity, stored under a key derived
from the extension name. A configuration can be loaded from the genesis file
and later updated by its owner using a patch message.

Not being able to read the configuration of an extension is a critical
condition. Handlers must fail the operation instead of falling back to a
default value.
*/
package gconf
