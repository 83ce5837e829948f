/*
Package settings implements the governance registry of the escrow engines.

The registry is a singleton holding the administrator, the fee recipient, the
fee rate expressed in basis points and an optional storage reservation charged
for every escrow. Per asset fee caps are stored separately, keyed by ticker.

Fees are computed once, when an escrow is prepared, using Fee.
*/
package settings
