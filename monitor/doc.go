/*
Package monitor follows the ledger block by block and reports escrows that
carry extra data describing their counterparty leg.

A Poller asks a BlockSource for consecutive heights. When a height is not
produced yet the source returns ErrNotAvailable and the same height is
requested again after a fixed delay. Any other error stops the poller.
Journal is a BlockSource built from the operations delivered by the local
ledger.
*/
package monitor
