/*
Package lock implements the conditions under which an escrow can be
prepared, confirmed and refunded.

There are two kinds of locks and a Lock is always exactly one of them:

HashTimeLock protects an escrow whose counterparty leg lives on another
venue. Funds are released to the recipient on presentation of a preimage of
the hash, within the confirm window, or returned to the depositor once the
earliest refund time is reached. With T the agreement time, E the expected
and D the tolerated duration of a single step:

	prepare  out: now <= T+E             in: now <= T+2E
	confirm  out, by depositor: now <= T+3E
	         out, by anyone else: T+3E+2D <= now <= T+3E+3D
	         in, by depositor: now <= T+3E+D
	         in, by anyone else: T+3E+D <= now <= T+3E+2D
	refund   now >= earliest refund time > T+3E+3D

DeadlineLock protects a swap settled in a single operation on one venue. The
swap can be prepared until T+S, confirmed until T+2S and refunded after
T+2S, with S the step time.
*/
package lock
