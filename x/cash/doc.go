/*
Package cash keeps the balances of all accounts, including the custody
accounts of open escrows.

The Controller is the only way other extensions move value. Every movement
is a debit of the source and a credit of the destination executed within the
same store, so it is undone together with the operation that requested it.
*/
package cash
