/*
Package dump provides I/O operations for snapshots of the token ledger state.

Snapshot carries the ledger account storage together with native currency
balances of the host environment, so the ledger can be moved to another
environment or reproduced in tests. Snapshots are stored in the file system
using human-readable encoding.
*/
package dump
