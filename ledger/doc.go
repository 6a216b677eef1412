/*
Package ledger implements accounting core of the storage-metered token.

Every registered account is a single storage item holding its token balance
together with identity of the registrant who paid for the item storage and
the escrowed amount of native currency. An account exists in the ledger iff
its item exists, so balance and registration can never be observed apart.

Ledger keeps total supply of the token and updates it on every deposit and
withdrawal, at any moment it equals the sum of all account balances.

Ledger does not move native currency. Operations that release escrow return
the refund data, and the caller is responsible for the transfer.
*/
package ledger
