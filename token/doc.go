/*
Package token implements entry points of the storage-metered fungible token.

Accounts must be registered before they can hold tokens. Registration is paid
in native currency attached to StorageDeposit: the exact cost of the account
storage is escrowed and any excess is returned to the payer. An account whose
balance drops to zero after a transfer is removed automatically, and its
escrow goes back to the registrant.

Every function takes the host.Runtime of the current call. Any returned error
means the call must be reverted as a whole.

# Notifications

Transfer notification is emitted on every transfer and on the initial mint
(with Null sender).

	Transfer:
	  - name: from
	    type: ByteArray
	  - name: to
	    type: ByteArray
	  - name: amount
	    type: Integer
	  - name: memo
	    type: ByteArray

Register notification is emitted when an account is registered.

	Register:
	  - name: account
	    type: ByteArray
	  - name: registrant
	    type: ByteArray
	  - name: escrow
	    type: Integer

Unregister notification is emitted when an account is removed.

	Unregister:
	  - name: account
	    type: ByteArray
	  - name: registrant
	    type: ByteArray
	  - name: refund
	    type: Integer
*/
package token
