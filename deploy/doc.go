/*
Package deploy provides deployment of the token ledger into the host
environment.

Deployment consists of two stages:
 1. ledger initialization with the total supply owned by the configured owner
 2. registration of the initial accounts paid by their sponsors

Both stages are skipped for the state which is already in place, so Deploy
may be safely repeated.
*/
package deploy
