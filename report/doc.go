// Package report assembles a read-only status report for a managed service:
// agent and operator balances plus the service registry entry (state,
// multisig, bond parameters) for the stored service id.
//
// The registry is read through a minimal hand-written ABI fragment rather
// than generated bindings; a single view call is all that is needed. Chain
// access goes through the ChainBackend interface so the reporter can be
// tested without an RPC endpoint.
package report
