// Package main (cmd/report) implements the trader-report command, a read-only
// status report for the managed trader service.
//
// The command reads the local store, connects to the stored RPC endpoint, and
// prints the service's registry entry (state, bond parameters, multisig)
// together with the native-token balances of the agent, operator and service
// multisig accounts as JSON. It sends no transactions and never writes key
// material anywhere; it is safe to run at any time, including while the
// service is mid-recovery.
package main
