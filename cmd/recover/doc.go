// Package main (cmd/recover) implements the trader-recover command, a
// one-time remediation for an interrupted on-chain update of a trader
// service's registry entry.
//
// The command validates the local service store (.trader_runner), clones a
// pinned checkout of the autonomy tool repository, and drives the tool
// through the four on-chain steps that complete the stuck update:
//
//	mint --update  - re-submit the service update for the stored service id
//	activate       - activate the updated service registration
//	register       - register the agent instance for the service
//	deploy         - redeploy the service, reusing the existing multisig
//
// Running the command with no flags reproduces the fixed remediation: all
// chain parameters are hardcoded for the Gnosis-chain registry deployment and
// everything else is read from the store. The store directory, work
// directory, and the first-run RPC endpoint and service id can be overridden
// with flags. The process exits 0 only when all four steps succeeded; any
// failure exits 1 with the tool's output.
package main
