// Package recovery drives the one-time remediation of an interrupted on-chain
// service-registry update.
//
// The orchestrator is a sequential state machine:
//
//	Init -> Validated -> Prepared -> Updating -> Activating -> Registering -> Deploying -> Done
//
// with Failed reachable from any step after Prepared. Init validates or
// bootstraps the local store, Prepared sets up a pinned checkout of the
// autonomy tool repository, and the four remaining steps invoke the tool's
// mint --update, activate, register and deploy subcommands against the
// service registry. The tool's process exit code is the sole success signal
// for each step; there is no retry and no rollback of on-chain state.
//
// The agent and operator private keys are written to two transient plaintext
// files for the tool to read. These are removed on every exit path, success
// or failure, so a failed run never leaves key material next to the checkout.
//
// External commands are issued through runner.CommandRunner, so the whole
// sequence can be tested against runner.MockRunner without touching git,
// poetry or the chain.
package recovery
