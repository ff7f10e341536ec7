// Package runner abstracts external process execution so the recovery state
// machine can be exercised in tests with a mock instead of real commands.
package runner
