// Package store manages the persistent directory holding a managed service
// instance's keys, RPC endpoint and on-chain identifiers.
//
// The store is created once with a disclaimer README and is expected to stay
// intact for the lifetime of the service. An existing store missing any
// required file is reported as corrupted and never partially recovered: the
// credentials files it holds are the only copy of the service keys.
package store
