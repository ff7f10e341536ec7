// Package chain holds the chain id and contract addresses the autonomy tool
// needs to reach the service registry on Gnosis chain.
package chain
