package chain

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

// Environment variable names consumed by the autonomy tool's custom-chain
// support. Config.Environ renders these for the child process.
const (
	EnvChainID                       = "CUSTOM_CHAIN_ID"
	EnvChainRPC                      = "CUSTOM_CHAIN_RPC"
	EnvServiceManager                = "CUSTOM_SERVICE_MANAGER_ADDRESS"
	EnvServiceRegistry               = "CUSTOM_SERVICE_REGISTRY_ADDRESS"
	EnvGnosisSafeProxyFactory        = "CUSTOM_GNOSIS_SAFE_PROXY_FACTORY_ADDRESS"
	EnvGnosisSafeSameAddressMultisig = "CUSTOM_GNOSIS_SAFE_SAME_ADDRESS_MULTISIG_ADDRESS"
	EnvMultisend                     = "CUSTOM_MULTISEND_ADDRESS"
)

// Config is the chain configuration handed to the autonomy tool. It is passed
// explicitly to the tool's process environment rather than exported into our
// own via os.Setenv.
type Config struct {
	ChainID uint64 `env:"CUSTOM_CHAIN_ID"`
	RPCURL  string `env:"CUSTOM_CHAIN_RPC"`

	ServiceManager                string `env:"CUSTOM_SERVICE_MANAGER_ADDRESS"`
	ServiceRegistry               string `env:"CUSTOM_SERVICE_REGISTRY_ADDRESS"`
	GnosisSafeProxyFactory        string `env:"CUSTOM_GNOSIS_SAFE_PROXY_FACTORY_ADDRESS"`
	GnosisSafeSameAddressMultisig string `env:"CUSTOM_GNOSIS_SAFE_SAME_ADDRESS_MULTISIG_ADDRESS"`
	Multisend                     string `env:"CUSTOM_MULTISEND_ADDRESS"`
}

// DefaultGnosis returns the Gnosis-chain deployment of the service registry
// contracts. The RPC URL is not part of the defaults; it comes from the store.
func DefaultGnosis() Config {
	return Config{
		ChainID:                       100,
		ServiceManager:                "0x04b0007b2aFb398015B76e5f22993a1fddF83644",
		ServiceRegistry:               "0x9338b5153AE39BB89f50468E608eD9d764B755fD",
		GnosisSafeProxyFactory:        "0x3C1fF68f5aa342D296d4DEe4Bb1cACCA912D95fE",
		GnosisSafeSameAddressMultisig: "0x6e7f594f680f7aBad18b7a63de50F0FeE47dfD06",
		Multisend:                     "0x40A2aCCbd92BCA938b02010E17A5b8929b49130D",
	}
}

// Load returns the Gnosis defaults with any CUSTOM_* variables present in the
// process environment applied on top.
func Load() (Config, error) {
	cfg := DefaultGnosis()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("could not parse chain environment overrides: %w", err)
	}
	return cfg, nil
}

// Validate checks that all contract addresses are well-formed and the RPC URL
// is set.
func (c *Config) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("chain RPC URL is not set")
	}

	addresses := map[string]string{
		EnvServiceManager:                c.ServiceManager,
		EnvServiceRegistry:               c.ServiceRegistry,
		EnvGnosisSafeProxyFactory:        c.GnosisSafeProxyFactory,
		EnvGnosisSafeSameAddressMultisig: c.GnosisSafeSameAddressMultisig,
		EnvMultisend:                     c.Multisend,
	}
	for name, addr := range addresses {
		if !ethcommon.IsHexAddress(addr) {
			return fmt.Errorf("invalid contract address %q for %s", addr, name)
		}
	}
	return nil
}

// Environ renders the configuration as environment entries for the autonomy
// tool's process.
func (c *Config) Environ() []string {
	return []string{
		fmt.Sprintf("%s=%d", EnvChainID, c.ChainID),
		fmt.Sprintf("%s=%s", EnvChainRPC, c.RPCURL),
		fmt.Sprintf("%s=%s", EnvServiceManager, c.ServiceManager),
		fmt.Sprintf("%s=%s", EnvServiceRegistry, c.ServiceRegistry),
		fmt.Sprintf("%s=%s", EnvGnosisSafeProxyFactory, c.GnosisSafeProxyFactory),
		fmt.Sprintf("%s=%s", EnvGnosisSafeSameAddressMultisig, c.GnosisSafeSameAddressMultisig),
		fmt.Sprintf("%s=%s", EnvMultisend, c.Multisend),
	}
}
