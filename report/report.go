package report

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/valory-xyz/trader-recovery/store"
)

// Minimal ABI fragment of the service registry, enough to read a service
// entry without generated bindings.
const serviceRegistryABIJSON = `[{"inputs":[{"name":"serviceId","type":"uint256"}],"name":"getService","outputs":[{"components":[{"name":"securityDeposit","type":"uint96"},{"name":"multisig","type":"address"},{"name":"configHash","type":"bytes32"},{"name":"threshold","type":"uint32"},{"name":"maxNumAgentInstances","type":"uint32"},{"name":"numAgentInstances","type":"uint32"},{"name":"state","type":"uint8"},{"name":"agentIds","type":"uint32[]"}],"name":"service","type":"tuple"}],"stateMutability":"view","type":"function"}]`

var serviceRegistryABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(serviceRegistryABIJSON))
	if err != nil {
		panic(err)
	}
	return parsed
}()

// serviceInfo mirrors the registry's Service struct for ABI decoding.
type serviceInfo struct {
	SecurityDeposit      *big.Int
	Multisig             ethcommon.Address
	ConfigHash           [32]byte
	Threshold            uint32
	MaxNumAgentInstances uint32
	NumAgentInstances    uint32
	State                uint8
	AgentIds             []uint32
}

// Service registry state enum, in contract order.
var serviceStateNames = []string{
	"non-existent",
	"pre-registration",
	"active-registration",
	"finished-registration",
	"deployed",
	"terminated-bonded",
}

func serviceStateName(state uint8) string {
	if int(state) < len(serviceStateNames) {
		return serviceStateNames[state]
	}
	return fmt.Sprintf("unknown (%d)", state)
}

// ChainBackend is the read-only chain access the reporter needs.
// *ethclient.Client satisfies it.
type ChainBackend interface {
	BalanceAt(ctx context.Context, account ethcommon.Address, blockNumber *big.Int) (*big.Int, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Report is the on-chain status of the managed service and its accounts.
// Balances are native-token amounts in wei.
type Report struct {
	ServiceID       uint64 `json:"service_id"`
	ServiceState    string `json:"service_state"`
	SecurityDeposit string `json:"security_deposit_wei"`

	Threshold            uint32 `json:"threshold"`
	NumAgentInstances    uint32 `json:"num_agent_instances"`
	MaxNumAgentInstances uint32 `json:"max_num_agent_instances"`

	Multisig        string `json:"multisig,omitempty"`
	MultisigBalance string `json:"multisig_balance_wei,omitempty"`

	AgentAddress string `json:"agent_address"`
	AgentBalance string `json:"agent_balance_wei"`

	OperatorAddress string `json:"operator_address"`
	OperatorBalance string `json:"operator_balance_wei"`
}

// Reporter reads the store and the service registry to assemble a Report.
type Reporter struct {
	store    *store.Store
	backend  ChainBackend
	registry ethcommon.Address
	log      *slog.Logger
}

// New creates a reporter for the given store and service registry contract.
func New(s *store.Store, backend ChainBackend, registry ethcommon.Address, log *slog.Logger) *Reporter {
	return &Reporter{
		store:    s,
		backend:  backend,
		registry: registry,
		log:      log,
	}
}

// Collect verifies the store and gathers balances and the registry entry for
// the stored service id. It performs read-only chain calls and never touches
// private keys beyond parsing the credentials files.
func (r *Reporter) Collect(ctx context.Context) (*Report, error) {
	if err := r.store.Verify(); err != nil {
		return nil, err
	}

	serviceID, err := r.store.ServiceID()
	if err != nil {
		return nil, err
	}
	agentAddress, err := r.store.AgentAddress()
	if err != nil {
		return nil, err
	}
	operatorKeys, err := r.store.OperatorKeys()
	if err != nil {
		return nil, err
	}
	operatorAddress := operatorKeys.Address()

	agentBalance, err := r.backend.BalanceAt(ctx, agentAddress, nil)
	if err != nil {
		return nil, fmt.Errorf("could not fetch agent balance: %w", err)
	}
	operatorBalance, err := r.backend.BalanceAt(ctx, operatorAddress, nil)
	if err != nil {
		return nil, fmt.Errorf("could not fetch operator balance: %w", err)
	}

	svc, err := r.getService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	rep := &Report{
		ServiceID:            serviceID,
		ServiceState:         serviceStateName(svc.State),
		SecurityDeposit:      svc.SecurityDeposit.String(),
		Threshold:            svc.Threshold,
		NumAgentInstances:    svc.NumAgentInstances,
		MaxNumAgentInstances: svc.MaxNumAgentInstances,
		AgentAddress:         agentAddress.Hex(),
		AgentBalance:         agentBalance.String(),
		OperatorAddress:      operatorAddress.Hex(),
		OperatorBalance:      operatorBalance.String(),
	}

	// The multisig only exists once the service has been deployed.
	if svc.Multisig != (ethcommon.Address{}) {
		multisigBalance, err := r.backend.BalanceAt(ctx, svc.Multisig, nil)
		if err != nil {
			return nil, fmt.Errorf("could not fetch multisig balance: %w", err)
		}
		rep.Multisig = svc.Multisig.Hex()
		rep.MultisigBalance = multisigBalance.String()
	}

	r.log.Debug("Collected service report", "serviceID", serviceID, "state", rep.ServiceState)
	return rep, nil
}

func (r *Reporter) getService(ctx context.Context, serviceID uint64) (*serviceInfo, error) {
	data, err := serviceRegistryABI.Pack("getService", new(big.Int).SetUint64(serviceID))
	if err != nil {
		return nil, fmt.Errorf("could not encode getService call: %w", err)
	}

	raw, err := r.backend.CallContract(ctx, ethereum.CallMsg{To: &r.registry, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("service registry call failed: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("service registry at %s returned no data for service %d", r.registry.Hex(), serviceID)
	}

	results, err := serviceRegistryABI.Unpack("getService", raw)
	if err != nil {
		return nil, fmt.Errorf("could not decode getService result: %w", err)
	}

	return abi.ConvertType(results[0], new(serviceInfo)).(*serviceInfo), nil
}
