package report

import (
	"context"
	"errors"
	"log/slog"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	ethereum "github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/valory-xyz/trader-recovery/keys"
	"github.com/valory-xyz/trader-recovery/store"
)

// MockChainBackend mocks the ChainBackend interface.
type MockChainBackend struct {
	mock.Mock
}

func (m *MockChainBackend) BalanceAt(ctx context.Context, account ethcommon.Address, blockNumber *big.Int) (*big.Int, error) {
	args := m.Called(ctx, account, blockNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}

func (m *MockChainBackend) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	args := m.Called(ctx, call, blockNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func seededStore(t *testing.T) (*store.Store, *keys.KeyRecord, *keys.KeyRecord) {
	t.Helper()

	s := store.New(filepath.Join(t.TempDir(), ".trader_runner"), testLogger())
	require.NoError(t, s.Bootstrap())

	agent, err := keys.Generate()
	require.NoError(t, err)
	operator, err := keys.Generate()
	require.NoError(t, err)

	require.NoError(t, s.Seed(agent, operator, "http://localhost:8545", 42))
	return s, agent, operator
}

func packService(t *testing.T, svc serviceInfo) []byte {
	t.Helper()
	packed, err := serviceRegistryABI.Methods["getService"].Outputs.Pack(svc)
	require.NoError(t, err)
	return packed
}

func TestCollect(t *testing.T) {
	s, agent, operator := seededStore(t)

	registry := ethcommon.HexToAddress("0x9338b5153AE39BB89f50468E608eD9d764B755fD")
	multisig := ethcommon.HexToAddress("0x1111111111111111111111111111111111111111")

	svc := serviceInfo{
		SecurityDeposit:      big.NewInt(10000000000000000),
		Multisig:             multisig,
		ConfigHash:           [32]byte{0x01},
		Threshold:            1,
		MaxNumAgentInstances: 1,
		NumAgentInstances:    1,
		State:                4, // deployed
		AgentIds:             []uint32{12},
	}

	m := new(MockChainBackend)
	m.On("BalanceAt", mock.Anything, agent.Address(), (*big.Int)(nil)).
		Return(big.NewInt(500), nil)
	m.On("BalanceAt", mock.Anything, operator.Address(), (*big.Int)(nil)).
		Return(big.NewInt(1000), nil)
	m.On("BalanceAt", mock.Anything, multisig, (*big.Int)(nil)).
		Return(big.NewInt(2000), nil)
	m.On("CallContract", mock.Anything, mock.MatchedBy(func(call ethereum.CallMsg) bool {
		return call.To != nil && *call.To == registry
	}), (*big.Int)(nil)).
		Return(packService(t, svc), nil)

	rep, err := New(s, m, registry, testLogger()).Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, uint64(42), rep.ServiceID)
	assert.Equal(t, "deployed", rep.ServiceState)
	assert.Equal(t, "10000000000000000", rep.SecurityDeposit)
	assert.Equal(t, uint32(1), rep.Threshold)
	assert.Equal(t, agent.Address().Hex(), rep.AgentAddress)
	assert.Equal(t, "500", rep.AgentBalance)
	assert.Equal(t, operator.Address().Hex(), rep.OperatorAddress)
	assert.Equal(t, "1000", rep.OperatorBalance)
	assert.Equal(t, multisig.Hex(), rep.Multisig)
	assert.Equal(t, "2000", rep.MultisigBalance)
	m.AssertExpectations(t)
}

func TestCollect_NoMultisigBeforeDeploy(t *testing.T) {
	s, agent, operator := seededStore(t)
	registry := ethcommon.HexToAddress("0x9338b5153AE39BB89f50468E608eD9d764B755fD")

	svc := serviceInfo{
		SecurityDeposit:      big.NewInt(10000000000000000),
		Multisig:             ethcommon.Address{},
		Threshold:            1,
		MaxNumAgentInstances: 1,
		State:                2, // active-registration
		AgentIds:             []uint32{12},
	}

	m := new(MockChainBackend)
	m.On("BalanceAt", mock.Anything, agent.Address(), (*big.Int)(nil)).
		Return(big.NewInt(0), nil)
	m.On("BalanceAt", mock.Anything, operator.Address(), (*big.Int)(nil)).
		Return(big.NewInt(0), nil)
	m.On("CallContract", mock.Anything, mock.Anything, (*big.Int)(nil)).
		Return(packService(t, svc), nil)

	rep, err := New(s, m, registry, testLogger()).Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "active-registration", rep.ServiceState)
	assert.Empty(t, rep.Multisig)
	assert.Empty(t, rep.MultisigBalance)
	// Only two balance lookups, no multisig query.
	m.AssertNumberOfCalls(t, "BalanceAt", 2)
}

func TestCollect_CorruptedStoreBeforeAnyChainCall(t *testing.T) {
	s, _, _ := seededStore(t)
	require.NoError(t, os.Remove(s.Path(store.ServiceIDFile)))

	m := new(MockChainBackend)
	rep, err := New(s, m, ethcommon.Address{}, testLogger()).Collect(context.Background())
	assert.Nil(t, rep)
	assert.ErrorIs(t, err, store.ErrCorruptedStore)
	m.AssertNumberOfCalls(t, "BalanceAt", 0)
	m.AssertNumberOfCalls(t, "CallContract", 0)
}

func TestCollect_RegistryCallFailure(t *testing.T) {
	s, agent, operator := seededStore(t)

	m := new(MockChainBackend)
	m.On("BalanceAt", mock.Anything, agent.Address(), (*big.Int)(nil)).
		Return(big.NewInt(0), nil)
	m.On("BalanceAt", mock.Anything, operator.Address(), (*big.Int)(nil)).
		Return(big.NewInt(0), nil)
	m.On("CallContract", mock.Anything, mock.Anything, (*big.Int)(nil)).
		Return(nil, errors.New("rpc unreachable"))

	_, err := New(s, m, ethcommon.Address{}, testLogger()).Collect(context.Background())
	assert.ErrorContains(t, err, "rpc unreachable")
}

func TestServiceStateName(t *testing.T) {
	assert.Equal(t, "non-existent", serviceStateName(0))
	assert.Equal(t, "deployed", serviceStateName(4))
	assert.Equal(t, "terminated-bonded", serviceStateName(5))
	assert.Equal(t, "unknown (9)", serviceStateName(9))
}
