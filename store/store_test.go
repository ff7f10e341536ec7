package store

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valory-xyz/trader-recovery/keys"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func seededStore(t *testing.T) (*Store, *keys.KeyRecord, *keys.KeyRecord) {
	t.Helper()

	s := New(filepath.Join(t.TempDir(), ".trader_runner"), testLogger())
	require.NoError(t, s.Bootstrap())

	agent, err := keys.Generate()
	require.NoError(t, err)
	operator, err := keys.Generate()
	require.NoError(t, err)

	require.NoError(t, s.Seed(agent, operator, "http://localhost:8545", 42))
	return s, agent, operator
}

func TestBootstrap_CreatesReadme(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), ".trader_runner"), testLogger())
	assert.False(t, s.Exists())

	require.NoError(t, s.Bootstrap())
	assert.True(t, s.Exists())

	readme, err := os.ReadFile(s.Path(ReadmeFile))
	require.NoError(t, err)
	assert.Contains(t, string(readme), "BACK UP")
}

func TestSeedAndRead(t *testing.T) {
	s, agent, operator := seededStore(t)

	require.NoError(t, s.Verify())

	rpcURL, err := s.RPCURL()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8545", rpcURL)

	addr, err := s.AgentAddress()
	require.NoError(t, err)
	assert.Equal(t, agent.Address(), addr)

	serviceID, err := s.ServiceID()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), serviceID)

	agentKeys, err := s.AgentKeys()
	require.NoError(t, err)
	assert.Equal(t, agent.PrivateKeyHex, agentKeys.PrivateKeyHex)

	operatorKeys, err := s.OperatorKeys()
	require.NoError(t, err)
	assert.Equal(t, operator.PrivateKeyHex, operatorKeys.PrivateKeyHex)
}

func TestVerify_MissingFileIsCorrupted(t *testing.T) {
	for _, name := range RequiredFiles {
		t.Run(name, func(t *testing.T) {
			s, _, _ := seededStore(t)
			require.NoError(t, os.Remove(s.Path(name)))

			err := s.Verify()
			assert.ErrorIs(t, err, ErrCorruptedStore)
			assert.Contains(t, err.Error(), name)
		})
	}
}

func TestRead_InvalidValues(t *testing.T) {
	s, _, _ := seededStore(t)

	require.NoError(t, os.WriteFile(s.Path(AgentAddressFile), []byte("not-an-address\n"), 0644))
	_, err := s.AgentAddress()
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(s.Path(ServiceIDFile), []byte("forty-two\n"), 0644))
	_, err = s.ServiceID()
	assert.Error(t, err)
}
