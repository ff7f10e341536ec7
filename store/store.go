package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/valory-xyz/trader-recovery/keys"
)

// File names inside the store directory.
const (
	RPCFile          = "rpc.txt"
	AgentKeysFile    = "keys.json"
	OperatorKeysFile = "operator_keys.json"
	AgentAddressFile = "agent_address.txt"
	ServiceIDFile    = "service_id.txt"
	ReadmeFile       = "README.txt"
)

// RequiredFiles must all be present in an existing store. A store missing any
// of them is treated as corrupted and nothing is recovered from it.
var RequiredFiles = []string{
	RPCFile,
	AgentKeysFile,
	OperatorKeysFile,
	AgentAddressFile,
	ServiceIDFile,
}

// ErrCorruptedStore is returned when an existing store directory is missing
// required files.
var ErrCorruptedStore = errors.New("store is corrupted")

const readmeDisclaimer = `This directory contains the keys and configuration of your on-chain service.

BACK UP THIS DIRECTORY. The private keys in keys.json and operator_keys.json
control your agent and operator accounts and cannot be regenerated. Anyone
with access to these files can move the associated funds. Do not share them
and do not delete this directory while the service is registered on-chain.
`

// Store is the persistent directory for a single managed service instance.
type Store struct {
	dir string
	log *slog.Logger
}

// New creates a store handle for dir. The directory is not touched until
// Bootstrap or one of the readers is called.
func New(dir string, log *slog.Logger) *Store {
	return &Store{dir: dir, log: log}
}

// Dir returns the store directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the path of a file inside the store.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Exists reports whether the store directory exists.
func (s *Store) Exists() bool {
	info, err := os.Stat(s.dir)
	return err == nil && info.IsDir()
}

// Verify checks that all required files are present. It returns
// ErrCorruptedStore naming the missing files otherwise.
func (s *Store) Verify() error {
	var missing []string
	for _, name := range RequiredFiles {
		if _, err := os.Stat(s.Path(name)); err != nil {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s is missing %s; do not delete or move files in this directory, your keys may be lost",
			ErrCorruptedStore, s.dir, strings.Join(missing, ", "))
	}
	return nil
}

// Bootstrap creates the store directory with the disclaimer README. It does
// not write any of the required files; see Seed.
func (s *Store) Bootstrap() error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("could not create store directory: %w", err)
	}

	if err := os.WriteFile(s.Path(ReadmeFile), []byte(readmeDisclaimer), 0644); err != nil {
		return fmt.Errorf("could not write store README: %w", err)
	}

	s.log.Info("Created service store", "dir", s.dir)
	return nil
}

// Seed writes the full required file set for a freshly bootstrapped store.
func (s *Store) Seed(agent, operator *keys.KeyRecord, rpcURL string, serviceID uint64) error {
	agentJSON, err := agent.MarshalCredentialsFile()
	if err != nil {
		return fmt.Errorf("could not encode agent keys: %w", err)
	}
	operatorJSON, err := operator.MarshalCredentialsFile()
	if err != nil {
		return fmt.Errorf("could not encode operator keys: %w", err)
	}

	writes := []struct {
		name string
		data []byte
		mode os.FileMode
	}{
		{AgentKeysFile, agentJSON, 0600},
		{OperatorKeysFile, operatorJSON, 0600},
		{AgentAddressFile, []byte(agent.AddressHex + "\n"), 0644},
		{RPCFile, []byte(rpcURL + "\n"), 0644},
		{ServiceIDFile, []byte(strconv.FormatUint(serviceID, 10) + "\n"), 0644},
	}

	for _, w := range writes {
		if err := os.WriteFile(s.Path(w.name), w.data, w.mode); err != nil {
			return fmt.Errorf("could not write %s: %w", w.name, err)
		}
	}

	s.log.Info("Seeded service store",
		"agentAddress", agent.AddressHex,
		"operatorAddress", operator.AddressHex,
		"serviceID", serviceID)
	return nil
}

// RPCURL reads the chain RPC endpoint from the store.
func (s *Store) RPCURL() (string, error) {
	return s.readTrimmed(RPCFile)
}

// AgentAddress reads the agent account address from the store.
func (s *Store) AgentAddress() (ethcommon.Address, error) {
	raw, err := s.readTrimmed(AgentAddressFile)
	if err != nil {
		return ethcommon.Address{}, err
	}
	if !ethcommon.IsHexAddress(raw) {
		return ethcommon.Address{}, fmt.Errorf("invalid agent address %q in %s", raw, s.Path(AgentAddressFile))
	}
	return ethcommon.HexToAddress(raw), nil
}

// ServiceID reads the on-chain service id from the store.
func (s *Store) ServiceID() (uint64, error) {
	raw, err := s.readTrimmed(ServiceIDFile)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid service id %q in %s: %w", raw, s.Path(ServiceIDFile), err)
	}
	return id, nil
}

// AgentKeys parses the agent credentials file.
func (s *Store) AgentKeys() (*keys.KeyRecord, error) {
	return keys.ParseKeyFile(s.Path(AgentKeysFile))
}

// OperatorKeys parses the operator credentials file.
func (s *Store) OperatorKeys() (*keys.KeyRecord, error) {
	return keys.ParseKeyFile(s.Path(OperatorKeysFile))
}

func (s *Store) readTrimmed(name string) (string, error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return "", fmt.Errorf("could not read %s: %w", name, err)
	}
	return strings.TrimSpace(string(data)), nil
}
