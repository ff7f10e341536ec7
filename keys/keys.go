package keys

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrKeyFileNotFound is returned when the credentials file does not exist.
var ErrKeyFileNotFound = errors.New("key file not found")

// ErrMalformedKeyFile is returned when the credentials file cannot be parsed
// into a valid address/private-key record.
var ErrMalformedKeyFile = errors.New("malformed key file")

// KeyRecord is a single entry of a quickstart credentials file. The file is a
// JSON array holding exactly one record.
type KeyRecord struct {
	AddressHex    string `json:"address"`
	PrivateKeyHex string `json:"private_key"`
}

// ParseKeyFile reads a credentials file and returns its key record. The file
// is parsed as a structured record; any missing field, bad hex, or a private
// key that does not derive the recorded address is rejected with
// ErrMalformedKeyFile rather than returning truncated data.
func ParseKeyFile(path string) (*KeyRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrKeyFileNotFound, path)
		}
		return nil, fmt.Errorf("could not read key file %s: %w", path, err)
	}

	var records []KeyRecord
	if err := json.Unmarshal(data, &records); err != nil {
		// Older quickstart versions wrote a bare object instead of an array.
		var single KeyRecord
		if err := json.Unmarshal(data, &single); err != nil {
			return nil, fmt.Errorf("%w: %s: %s", ErrMalformedKeyFile, path, err)
		}
		records = []KeyRecord{single}
	}

	if len(records) != 1 {
		return nil, fmt.Errorf("%w: %s: expected exactly one key record, got %d", ErrMalformedKeyFile, path, len(records))
	}

	record := records[0]
	if err := record.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrMalformedKeyFile, path, err)
	}

	return &record, nil
}

// Validate checks that the record holds a well-formed address and a private
// key that derives it.
func (r *KeyRecord) Validate() error {
	if r.AddressHex == "" || r.PrivateKeyHex == "" {
		return errors.New("missing address or private_key field")
	}

	if !ethcommon.IsHexAddress(r.AddressHex) {
		return fmt.Errorf("invalid address %q", r.AddressHex)
	}

	privateKey, err := crypto.HexToECDSA(r.PrivateKeyNo0x())
	if err != nil {
		return fmt.Errorf("invalid private key: %w", err)
	}

	derived := crypto.PubkeyToAddress(privateKey.PublicKey)
	if derived != ethcommon.HexToAddress(r.AddressHex) {
		return fmt.Errorf("private key does not match address %s", r.AddressHex)
	}

	return nil
}

// Address returns the record's address.
func (r *KeyRecord) Address() ethcommon.Address {
	return ethcommon.HexToAddress(r.AddressHex)
}

// PrivateKeyNo0x returns the private key hex without a 0x prefix, the format
// the autonomy tool expects in its key files.
func (r *KeyRecord) PrivateKeyNo0x() string {
	return strings.TrimPrefix(r.PrivateKeyHex, "0x")
}

// WritePrivateKeyFile writes the 0x-stripped private key to path with
// owner-only permissions.
func (r *KeyRecord) WritePrivateKeyFile(path string) error {
	if err := os.WriteFile(path, []byte(r.PrivateKeyNo0x()), 0600); err != nil {
		return fmt.Errorf("could not write private key file: %w", err)
	}
	return nil
}

// Generate creates a fresh keypair and returns it as a key record in the
// credentials-file format: the private key as 0x-prefixed lowercase hex, the
// address in EIP-55 checksummed form.
func Generate() (*KeyRecord, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("could not generate key: %w", err)
	}

	return &KeyRecord{
		AddressHex:    crypto.PubkeyToAddress(privateKey.PublicKey).Hex(),
		PrivateKeyHex: "0x" + ethcommon.Bytes2Hex(crypto.FromECDSA(privateKey)),
	}, nil
}

// MarshalCredentialsFile renders the record as the content of a quickstart
// credentials file: a JSON array with a single indented entry.
func (r *KeyRecord) MarshalCredentialsFile() ([]byte, error) {
	data, err := json.MarshalIndent([]KeyRecord{*r}, "", "    ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
