package recovery

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"go.uber.org/atomic"

	"github.com/valory-xyz/trader-recovery/keys"
)

// Transient key file names written next to the tool checkout for the duration
// of a recovery session.
const (
	AgentKeyFile    = "agent_pkey.txt"
	OperatorKeyFile = "operator_pkey.txt"
)

// session holds the two transient plaintext key files the autonomy tool reads.
// Close removes them and must run on every exit path.
type session struct {
	agentKeyPath    string
	operatorKeyPath string
	cleaned         atomic.Bool
	log             *slog.Logger
}

// newSession writes both key files into dir with owner-only permissions and
// returns their absolute paths wrapped in a session. If either write fails,
// nothing is left on disk.
func newSession(dir string, agent, operator *keys.KeyRecord, log *slog.Logger) (*session, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("could not resolve session directory: %w", err)
	}

	s := &session{
		agentKeyPath:    filepath.Join(absDir, AgentKeyFile),
		operatorKeyPath: filepath.Join(absDir, OperatorKeyFile),
		log:             log,
	}

	if err := agent.WritePrivateKeyFile(s.agentKeyPath); err != nil {
		return nil, err
	}
	if err := operator.WritePrivateKeyFile(s.operatorKeyPath); err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

// Close deletes both key files. It is safe to call multiple times; only the
// first call removes anything.
func (s *session) Close() {
	if !s.cleaned.CompareAndSwap(false, true) {
		return
	}

	for _, path := range []string{s.agentKeyPath, s.operatorKeyPath} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.log.Error("Could not remove transient key file", "path", path, "err", err)
		}
	}
	s.log.Debug("Removed transient key files")
}
