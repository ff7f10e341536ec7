package recovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/valory-xyz/trader-recovery/chain"
	"github.com/valory-xyz/trader-recovery/keys"
	"github.com/valory-xyz/trader-recovery/runner"
	"github.com/valory-xyz/trader-recovery/store"
)

// Fixed parameters of the interrupted service update being remediated.
const (
	ToolRepoURL = "https://github.com/valory-xyz/trader.git"
	ToolRepoTag = "v0.8.5"
	ToolDirName = "trader"

	servicePackagePath = "packages/valory/services/trader/"
	agentID            = "12"
	agentInstanceCount = "1"
	nftHash            = "bafybeig64ynqzhzlsc3cfwueqc6zgbdiimioougnrqzkkrbzn75lr4qfuq"
	bondCost           = "10000000000000000"
)

// State identifies the orchestrator's position in the recovery sequence.
type State string

const (
	StateInit        State = "init"
	StateValidated   State = "validated"
	StatePrepared    State = "prepared"
	StateUpdating    State = "updating"
	StateActivating  State = "activating"
	StateRegistering State = "registering"
	StateDeploying   State = "deploying"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// ErrCloneFailed is returned when the tool repository could not be cloned into
// a valid checkout.
var ErrCloneFailed = errors.New("tool repository clone failed")

// ErrServiceIDRequired is returned on a first run without a configured
// service id: a fresh store has no update to recover yet.
var ErrServiceIDRequired = errors.New("service id required on first run")

// StepError reports a failed external command together with its captured
// output.
type StepError struct {
	Step     State
	ExitCode int
	Output   []byte
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed with exit code %d:\n%s", e.Step, e.ExitCode, e.Output)
}

// Config carries everything the orchestrator needs; nothing is read from the
// ambient process environment beyond what chain.Load already applied.
type Config struct {
	Store  *store.Store
	Runner runner.CommandRunner
	Chain  chain.Config
	Log    *slog.Logger

	// WorkDir is the directory the tool repository is cloned into and the
	// transient key files are written to.
	WorkDir string

	// BootstrapRPCURL and BootstrapServiceID seed a store created on first
	// run. They are ignored when the store already exists.
	BootstrapRPCURL    string
	BootstrapServiceID uint64
}

// Orchestrator drives the four-step on-chain recovery sequence. A single
// instance is good for one Run.
type Orchestrator struct {
	cfg   Config
	log   *slog.Logger
	state State

	// loaded during prepare
	serviceID    uint64
	agentAddress ethcommon.Address
	chainEnv     []string
	toolDir      string
}

// New creates an orchestrator in the initial state.
func New(cfg Config) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg,
		log:     cfg.Log,
		state:   StateInit,
		toolDir: filepath.Join(cfg.WorkDir, ToolDirName),
	}
}

// State returns the orchestrator's current state.
func (o *Orchestrator) State() State {
	return o.state
}

// Run executes the full recovery sequence. Any failure is terminal; the
// transient key files are removed on every exit path once they exist.
func (o *Orchestrator) Run(ctx context.Context) error {
	if err := o.init(); err != nil {
		return o.fail(err)
	}

	if err := o.prepare(ctx); err != nil {
		return o.fail(err)
	}

	agentKeys, err := o.cfg.Store.AgentKeys()
	if err != nil {
		return o.fail(err)
	}
	operatorKeys, err := o.cfg.Store.OperatorKeys()
	if err != nil {
		return o.fail(err)
	}

	sess, err := newSession(o.cfg.WorkDir, agentKeys, operatorKeys, o.log)
	if err != nil {
		return o.fail(err)
	}
	defer sess.Close()

	serviceID := strconv.FormatUint(o.serviceID, 10)
	steps := []struct {
		state State
		args  []string
	}{
		{StateUpdating, []string{
			"mint", "--skip-hash-check", "--use-custom-chain",
			"service", servicePackagePath,
			"--key", sess.agentKeyPath,
			"--nft", nftHash,
			"-a", agentID,
			"-n", agentInstanceCount,
			"--threshold", agentInstanceCount,
			"-c", bondCost,
			"--update", serviceID,
		}},
		{StateActivating, []string{
			"service", "--use-custom-chain", "activate",
			"--key", sess.operatorKeyPath,
			serviceID,
		}},
		{StateRegistering, []string{
			"service", "--use-custom-chain", "register",
			"--key", sess.operatorKeyPath,
			serviceID,
			"-a", agentID,
			"-i", o.agentAddress.Hex(),
		}},
		{StateDeploying, []string{
			"service", "--use-custom-chain", "deploy",
			"--reuse-multisig",
			"--key", sess.operatorKeyPath,
			serviceID,
		}},
	}

	for _, step := range steps {
		o.state = step.state
		o.log.Info("Running recovery step", "step", step.state, "serviceID", serviceID)
		if err := o.runTool(ctx, step.state, step.args...); err != nil {
			return o.fail(err)
		}
	}

	sess.Close()
	o.state = StateDone
	o.log.Info("Recovery complete, service is up to date", "serviceID", serviceID)
	return nil
}

// init checks the store, creating and seeding it on first run.
func (o *Orchestrator) init() error {
	if !o.cfg.Store.Exists() {
		if o.cfg.BootstrapServiceID == 0 {
			return ErrServiceIDRequired
		}

		if err := o.cfg.Store.Bootstrap(); err != nil {
			return err
		}

		agent, err := keys.Generate()
		if err != nil {
			return err
		}
		operator, err := keys.Generate()
		if err != nil {
			return err
		}

		if err := o.cfg.Store.Seed(agent, operator, o.cfg.BootstrapRPCURL, o.cfg.BootstrapServiceID); err != nil {
			return err
		}
	} else if err := o.cfg.Store.Verify(); err != nil {
		return err
	}

	o.state = StateValidated
	return nil
}

// prepare loads the store values, freezes the tool environment, and sets up a
// fresh pinned checkout of the tool repository.
func (o *Orchestrator) prepare(ctx context.Context) error {
	rpcURL, err := o.cfg.Store.RPCURL()
	if err != nil {
		return err
	}
	o.agentAddress, err = o.cfg.Store.AgentAddress()
	if err != nil {
		return err
	}
	o.serviceID, err = o.cfg.Store.ServiceID()
	if err != nil {
		return err
	}

	chainCfg := o.cfg.Chain
	chainCfg.RPCURL = rpcURL
	if err := chainCfg.Validate(); err != nil {
		return err
	}
	o.chainEnv = chainCfg.Environ()

	if err := o.backupExistingCheckout(); err != nil {
		return err
	}
	if err := o.cloneTool(ctx); err != nil {
		return err
	}
	if err := o.installToolDeps(ctx); err != nil {
		return err
	}

	o.state = StatePrepared
	return nil
}

// backupExistingCheckout moves an existing tool directory aside to a numbered
// backup so the fresh clone never overwrites local changes.
func (o *Orchestrator) backupExistingCheckout() error {
	if _, err := os.Stat(o.toolDir); os.IsNotExist(err) {
		return nil
	}

	backups, err := filepath.Glob(o.toolDir + ".old.*")
	if err != nil {
		return fmt.Errorf("could not list checkout backups: %w", err)
	}

	backupPath := fmt.Sprintf("%s.old.%d", o.toolDir, len(backups)+1)
	if err := os.Rename(o.toolDir, backupPath); err != nil {
		return fmt.Errorf("could not back up existing checkout: %w", err)
	}

	o.log.Info("Backed up existing tool checkout", "from", o.toolDir, "to", backupPath)
	return nil
}

func (o *Orchestrator) cloneTool(ctx context.Context) error {
	output, code, err := o.cfg.Runner.Run(ctx, o.cfg.WorkDir, nil,
		"git", "clone", "--depth", "1", "--branch", ToolRepoTag, ToolRepoURL, ToolDirName)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrCloneFailed, err)
	}
	if code != 0 {
		return fmt.Errorf("%w: git exited with code %d:\n%s", ErrCloneFailed, code, output)
	}

	// git may create the directory even for a failed checkout.
	if _, err := os.Stat(filepath.Join(o.toolDir, ".git")); err != nil {
		return fmt.Errorf("%w: %s is not a git checkout", ErrCloneFailed, o.toolDir)
	}

	o.log.Info("Cloned tool repository", "repo", ToolRepoURL, "tag", ToolRepoTag, "dir", o.toolDir)
	return nil
}

func (o *Orchestrator) installToolDeps(ctx context.Context) error {
	output, code, err := o.cfg.Runner.Run(ctx, o.toolDir, nil, "poetry", "install", "--no-root")
	if err != nil {
		return fmt.Errorf("could not run poetry install: %w", err)
	}
	if code != 0 {
		return fmt.Errorf("poetry install exited with code %d:\n%s", code, output)
	}
	return nil
}

// runTool invokes an autonomy subcommand through poetry inside the tool
// checkout, with the chain configuration in the child environment.
func (o *Orchestrator) runTool(ctx context.Context, step State, args ...string) error {
	output, code, err := o.cfg.Runner.Run(ctx, o.toolDir, o.chainEnv,
		"poetry", append([]string{"run", "autonomy"}, args...)...)
	if err != nil {
		return fmt.Errorf("could not run autonomy %s: %w", step, err)
	}
	if code != 0 {
		return &StepError{Step: step, ExitCode: code, Output: output}
	}
	return nil
}

func (o *Orchestrator) fail(err error) error {
	o.state = StateFailed
	o.log.Error("Recovery failed", "err", err)
	return err
}
