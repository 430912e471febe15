package migrate

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Submitter broadcasts planned actions and returns immediately with a
// pending transaction hash; it never waits for confirmation. Implemented by
// publish.Deployer.
type Submitter interface {
	Deploy(ctx context.Context, bytecode []byte, gasLimit uint64) (common.Hash, common.Address, error)
	DeployDeterministic(ctx context.Context, salt common.Hash, bytecode []byte, gasLimit uint64) (common.Hash, common.Address, error)
	DeployProxy(ctx context.Context, factory, implementation, admin common.Address, salt common.Hash, initData []byte) (common.Hash, common.Address, error)
	Call(ctx context.Context, to common.Address, calldata []byte, gasLimit uint64) (common.Hash, error)
}

// Action is one submission a step plans. Exactly one of the concrete action
// types below.
type Action interface {
	actionName() string
}

// DeployAction deploys creation bytecode, via CREATE2 when Salt is set.
type DeployAction struct {
	Name     string
	Bytecode []byte
	GasLimit uint64
	Salt     *common.Hash
}

// ProxyAction deploys an ERC1967 proxy for Implementation through Factory.
// A zero Implementation means "the address of the preceding deploy action
// in the same plan".
type ProxyAction struct {
	Name           string
	Factory        common.Address
	Implementation common.Address
	Admin          common.Address
	Salt           common.Hash
	InitData       []byte
}

// CallAction submits a configuration transaction to a deployed contract.
type CallAction struct {
	Name     string
	To       common.Address
	Calldata []byte
	GasLimit uint64
}

func (a DeployAction) actionName() string { return a.Name }
func (a ProxyAction) actionName() string  { return a.Name }
func (a CallAction) actionName() string   { return a.Name }

// Step declares one unit of deployable work under a stable key.
//
// Plan derives the step's submissions from prior state and static config;
// it must fail with ErrMissingPrerequisite when an earlier output it needs
// is absent. Done is the skip predicate: it sees only what a previous run
// recorded at submission time, not on-chain confirmation, so a crash
// between submission and confirmation can leave a record that passes Done
// for a transaction that never landed. Operators recover from that by
// removing the affected key from the state file.
type Step struct {
	Key  string
	Plan func(st State, cfg Config) ([]Action, error)
	Done func(rec Record) bool
}

// Result is the outcome of one submitted (or replayed) action.
type Result struct {
	Key     string
	Name    string
	TxHash  common.Hash
	Address common.Address
}

// Batch is the per-step result set the engine yields, one per visited step.
type Batch struct {
	Key     string
	Skipped bool
	Results []Result
}

// Config is the immutable record of deployment-wide parameters visible to
// every step's plan.
type Config struct {
	Deployer          common.Address
	Owner             common.Address
	Admin             common.Address
	FeeAddress        common.Address
	ProtocolRecipient common.Address

	PoolName     string
	PoolSymbol   string
	PoolDecimals uint8

	TokenName      string
	TokenSymbol    string
	TokenDecimals  uint8
	TokenExpiresAt uint64

	DefaultFeeBps  int64
	ProtocolFeeBps int64

	// FaucetAmount enables the testnet faucet step when positive.
	FaucetAmount *big.Int
}

func (c Config) Validate() error {
	switch {
	case c.Deployer == (common.Address{}):
		return errConfig("deployer address is required")
	case c.Owner == (common.Address{}):
		return errConfig("owner address is required")
	case c.Admin == (common.Address{}):
		return errConfig("admin address is required")
	case c.PoolName == "" || c.PoolSymbol == "":
		return errConfig("pool name and symbol are required")
	case c.TokenName == "" || c.TokenSymbol == "":
		return errConfig("token name and symbol are required")
	case c.DefaultFeeBps < 0 || c.DefaultFeeBps > 10_000:
		return errConfig("default fee must be within [0, 10000] bps")
	case c.ProtocolFeeBps < 0 || c.ProtocolFeeBps > 10_000:
		return errConfig("protocol fee must be within [0, 10000] bps")
	}
	return nil
}

type errConfig string

func (e errConfig) Error() string { return "invalid config: " + string(e) }
