package migrate

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Runner executes a single step against the current state: skip check,
// plan, submit. It never mutates state; the returned record is the step's
// delta for the engine to merge.
type Runner struct {
	sub Submitter
}

func NewRunner(sub Submitter) *Runner {
	return &Runner{sub: sub}
}

// Run returns the step's record delta, its result batch, and whether the
// step was skipped. On skip the previously recorded results are replayed
// without any submission. Any planning or submission error is fatal for
// the run.
func (r *Runner) Run(ctx context.Context, step Step, st State, cfg Config) (Record, []Result, bool, error) {
	if rec, ok := st.Get(step.Key); ok && step.Done(rec) {
		return rec, replayResults(step.Key, rec), true, nil
	}

	actions, err := step.Plan(st, cfg)
	if err != nil {
		return Record{}, nil, false, fmt.Errorf("plan %s: %w", step.Key, err)
	}

	var (
		rec          Record
		results      []Result
		lastDeployed common.Address
	)
	for _, action := range actions {
		switch a := action.(type) {
		case DeployAction:
			var (
				txHash common.Hash
				addr   common.Address
				err    error
			)
			if a.Salt != nil {
				txHash, addr, err = r.sub.DeployDeterministic(ctx, *a.Salt, a.Bytecode, a.GasLimit)
			} else {
				txHash, addr, err = r.sub.Deploy(ctx, a.Bytecode, a.GasLimit)
			}
			if err != nil {
				return Record{}, nil, false, fmt.Errorf("deploy %s: %w", a.Name, err)
			}
			lastDeployed = addr
			rec.Address = addr
			rec.TxHashes = append(rec.TxHashes, txHash)
			results = append(results, Result{Key: step.Key, Name: a.Name, TxHash: txHash, Address: addr})

		case ProxyAction:
			impl := a.Implementation
			if impl == (common.Address{}) {
				impl = lastDeployed
			}
			if impl == (common.Address{}) {
				return Record{}, nil, false, fmt.Errorf("proxy %s: no implementation to point at", a.Name)
			}
			txHash, addr, err := r.sub.DeployProxy(ctx, a.Factory, impl, a.Admin, a.Salt, a.InitData)
			if err != nil {
				return Record{}, nil, false, fmt.Errorf("deploy proxy %s: %w", a.Name, err)
			}
			rec.Implementation = impl
			rec.Address = addr
			rec.TxHashes = append(rec.TxHashes, txHash)
			results = append(results, Result{Key: step.Key, Name: a.Name, TxHash: txHash, Address: addr})

		case CallAction:
			txHash, err := r.sub.Call(ctx, a.To, a.Calldata, a.GasLimit)
			if err != nil {
				return Record{}, nil, false, fmt.Errorf("call %s: %w", a.Name, err)
			}
			rec.TxHashes = append(rec.TxHashes, txHash)
			results = append(results, Result{Key: step.Key, Name: a.Name, TxHash: txHash})

		default:
			return Record{}, nil, false, fmt.Errorf("step %s: unsupported action %T", step.Key, action)
		}
	}

	return rec, results, false, nil
}

func replayResults(key string, rec Record) []Result {
	results := make([]Result, 0, len(rec.TxHashes))
	for _, txHash := range rec.TxHashes {
		results = append(results, Result{Key: key, TxHash: txHash})
	}
	if len(results) == 0 {
		results = append(results, Result{Key: key})
	}
	results[len(results)-1].Address = rec.Address
	return results
}
