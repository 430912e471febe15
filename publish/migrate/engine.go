package migrate

import (
	"context"
	"errors"
	"fmt"
)

// PersistFunc durably stores a complete state snapshot. It is invoked after
// every visited step, skipped ones included, with the full merged state.
type PersistFunc func(State) error

// Engine drives a fixed, ordered step list, one step per Next call. The
// order is the declaration order of the steps, never inferred from data
// dependencies: a step's plan may assume everything before it in the list
// has run or been skipped.
//
// The Next boundary is the run's only suspension point. State is merged and
// persisted before Next returns, so the caller can wait for confirmations
// between calls; a crash while waiting loses at most the current step,
// which the skip check replays safely on the following run.
type Engine struct {
	steps   []Step
	runner  *Runner
	state   State
	cfg     Config
	persist PersistFunc
	pos     int
	err     error
}

// NewEngine validates the step list and clones the initial state. Steps
// must carry unique non-empty keys and explicit Plan and Done functions.
func NewEngine(steps []Step, initial State, cfg Config, sub Submitter, persist PersistFunc) (*Engine, error) {
	seen := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		if step.Key == "" {
			return nil, errors.New("step with empty key")
		}
		if _, dup := seen[step.Key]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStepKey, step.Key)
		}
		seen[step.Key] = struct{}{}
		if step.Plan == nil {
			return nil, fmt.Errorf("step %s: nil plan", step.Key)
		}
		if step.Done == nil {
			return nil, fmt.Errorf("step %s: nil completion predicate", step.Key)
		}
	}
	return &Engine{
		steps:   steps,
		runner:  NewRunner(sub),
		state:   initial.Clone(),
		cfg:     cfg,
		persist: persist,
	}, nil
}

// Next runs the next step: execute (or skip), merge the record into state,
// persist the complete snapshot, then hand the batch to the caller. It
// returns false when the list is exhausted or a step failed; Err tells the
// two apart. A failing step leaves everything merged and persisted before
// it valid and resumable.
func (e *Engine) Next(ctx context.Context) (Batch, bool) {
	if e.err != nil || e.pos >= len(e.steps) {
		return Batch{}, false
	}

	step := e.steps[e.pos]
	rec, results, skipped, err := e.runner.Run(ctx, step, e.state, e.cfg)
	if err != nil {
		e.err = err
		return Batch{}, false
	}

	e.state.Put(step.Key, rec)
	if e.persist != nil {
		if err := e.persist(e.state.Clone()); err != nil {
			e.err = fmt.Errorf("persist after %s: %w", step.Key, err)
			return Batch{}, false
		}
	}

	e.pos++
	return Batch{Key: step.Key, Skipped: skipped, Results: results}, true
}

func (e *Engine) Err() error {
	return e.err
}

// State returns a copy of the latest merged state. It stays valid after a
// failed run so callers can report how far the deployment progressed.
func (e *Engine) State() State {
	return e.state.Clone()
}

// Remaining reports how many steps have not been visited yet.
func (e *Engine) Remaining() int {
	return len(e.steps) - e.pos
}
