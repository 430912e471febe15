package migrate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// StateVersion versions the persisted state document so the format can
// change later.
const StateVersion = 1

var (
	// ErrMissingPrerequisite marks a step whose plan needs an output an
	// earlier step has not recorded. Fatal for the run; never retried.
	ErrMissingPrerequisite = errors.New("missing prerequisite")

	ErrDuplicateStepKey = errors.New("duplicate step key")
)

// Record is the durable output of one step: the reference it produced and
// every transaction it submitted, in submission order.
type Record struct {
	Address        common.Address `json:"address"`
	Implementation common.Address `json:"implementation"`
	TxHashes       []common.Hash  `json:"txHashes,omitempty"`
}

func (r Record) HasAddress() bool {
	return r.Address != (common.Address{})
}

// State maps step keys to their recorded outputs. It carries no ordering;
// execution order comes from the step list. Completed entries are treated
// as authoritative on later runs and are never overwritten.
type State struct {
	Version int               `json:"version"`
	Steps   map[string]Record `json:"steps"`
}

func NewState() State {
	return State{Version: StateVersion, Steps: map[string]Record{}}
}

func (s State) Get(key string) (Record, bool) {
	rec, ok := s.Steps[key]
	return rec, ok
}

// Address returns the recorded address for key, failing with
// ErrMissingPrerequisite when the step has not recorded one.
func (s State) Address(key string) (common.Address, error) {
	rec, ok := s.Steps[key]
	if !ok || !rec.HasAddress() {
		return common.Address{}, fmt.Errorf("%w: %s", ErrMissingPrerequisite, key)
	}
	return rec.Address, nil
}

// Put records a step output. Used by the engine at its single merge point
// and by callers seeding an initial state before a run.
func (s *State) Put(key string, rec Record) {
	if s.Steps == nil {
		s.Steps = map[string]Record{}
	}
	if s.Version == 0 {
		s.Version = StateVersion
	}
	s.Steps[key] = rec
}

// Keys returns the recorded step keys in sorted order.
func (s State) Keys() []string {
	keys := make([]string, 0, len(s.Steps))
	for key := range s.Steps {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (s State) Clone() State {
	out := State{Version: s.Version, Steps: make(map[string]Record, len(s.Steps))}
	for key, rec := range s.Steps {
		if rec.TxHashes != nil {
			hashes := make([]common.Hash, len(rec.TxHashes))
			copy(hashes, rec.TxHashes)
			rec.TxHashes = hashes
		}
		out.Steps[key] = rec
	}
	return out
}

// LoadState reads a persisted state snapshot. A missing file yields a fresh
// empty state.
func LoadState(path string) (State, error) {
	blob, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewState(), nil
	}
	if err != nil {
		return State{}, fmt.Errorf("read state: %w", err)
	}

	var st State
	if err := json.Unmarshal(blob, &st); err != nil {
		return State{}, fmt.Errorf("decode state: %w", err)
	}
	if st.Version > StateVersion {
		return State{}, fmt.Errorf("unsupported state version %d", st.Version)
	}
	if st.Steps == nil {
		st.Steps = map[string]Record{}
	}
	return st, nil
}

// WriteState overwrites the state file wholesale with the given snapshot.
// Whole-file overwrite is load-bearing for crash recovery; do not switch to
// appending deltas.
func WriteState(path string, st State) error {
	blob, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}
