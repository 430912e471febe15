package migrate

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func proxiedTestStep(key string) Step {
	return Step{
		Key: key,
		Done: func(rec Record) bool {
			return rec.HasAddress() && rec.Implementation != (common.Address{})
		},
		Plan: func(st State, cfg Config) ([]Action, error) {
			return []Action{
				DeployAction{Name: key, Bytecode: []byte{0x60}, GasLimit: 100_000},
				ProxyAction{Name: key + "Proxy", Factory: common.HexToAddress("0xF1"), Admin: cfg.Admin, InitData: []byte{0x01}},
			}, nil
		},
	}
}

func TestRunnerProxyChainsImplementation(t *testing.T) {
	t.Parallel()

	sub := &fakeSubmitter{}
	rec, results, skipped, err := NewRunner(sub).Run(context.Background(), proxiedTestStep("pool"), NewState(), Config{})
	require.NoError(t, err)
	assert.False(t, skipped)
	require.Len(t, results, 2)
	require.Len(t, sub.subs, 2)

	// The proxy submission received the freshly deployed implementation.
	assert.Equal(t, "proxy", sub.subs[1].kind)
	assert.Equal(t, results[0].Address, sub.subs[1].impl)

	assert.Equal(t, results[0].Address, rec.Implementation)
	assert.Equal(t, results[1].Address, rec.Address)
	assert.Len(t, rec.TxHashes, 2)
}

func TestRunnerProxyWithoutImplementationFails(t *testing.T) {
	t.Parallel()

	step := Step{
		Key:  "orphan",
		Done: func(rec Record) bool { return rec.HasAddress() },
		Plan: func(st State, cfg Config) ([]Action, error) {
			return []Action{ProxyAction{Name: "orphan"}}, nil
		},
	}

	sub := &fakeSubmitter{}
	_, _, _, err := NewRunner(sub).Run(context.Background(), step, NewState(), Config{})
	require.Error(t, err)
	assert.Empty(t, sub.subs)
}

func TestRunnerSkipReplaysWithoutSubmission(t *testing.T) {
	t.Parallel()

	st := NewState()
	recorded := Record{
		Address:        common.HexToAddress("0xB1"),
		Implementation: common.HexToAddress("0xB2"),
		TxHashes:       []common.Hash{common.HexToHash("0x01"), common.HexToHash("0x02")},
	}
	st.Put("pool", recorded)

	sub := &fakeSubmitter{}
	rec, results, skipped, err := NewRunner(sub).Run(context.Background(), proxiedTestStep("pool"), st, Config{})
	require.NoError(t, err)
	assert.True(t, skipped)
	assert.Empty(t, sub.subs)
	assert.Equal(t, recorded, rec)

	require.Len(t, results, 2)
	assert.Equal(t, recorded.TxHashes[0], results[0].TxHash)
	assert.Equal(t, recorded.TxHashes[1], results[1].TxHash)
	assert.Equal(t, recorded.Address, results[1].Address)
}

func TestRunnerPartialRecordIsNotDone(t *testing.T) {
	t.Parallel()

	// Implementation landed but the proxy submission never happened; the
	// step must re-run, not skip.
	st := NewState()
	st.Put("pool", Record{Address: common.HexToAddress("0xB2")})

	sub := &fakeSubmitter{}
	_, _, skipped, err := NewRunner(sub).Run(context.Background(), proxiedTestStep("pool"), st, Config{})
	require.NoError(t, err)
	assert.False(t, skipped)
	assert.Len(t, sub.subs, 2)
}

func TestRunnerDeterministicDeployUsesSalt(t *testing.T) {
	t.Parallel()

	salt := common.HexToHash("0xFEED")
	step := Step{
		Key:  "factory",
		Done: func(rec Record) bool { return rec.HasAddress() },
		Plan: func(st State, cfg Config) ([]Action, error) {
			return []Action{DeployAction{Name: "factory", Bytecode: []byte{0x60}, GasLimit: 100_000, Salt: &salt}}, nil
		},
	}

	sub := &fakeSubmitter{}
	_, _, _, err := NewRunner(sub).Run(context.Background(), step, NewState(), Config{})
	require.NoError(t, err)
	require.Len(t, sub.subs, 1)
	assert.Equal(t, "deterministic", sub.subs[0].kind)
	assert.Equal(t, salt, sub.subs[0].salt)
}
