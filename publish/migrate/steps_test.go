package migrate

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Deployer:          common.HexToAddress("0xD1"),
		Owner:             common.HexToAddress("0x01"),
		Admin:             common.HexToAddress("0x02"),
		FeeAddress:        common.HexToAddress("0x03"),
		ProtocolRecipient: common.HexToAddress("0x04"),
		PoolName:          "HyperSwap Pool",
		PoolSymbol:        "HSPp",
		PoolDecimals:      6,
		TokenName:         "Hyper Token",
		TokenSymbol:       "HYT",
		TokenDecimals:     6,
		DefaultFeeBps:     5000,
		ProtocolFeeBps:    1000,
	}
}

func stepKeys(steps []Step) []string {
	keys := make([]string, len(steps))
	for i, step := range steps {
		keys[i] = step.Key
	}
	return keys
}

func findStep(t *testing.T, steps []Step, key string) Step {
	t.Helper()
	for _, step := range steps {
		if step.Key == key {
			return step
		}
	}
	t.Fatalf("step %s not in list", key)
	return Step{}
}

func TestStepsDeclaredOrder(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{
		StepFactory, StepRegistry, StepFeePolicy, StepLimiter,
		StepFeeController, StepQuoter, StepTokenIndex, StepBaseToken,
		StepSwapPool, StepRegistryBind,
	}, stepKeys(Steps(testConfig())))

	cfg := testConfig()
	cfg.FaucetAmount = big.NewInt(1_000_000)
	assert.Equal(t, []string{
		StepFactory, StepRegistry, StepFeePolicy, StepLimiter,
		StepFeeController, StepQuoter, StepTokenIndex, StepBaseToken,
		StepSwapPool, StepFaucet, StepRegistryBind,
	}, stepKeys(Steps(cfg)))
}

func TestStepsFullRun(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	sub := &fakeSubmitter{}
	eng, err := NewEngine(Steps(cfg), NewState(), cfg, sub, nil)
	require.NoError(t, err)

	batches := drain(t, eng)
	require.NoError(t, eng.Err())
	require.Len(t, batches, 10)

	final := eng.State()
	for _, key := range []string{
		StepFactory, StepRegistry, StepFeePolicy, StepLimiter,
		StepFeeController, StepQuoter, StepTokenIndex, StepBaseToken, StepSwapPool,
	} {
		addr, err := final.Address(key)
		require.NoError(t, err, key)
		assert.NotEqual(t, common.Address{}, addr, key)
	}

	// The factory deployed deterministically with the deployer in the
	// salt's upper bytes.
	assert.Equal(t, "deterministic", sub.subs[0].kind)
	assert.Equal(t, cfg.Deployer.Bytes(), sub.subs[0].salt[:20])

	// Every proxied step routed through the factory's recorded address.
	factoryAddr, err := final.Address(StepFactory)
	require.NoError(t, err)
	for _, s := range sub.subs {
		if s.kind == "proxy" {
			assert.Equal(t, factoryAddr, s.factory)
		}
	}

	// The bind step registered one identifier per deployed proxy, all
	// against the registry.
	bind, ok := final.Get(StepRegistryBind)
	require.True(t, ok)
	assert.Len(t, bind.TxHashes, 7)
	registryAddr, err := final.Address(StepRegistry)
	require.NoError(t, err)
	for _, s := range sub.subs {
		if s.kind == "call" {
			assert.Equal(t, registryAddr, s.to)
		}
	}
}

func TestStepsResumeDoesNotResubmit(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	first, err := NewEngine(Steps(cfg), NewState(), cfg, &fakeSubmitter{}, nil)
	require.NoError(t, err)
	drain(t, first)
	require.NoError(t, first.Err())

	resub := &fakeSubmitter{}
	second, err := NewEngine(Steps(cfg), first.State(), cfg, resub, nil)
	require.NoError(t, err)
	for _, batch := range drain(t, second) {
		assert.True(t, batch.Skipped, batch.Key)
	}
	require.NoError(t, second.Err())
	assert.Empty(t, resub.subs)
}

func TestStepsSwapPoolRequiresWiring(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	steps := Steps(cfg)
	pool := findStep(t, steps, StepSwapPool)

	st := NewState()
	st.Put(StepFactory, Record{Address: common.HexToAddress("0xF1")})
	st.Put(StepFeePolicy, Record{Address: common.HexToAddress("0xA1")})
	// limiter, fee controller, quoter and token index missing

	_, err := pool.Plan(st, cfg)
	require.ErrorIs(t, err, ErrMissingPrerequisite)
}

func TestStepsProxiedRequireFactory(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	fee := findStep(t, Steps(cfg), StepFeePolicy)

	_, err := fee.Plan(NewState(), cfg)
	require.ErrorIs(t, err, ErrMissingPrerequisite)
}

func TestStepsBindRequiresEveryProxy(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	sub := &fakeSubmitter{}
	eng, err := NewEngine(Steps(cfg), NewState(), cfg, sub, nil)
	require.NoError(t, err)
	drain(t, eng)
	require.NoError(t, eng.Err())

	// Corrupt the state: drop the quoter record and rerun only the bind
	// step. Its plan must fail before submitting anything.
	st := eng.State()
	delete(st.Steps, StepQuoter)
	bind := findStep(t, Steps(cfg), StepRegistryBind)

	before := len(sub.subs)
	_, err = bind.Plan(st, cfg)
	require.ErrorIs(t, err, ErrMissingPrerequisite)
	assert.Len(t, sub.subs, before)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, testConfig().Validate())

	cfg := testConfig()
	cfg.Owner = common.Address{}
	assert.Error(t, cfg.Validate())

	cfg = testConfig()
	cfg.DefaultFeeBps = 10_001
	assert.Error(t, cfg.Validate())

	cfg = testConfig()
	cfg.PoolSymbol = ""
	assert.Error(t, cfg.Validate())
}
