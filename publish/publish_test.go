package publish

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSalt(t *testing.T) {
	t.Parallel()

	deployer := common.HexToAddress("0x00000000000000000000000000000000000000D1")
	salt := GenerateSalt(deployer, "SwapPool")

	// The factory demands the caller in the salt's upper 20 bytes.
	assert.Equal(t, deployer.Bytes(), salt[:20])

	assert.Equal(t, salt, GenerateSalt(deployer, "SwapPool"))
	assert.NotEqual(t, salt, GenerateSalt(deployer, "FeePolicy"))
	assert.NotEqual(t, salt, GenerateSalt(common.HexToAddress("0xD2"), "SwapPool"))
}

func TestPredictCreate2Address(t *testing.T) {
	t.Parallel()

	// EIP-1014 example 1.
	got := PredictCreate2Address(common.Address{}, common.Hash{}, []byte{0x00})
	assert.Equal(t, common.HexToAddress("0x4D1A2e2bB4F88F0250f26Ffff098B0b30B26BF38"), got)
}

func TestMustHexDecode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []byte{0x60, 0x80}, MustHexDecode("6080"))
	require.Panics(t, func() { MustHexDecode("zz") })
}
