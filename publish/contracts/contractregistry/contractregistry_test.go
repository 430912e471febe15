package contractregistry

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRegisterPadsIdentifier(t *testing.T) {
	t.Parallel()

	addr := common.HexToAddress("0x00000000000000000000000000000000000000A1")
	calldata, err := EncodeRegister("FeePolicy", addr)
	require.NoError(t, err)

	// selector + bytes32 identifier + abi-encoded address
	require.Len(t, calldata, 4+32+32)
	assert.Equal(t, common.RightPadBytes([]byte("FeePolicy"), 32), calldata[4:36])
	assert.Equal(t, addr.Bytes(), calldata[36+12:])
}
