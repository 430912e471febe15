// Package basetoken wraps the HyperToken artifact, the protocol's mintable
// base settlement token. A zero ExpiresAt deploys a non-expiring token.
package basetoken

import (
	_ "embed"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lmittmann/w3"

	"github.com/relforce/hyperswap-contracts/publish"
)

const (
	name            = "HyperToken"
	version         = "0.1.0"
	license         = "MIT"
	solidityVersion = "0.8.26"
	evmFork         = "cancun"
	ImplGasLimit    = 3_000_000
)

//go:embed HyperToken.bin
var bytecodeHex string

var funcInitialize = w3.MustNewFunc(
	"initialize(string,string,uint8,address,uint256)", "",
)

type InitArgs struct {
	Name      string
	Symbol    string
	Decimals  uint8
	Owner     common.Address
	ExpiresAt *big.Int
}

func Name() string            { return name }
func Version() string         { return version }
func License() string         { return license }
func SolidityVersion() string { return solidityVersion }
func EVMFork() string         { return evmFork }
func MaxGasLimit() uint64     { return ImplGasLimit }

func Bytecode() []byte {
	return publish.MustHexDecode(bytecodeHex)
}

func EncodeInit(args InitArgs) ([]byte, error) {
	return funcInitialize.EncodeArgs(
		args.Name,
		args.Symbol,
		args.Decimals,
		args.Owner,
		args.ExpiresAt,
	)
}
