// Package swappool wraps the SwapPool artifact, the central exchange
// contract. Its initializer is wired to every other protocol proxy, so the
// pool deploys last among the contracts.
package swappool

import (
	_ "embed"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lmittmann/w3"

	"github.com/relforce/hyperswap-contracts/publish"
)

const (
	name            = "SwapPool"
	version         = "0.1.0"
	license         = "MIT"
	solidityVersion = "0.8.26"
	evmFork         = "cancun"
	ImplGasLimit    = 3_800_000
)

//go:embed SwapPool.bin
var bytecodeHex string

var funcInitialize = w3.MustNewFunc(
	"initialize(string,string,uint8,address,address,address,address,address,address,address)", "",
)

type InitArgs struct {
	Name                  string
	Symbol                string
	Decimals              uint8
	Owner                 common.Address
	FeePolicy             common.Address
	FeeAddress            common.Address
	TokenIndex            common.Address
	TokenLimiter          common.Address
	Quoter                common.Address
	ProtocolFeeController common.Address
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
		args.FeePolicy,
		args.FeeAddress,
		args.TokenIndex,
		args.TokenLimiter,
		args.Quoter,
		args.ProtocolFeeController,
	)
}
