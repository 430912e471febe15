// Package contractregistry wraps the HyperSwap contract registry artifact:
// a proxied name-to-address directory the final migration step populates
// with every deployed protocol contract.
package contractregistry

import (
	_ "embed"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lmittmann/w3"

	"github.com/relforce/hyperswap-contracts/publish"
)

const (
	name            = "ContractRegistry"
	version         = "0.1.0"
	license         = "MIT"
	solidityVersion = "0.8.26"
	evmFork         = "cancun"

	ImplGasLimit     uint64 = 2_200_000
	RegisterGasLimit uint64 = 150_000
)

//go:embed ContractRegistry.bin
var bytecodeHex string

var (
	funcInitialize = w3.MustNewFunc(
		"initialize(address,bytes32[])", "",
	)
	funcRegister = w3.MustNewFunc(
		"register(bytes32,address)", "",
	)
)

type InitArgs struct {
	Owner       common.Address
	Identifiers [][]byte
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
	return funcInitialize.EncodeArgs(args.Owner, toBytes32Slice(args.Identifiers))
}

// EncodeRegister builds the calldata binding identifier to addr. The
// identifier must be one the registry was initialized with.
func EncodeRegister(identifier string, addr common.Address) ([]byte, error) {
	return funcRegister.EncodeArgs(toBytes32([]byte(identifier)), addr)
}

func toBytes32(value []byte) [32]byte {
	return common.BytesToHash(common.RightPadBytes(value, 32))
}

func toBytes32Slice(values [][]byte) [][32]byte {
	out := make([][32]byte, len(values))
	for i, value := range values {
		out[i] = toBytes32(value)
	}
	return out
}
