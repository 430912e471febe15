package erc1967factory

import (
	_ "embed"

	"github.com/relforce/hyperswap-contracts/publish"
)

const GasLimit uint64 = 1_200_000

//go:embed ERC1967Factory.bin
var bytecodeHex string

func Bytecode() []byte {
	return publish.MustHexDecode(bytecodeHex)
}
