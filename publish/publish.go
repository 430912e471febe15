package publish

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/lmittmann/w3"
	"github.com/lmittmann/w3/module/eth"
)

const (
	ProxyGasLimit uint64 = 600_000
	CallGasLimit  uint64 = 200_000
)

// ArachnidCreate2Factory is the canonical deterministic-deployment proxy
// present at the same address on virtually every EVM chain.
var ArachnidCreate2Factory = common.HexToAddress("0x4e59b44847b379578588920cA78FbF26c0B4956C")

var (
	funcDeployDeterministicAndCall = w3.MustNewFunc(
		"deployDeterministicAndCall(address,address,bytes32,bytes)", "address",
	)
	funcPredictDeterministicAddress = w3.MustNewFunc(
		"predictDeterministicAddress(bytes32)", "address",
	)
	eventDeployed = w3.MustNewEvent(
		"Deployed(address indexed,address indexed,address indexed)",
	)
)

// Deployer signs and broadcasts deployment and configuration transactions.
// It never waits for confirmation on submission paths; callers poll via
// WaitForReceipt or WaitForConfirmations.
type Deployer struct {
	client    *w3.Client
	signer    types.Signer
	key       *ecdsa.PrivateKey
	address   common.Address
	gasFeeCap *big.Int
	gasTipCap *big.Int
}

func NewDeployer(rpcURL string, chainID int64, privateKey *ecdsa.PrivateKey, gasFeeCap, gasTipCap *big.Int) (*Deployer, error) {
	client, err := w3.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	return &Deployer{
		client:    client,
		signer:    types.NewLondonSigner(big.NewInt(chainID)),
		key:       privateKey,
		address:   crypto.PubkeyToAddress(privateKey.PublicKey),
		gasFeeCap: gasFeeCap,
		gasTipCap: gasTipCap,
	}, nil
}

func (d *Deployer) Address() common.Address {
	return d.address
}

func (d *Deployer) Close() error {
	return d.client.Close()
}

func (d *Deployer) getNonce(ctx context.Context) (uint64, error) {
	var nonce uint64
	if err := d.client.CallCtx(ctx, eth.Nonce(d.address, nil).Returns(&nonce)); err != nil {
		return 0, fmt.Errorf("get nonce: %w", err)
	}
	return nonce, nil
}

func (d *Deployer) sendTx(ctx context.Context, tx *types.Transaction) (common.Hash, error) {
	signedTx, err := types.SignTx(tx, d.signer, d.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign tx: %w", err)
	}
	if err := d.client.CallCtx(ctx, eth.SendTx(signedTx).Returns(nil)); err != nil {
		return common.Hash{}, fmt.Errorf("send tx: %w", err)
	}
	return signedTx.Hash(), nil
}

// Deploy submits a plain CREATE deployment. The contract address is derived
// from the deployer nonce, so it is known before the transaction confirms.
func (d *Deployer) Deploy(ctx context.Context, bytecode []byte, gasLimit uint64) (common.Hash, common.Address, error) {
	nonce, err := d.getNonce(ctx)
	if err != nil {
		return common.Hash{}, common.Address{}, err
	}

	contractAddr := crypto.CreateAddress(d.address, nonce)

	//  EIP-1559 only
	tx := types.NewTx(&types.DynamicFeeTx{
		Nonce:     nonce,
		GasFeeCap: d.gasFeeCap,
		GasTipCap: d.gasTipCap,
		Gas:       gasLimit,
		Data:      bytecode,
	})

	txHash, err := d.sendTx(ctx, tx)
	if err != nil {
		return common.Hash{}, common.Address{}, err
	}
	return txHash, contractAddr, nil
}

// DeployDeterministic submits a CREATE2 deployment through the Arachnid
// factory. The resulting address depends only on salt and bytecode.
func (d *Deployer) DeployDeterministic(ctx context.Context, salt common.Hash, bytecode []byte, gasLimit uint64) (common.Hash, common.Address, error) {
	nonce, err := d.getNonce(ctx)
	if err != nil {
		return common.Hash{}, common.Address{}, err
	}

	calldata := make([]byte, 0, len(salt)+len(bytecode))
	calldata = append(calldata, salt.Bytes()...)
	calldata = append(calldata, bytecode...)

	tx := types.NewTx(&types.DynamicFeeTx{
		Nonce:     nonce,
		To:        &ArachnidCreate2Factory,
		GasFeeCap: d.gasFeeCap,
		GasTipCap: d.gasTipCap,
		Gas:       gasLimit,
		Data:      calldata,
	})

	txHash, err := d.sendTx(ctx, tx)
	if err != nil {
		return common.Hash{}, common.Address{}, err
	}
	return txHash, PredictCreate2Address(ArachnidCreate2Factory, salt, bytecode), nil
}

// DeployProxy deploys an ERC1967 proxy for implementation through the
// factory's deployDeterministicAndCall, initializing it with initData in the
// same transaction. The proxy address is read from the factory's
// predictDeterministicAddress before submission so the caller can record it
// without waiting for the receipt.
func (d *Deployer) DeployProxy(ctx context.Context, factory, implementation, admin common.Address, salt common.Hash, initData []byte) (common.Hash, common.Address, error) {
	var predicted common.Address
	if err := d.client.CallCtx(ctx, eth.CallFunc(factory, funcPredictDeterministicAddress, salt).Returns(&predicted)); err != nil {
		return common.Hash{}, common.Address{}, fmt.Errorf("predict proxy address: %w", err)
	}

	calldata, err := funcDeployDeterministicAndCall.EncodeArgs(implementation, admin, salt, initData)
	if err != nil {
		return common.Hash{}, common.Address{}, fmt.Errorf("encode deployDeterministicAndCall: %w", err)
	}

	nonce, err := d.getNonce(ctx)
	if err != nil {
		return common.Hash{}, common.Address{}, err
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		Nonce:     nonce,
		To:        &factory,
		GasFeeCap: d.gasFeeCap,
		GasTipCap: d.gasTipCap,
		Gas:       ProxyGasLimit,
		Data:      calldata,
	})

	txHash, err := d.sendTx(ctx, tx)
	if err != nil {
		return common.Hash{}, common.Address{}, err
	}
	return txHash, predicted, nil
}

// Call submits a configuration transaction against an already-deployed
// contract.
func (d *Deployer) Call(ctx context.Context, to common.Address, calldata []byte, gasLimit uint64) (common.Hash, error) {
	nonce, err := d.getNonce(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		Nonce:     nonce,
		To:        &to,
		GasFeeCap: d.gasFeeCap,
		GasTipCap: d.gasTipCap,
		Gas:       gasLimit,
		Data:      calldata,
	})

	return d.sendTx(ctx, tx)
}

func (d *Deployer) CodeAt(ctx context.Context, addr common.Address) ([]byte, error) {
	var code []byte
	if err := d.client.CallCtx(ctx, eth.Code(addr, nil).Returns(&code)); err != nil {
		return nil, fmt.Errorf("get code: %w", err)
	}
	return code, nil
}

func (d *Deployer) WaitForReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		var receipt types.Receipt
		err := d.client.CallCtx(ctx, eth.TxReceipt(txHash).Returns(&receipt))
		if err == nil {
			return &receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// WaitForConfirmations blocks until the transaction is mined and the chain
// head is at least confirmations blocks past its inclusion block.
func (d *Deployer) WaitForConfirmations(ctx context.Context, txHash common.Hash, confirmations uint64) (*types.Receipt, error) {
	receipt, err := d.WaitForReceipt(ctx, txHash)
	if err != nil {
		return nil, err
	}
	if confirmations <= 1 {
		return receipt, nil
	}

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		var head big.Int
		if err := d.client.CallCtx(ctx, eth.BlockNumber().Returns(&head)); err != nil {
			return nil, fmt.Errorf("get block number: %w", err)
		}
		if head.Uint64() >= receipt.BlockNumber.Uint64()+confirmations-1 {
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// GenerateSalt derives a CREATE2 salt from the deployer address and a label.
// The deployer occupies the upper 20 bytes because the ERC1967 factory
// requires the caller's address there.
func GenerateSalt(deployer common.Address, label string) common.Hash {
	var salt common.Hash
	copy(salt[:20], deployer.Bytes())
	copy(salt[20:], crypto.Keccak256([]byte(label))[:12])
	return salt
}

// PredictCreate2Address computes the EIP-1014 address for initCode deployed
// by factory with salt.
func PredictCreate2Address(factory common.Address, salt common.Hash, initCode []byte) common.Address {
	return crypto.CreateAddress2(factory, salt, crypto.Keccak256(initCode))
}

// ProxyAddressFromReceipt extracts the proxy address from the factory's
// Deployed event.
func ProxyAddressFromReceipt(receipt *types.Receipt) (common.Address, error) {
	for _, log := range receipt.Logs {
		var (
			proxy          common.Address
			implementation common.Address
			admin          common.Address
		)
		if err := eventDeployed.DecodeArgs(log, &proxy, &implementation, &admin); err == nil {
			return proxy, nil
		}
	}
	return common.Address{}, errors.New("Deployed event not found in receipt logs")
}

func MustHexDecode(hexStr string) []byte {
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		panic(fmt.Sprintf("decode hex: %v", err))
	}
	return b
}
