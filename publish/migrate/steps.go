package migrate

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/relforce/hyperswap-contracts/publish"
	"github.com/relforce/hyperswap-contracts/publish/contracts/basetoken"
	"github.com/relforce/hyperswap-contracts/publish/contracts/contractregistry"
	"github.com/relforce/hyperswap-contracts/publish/contracts/erc1967factory"
	"github.com/relforce/hyperswap-contracts/publish/contracts/ethfaucet"
	"github.com/relforce/hyperswap-contracts/publish/contracts/feepolicy"
	"github.com/relforce/hyperswap-contracts/publish/contracts/limiter"
	"github.com/relforce/hyperswap-contracts/publish/contracts/protocolfeecontroller"
	"github.com/relforce/hyperswap-contracts/publish/contracts/relativequoter"
	"github.com/relforce/hyperswap-contracts/publish/contracts/swappool"
	"github.com/relforce/hyperswap-contracts/publish/contracts/tokenindex"
)

// Step keys, stable across runs and releases. Renaming one orphans the
// recorded output in every existing state file.
const (
	StepFactory       = "erc1967factory"
	StepRegistry      = "contractregistry"
	StepFeePolicy     = "feepolicy"
	StepLimiter       = "limiter"
	StepFeeController = "protocolfeecontroller"
	StepQuoter        = "relativequoter"
	StepTokenIndex    = "tokenindex"
	StepBaseToken     = "basetoken"
	StepSwapPool      = "swappool"
	StepFaucet        = "ethfaucet"
	StepRegistryBind  = "registry-bind"
)

// registryBindings maps registry identifiers to the step whose proxy gets
// bound under them, in binding order.
var registryBindings = []struct {
	Identifier string
	Key        string
}{
	{"FeePolicy", StepFeePolicy},
	{"Limiter", StepLimiter},
	{"ProtocolFeeController", StepFeeController},
	{"RelativeQuoter", StepQuoter},
	{"TokenSymbolIndex", StepTokenIndex},
	{"BaseToken", StepBaseToken},
	{"SwapPool", StepSwapPool},
	{"EthFaucet", StepFaucet},
}

// Steps returns the fixed HyperSwap deployment sequence. Order is
// load-bearing: later plans read earlier outputs from state. The faucet
// step is present only when cfg enables it; everything else is
// unconditional.
func Steps(cfg Config) []Step {
	faucet := cfg.FaucetAmount != nil && cfg.FaucetAmount.Sign() > 0

	steps := []Step{
		{
			Key:  StepFactory,
			Done: addressRecorded,
			Plan: func(st State, cfg Config) ([]Action, error) {
				salt := publish.GenerateSalt(cfg.Deployer, "ERC1967Factory")
				return []Action{DeployAction{
					Name:     "ERC1967Factory",
					Bytecode: erc1967factory.Bytecode(),
					GasLimit: erc1967factory.GasLimit,
					Salt:     &salt,
				}}, nil
			},
		},
		proxied(StepRegistry, "ContractRegistry", contractregistry.Bytecode, contractregistry.ImplGasLimit,
			func(st State, cfg Config) ([]byte, error) {
				return contractregistry.EncodeInit(contractregistry.InitArgs{
					Owner:       cfg.Owner,
					Identifiers: registryIdentifiers(),
				})
			}),
		proxied(StepFeePolicy, "FeePolicy", feepolicy.Bytecode, feepolicy.ImplGasLimit,
			func(st State, cfg Config) ([]byte, error) {
				return feepolicy.EncodeInit(feepolicy.InitArgs{
					Owner:      cfg.Owner,
					DefaultFee: big.NewInt(cfg.DefaultFeeBps),
				})
			}),
		proxied(StepLimiter, "Limiter", limiter.Bytecode, limiter.ImplGasLimit,
			func(st State, cfg Config) ([]byte, error) {
				return limiter.EncodeInit(limiter.InitArgs{Owner: cfg.Owner})
			}),
		proxied(StepFeeController, "ProtocolFeeController", protocolfeecontroller.Bytecode, protocolfeecontroller.ImplGasLimit,
			func(st State, cfg Config) ([]byte, error) {
				return protocolfeecontroller.EncodeInit(protocolfeecontroller.InitArgs{
					Owner:            cfg.Owner,
					InitialFee:       big.NewInt(cfg.ProtocolFeeBps),
					InitialRecipient: cfg.ProtocolRecipient,
				})
			}),
		proxied(StepQuoter, "RelativeQuoter", relativequoter.Bytecode, relativequoter.ImplGasLimit,
			func(st State, cfg Config) ([]byte, error) {
				return relativequoter.EncodeInit(relativequoter.InitArgs{Owner: cfg.Owner})
			}),
		proxied(StepTokenIndex, "TokenSymbolIndex", tokenindex.Bytecode, tokenindex.ImplGasLimit,
			func(st State, cfg Config) ([]byte, error) {
				return tokenindex.EncodeInit(tokenindex.InitArgs{Owner: cfg.Owner})
			}),
		proxied(StepBaseToken, "BaseToken", basetoken.Bytecode, basetoken.ImplGasLimit,
			func(st State, cfg Config) ([]byte, error) {
				return basetoken.EncodeInit(basetoken.InitArgs{
					Name:      cfg.TokenName,
					Symbol:    cfg.TokenSymbol,
					Decimals:  cfg.TokenDecimals,
					Owner:     cfg.Owner,
					ExpiresAt: new(big.Int).SetUint64(cfg.TokenExpiresAt),
				})
			}),
		proxied(StepSwapPool, "SwapPool", swappool.Bytecode, swappool.ImplGasLimit,
			func(st State, cfg Config) ([]byte, error) {
				feePolicy, err := st.Address(StepFeePolicy)
				if err != nil {
					return nil, err
				}
				tokenLimiter, err := st.Address(StepLimiter)
				if err != nil {
					return nil, err
				}
				feeController, err := st.Address(StepFeeController)
				if err != nil {
					return nil, err
				}
				quoter, err := st.Address(StepQuoter)
				if err != nil {
					return nil, err
				}
				tokenIndex, err := st.Address(StepTokenIndex)
				if err != nil {
					return nil, err
				}
				return swappool.EncodeInit(swappool.InitArgs{
					Name:                  cfg.PoolName,
					Symbol:                cfg.PoolSymbol,
					Decimals:              cfg.PoolDecimals,
					Owner:                 cfg.Owner,
					FeePolicy:             feePolicy,
					FeeAddress:            cfg.FeeAddress,
					TokenIndex:            tokenIndex,
					TokenLimiter:          tokenLimiter,
					Quoter:                quoter,
					ProtocolFeeController: feeController,
				})
			}),
	}

	if faucet {
		steps = append(steps, proxied(StepFaucet, "EthFaucet", ethfaucet.Bytecode, ethfaucet.ImplGasLimit,
			func(st State, cfg Config) ([]byte, error) {
				return ethfaucet.EncodeInit(ethfaucet.InitArgs{
					Owner:  cfg.Owner,
					Amount: cfg.FaucetAmount,
				})
			}))
	}

	bindings := registryBindings
	if !faucet {
		bindings = bindings[:len(bindings)-1]
	}
	wantBinds := len(bindings)
	steps = append(steps, Step{
		Key: StepRegistryBind,
		Done: func(rec Record) bool {
			return len(rec.TxHashes) >= wantBinds
		},
		Plan: func(st State, cfg Config) ([]Action, error) {
			registry, err := st.Address(StepRegistry)
			if err != nil {
				return nil, err
			}
			actions := make([]Action, 0, len(bindings))
			for _, binding := range bindings {
				addr, err := st.Address(binding.Key)
				if err != nil {
					return nil, err
				}
				calldata, err := contractregistry.EncodeRegister(binding.Identifier, addr)
				if err != nil {
					return nil, err
				}
				actions = append(actions, CallAction{
					Name:     "register:" + binding.Identifier,
					To:       registry,
					Calldata: calldata,
					GasLimit: contractregistry.RegisterGasLimit,
				})
			}
			return actions, nil
		},
	})

	return steps
}

func addressRecorded(rec Record) bool {
	return rec.HasAddress()
}

// proxied builds the standard two-action step: deploy the implementation,
// then deploy-and-initialize its ERC1967 proxy. Done demands both
// addresses so a crash between the two submissions is not mistaken for
// completion.
func proxied(key, name string, bytecode func() []byte, gasLimit uint64, initData func(State, Config) ([]byte, error)) Step {
	return Step{
		Key: key,
		Done: func(rec Record) bool {
			return rec.HasAddress() && rec.Implementation != (common.Address{})
		},
		Plan: func(st State, cfg Config) ([]Action, error) {
			factory, err := st.Address(StepFactory)
			if err != nil {
				return nil, err
			}
			data, err := initData(st, cfg)
			if err != nil {
				return nil, err
			}
			return []Action{
				DeployAction{Name: name, Bytecode: bytecode(), GasLimit: gasLimit},
				ProxyAction{
					Name:     name + "Proxy",
					Factory:  factory,
					Admin:    cfg.Admin,
					Salt:     publish.GenerateSalt(cfg.Deployer, name),
					InitData: data,
				},
			}, nil
		},
	}
}

func registryIdentifiers() [][]byte {
	out := make([][]byte, len(registryBindings))
	for i, binding := range registryBindings {
		out[i] = []byte(binding.Identifier)
	}
	return out
}
