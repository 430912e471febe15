package main

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	"github.com/relforce/hyperswap-contracts/publish/migrate"
)

// options is the full CLI surface. Environment variables provide defaults,
// flags override them.
type options struct {
	RPCURL         string `env:"RPC_URL"`
	ChainID        int64  `env:"CHAIN_ID"`
	PrivateKey     string `env:"PRIVATE_KEY"`
	StateFile      string `env:"STATE_FILE" envDefault:"hyperswap-state.json"`
	Owner          string `env:"OWNER"`
	Admin          string `env:"ADMIN"`
	FactoryAddress string `env:"FACTORY_ADDRESS"`
	GasFeeCap      int64  `env:"GAS_FEE_CAP" envDefault:"2000000000"`
	GasTipCap      int64  `env:"GAS_TIP_CAP" envDefault:"1000000000"`
	Confirmations  uint64 `env:"CONFIRMATIONS" envDefault:"1"`
	TimeoutSeconds int    `env:"TIMEOUT_SECONDS" envDefault:"600"`

	PoolName     string `env:"POOL_NAME" envDefault:"HyperSwap Pool"`
	PoolSymbol   string `env:"POOL_SYMBOL" envDefault:"HSPp"`
	PoolDecimals uint   `env:"POOL_DECIMALS" envDefault:"6"`

	TokenName      string `env:"TOKEN_NAME" envDefault:"Hyper Token"`
	TokenSymbol    string `env:"TOKEN_SYMBOL" envDefault:"HYT"`
	TokenDecimals  uint   `env:"TOKEN_DECIMALS" envDefault:"6"`
	TokenExpiresAt uint64 `env:"TOKEN_EXPIRES_AT"`

	DefaultFeeBps     int64  `env:"DEFAULT_FEE_BPS" envDefault:"5000"`
	ProtocolFeeBps    int64  `env:"PROTOCOL_FEE_BPS" envDefault:"1000"`
	ProtocolRecipient string `env:"PROTOCOL_RECIPIENT"`
	FeeAddress        string `env:"FEE_ADDRESS"`
	FaucetAmount      uint64 `env:"FAUCET_AMOUNT"`

	Verbose bool `env:"VERBOSE"`
}

func loadOptions() (*options, error) {
	opts := &options{}
	if err := env.Parse(opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return opts, nil
}

func registerFlags(cmd *cobra.Command, opts *options) {
	fs := cmd.Flags()
	fs.StringVar(&opts.RPCURL, "rpc-url", opts.RPCURL, "RPC URL")
	fs.Int64Var(&opts.ChainID, "chain-id", opts.ChainID, "chain id")
	fs.StringVar(&opts.PrivateKey, "private-key", opts.PrivateKey, "deployer private key hex")
	fs.StringVar(&opts.StateFile, "state-file", opts.StateFile, "migration state file")
	fs.StringVar(&opts.Owner, "owner", opts.Owner, "owner address (default deployer)")
	fs.StringVar(&opts.Admin, "admin", opts.Admin, "proxy admin (default owner)")
	fs.StringVar(&opts.FactoryAddress, "factory-address", opts.FactoryAddress, "existing ERC1967Factory address")
	fs.Int64Var(&opts.GasFeeCap, "gas-fee-cap", opts.GasFeeCap, "EIP-1559 fee cap")
	fs.Int64Var(&opts.GasTipCap, "gas-tip-cap", opts.GasTipCap, "EIP-1559 tip cap")
	fs.Uint64Var(&opts.Confirmations, "confirmations", opts.Confirmations, "confirmations to wait per transaction")
	fs.IntVar(&opts.TimeoutSeconds, "timeout-seconds", opts.TimeoutSeconds, "overall run timeout in seconds")
	fs.StringVar(&opts.PoolName, "pool-name", opts.PoolName, "pool name")
	fs.StringVar(&opts.PoolSymbol, "pool-symbol", opts.PoolSymbol, "pool symbol")
	fs.UintVar(&opts.PoolDecimals, "pool-decimals", opts.PoolDecimals, "pool decimals")
	fs.StringVar(&opts.TokenName, "token-name", opts.TokenName, "base token name")
	fs.StringVar(&opts.TokenSymbol, "token-symbol", opts.TokenSymbol, "base token symbol")
	fs.UintVar(&opts.TokenDecimals, "token-decimals", opts.TokenDecimals, "base token decimals")
	fs.Uint64Var(&opts.TokenExpiresAt, "token-expires-at", opts.TokenExpiresAt, "base token expiry timestamp")
	fs.Int64Var(&opts.DefaultFeeBps, "default-fee-bps", opts.DefaultFeeBps, "fee policy default, basis points")
	fs.Int64Var(&opts.ProtocolFeeBps, "protocol-fee-bps", opts.ProtocolFeeBps, "protocol fee, basis points")
	fs.StringVar(&opts.ProtocolRecipient, "protocol-recipient", opts.ProtocolRecipient, "protocol fee recipient (default owner)")
	fs.StringVar(&opts.FeeAddress, "fee-address", opts.FeeAddress, "pool fee address (default owner)")
	fs.Uint64Var(&opts.FaucetAmount, "faucet-amount", opts.FaucetAmount, "faucet amount, enables the faucet step when set")
	fs.BoolVar(&opts.Verbose, "verbose", opts.Verbose, "debug logging")
}

func (o *options) validate() error {
	if o.RPCURL == "" || o.ChainID == 0 || o.PrivateKey == "" {
		return errors.New("rpc-url, chain-id and private-key are required")
	}
	return nil
}

// migrateConfig resolves the option strings into the engine's immutable
// config, defaulting owner to the deployer and admin, fee address and
// protocol recipient to the owner, the way operators expect.
func (o *options) migrateConfig(deployer common.Address) (migrate.Config, error) {
	owner := deployer
	var err error
	if o.Owner != "" {
		if owner, err = parseAddress(o.Owner); err != nil {
			return migrate.Config{}, err
		}
	}

	admin := owner
	if o.Admin != "" {
		if admin, err = parseAddress(o.Admin); err != nil {
			return migrate.Config{}, err
		}
	}

	feeAddress := owner
	if o.FeeAddress != "" {
		if feeAddress, err = parseAddress(o.FeeAddress); err != nil {
			return migrate.Config{}, err
		}
	}

	recipient := owner
	if o.ProtocolRecipient != "" {
		if recipient, err = parseAddress(o.ProtocolRecipient); err != nil {
			return migrate.Config{}, err
		}
	}

	var faucetAmount *big.Int
	if o.FaucetAmount > 0 {
		faucetAmount = new(big.Int).SetUint64(o.FaucetAmount)
	}

	cfg := migrate.Config{
		Deployer:          deployer,
		Owner:             owner,
		Admin:             admin,
		FeeAddress:        feeAddress,
		ProtocolRecipient: recipient,
		PoolName:          o.PoolName,
		PoolSymbol:        o.PoolSymbol,
		PoolDecimals:      uint8(o.PoolDecimals),
		TokenName:         o.TokenName,
		TokenSymbol:       o.TokenSymbol,
		TokenDecimals:     uint8(o.TokenDecimals),
		TokenExpiresAt:    o.TokenExpiresAt,
		DefaultFeeBps:     o.DefaultFeeBps,
		ProtocolFeeBps:    o.ProtocolFeeBps,
		FaucetAmount:      faucetAmount,
	}
	return cfg, cfg.Validate()
}

func parsePrivateKey(v string) (*ecdsa.PrivateKey, common.Address, error) {
	v = strings.TrimPrefix(strings.TrimSpace(v), "0x")
	key, err := crypto.HexToECDSA(v)
	if err != nil {
		return nil, common.Address{}, fmt.Errorf("parse private key: %w", err)
	}
	return key, crypto.PubkeyToAddress(key.PublicKey), nil
}

func parseAddress(v string) (common.Address, error) {
	if !common.IsHexAddress(v) {
		return common.Address{}, fmt.Errorf("invalid address: %s", v)
	}
	return common.HexToAddress(v), nil
}
