package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/relforce/hyperswap-contracts/publish"
	"github.com/relforce/hyperswap-contracts/publish/migrate"
)

func newMigrateCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run the deployment migration, resuming from the state file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			return runMigrate(opts)
		},
	}
	registerFlags(cmd, opts)
	return cmd
}

func runMigrate(opts *options) error {
	log := newLogger(opts.Verbose)

	key, deployerAddr, err := parsePrivateKey(opts.PrivateKey)
	if err != nil {
		return err
	}

	cfg, err := opts.migrateConfig(deployerAddr)
	if err != nil {
		return err
	}

	d, err := publish.NewDeployer(opts.RPCURL, opts.ChainID, key, big.NewInt(opts.GasFeeCap), big.NewInt(opts.GasTipCap))
	if err != nil {
		return err
	}
	defer d.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(opts.TimeoutSeconds)*time.Second)
	defer cancel()

	st, err := migrate.LoadState(opts.StateFile)
	if err != nil {
		return err
	}

	// An operator-supplied factory is seeded into the initial state so the
	// factory step skips instead of redeploying.
	if opts.FactoryAddress != "" {
		if err := seedFactory(ctx, d, &st, opts.FactoryAddress); err != nil {
			return err
		}
	}

	persist := func(snapshot migrate.State) error {
		return migrate.WriteState(opts.StateFile, snapshot)
	}

	eng, err := migrate.NewEngine(migrate.Steps(cfg), st, cfg, d, persist)
	if err != nil {
		return err
	}

	log.Info().
		Str("deployer", deployerAddr.Hex()).
		Int("steps", eng.Remaining()).
		Str("state_file", opts.StateFile).
		Msg("starting migration")

	for {
		batch, ok := eng.Next(ctx)
		if !ok {
			break
		}
		if batch.Skipped {
			log.Info().Str("step", batch.Key).Msg("already complete, skipped")
			continue
		}
		for _, res := range batch.Results {
			log.Info().
				Str("step", batch.Key).
				Str("action", res.Name).
				Str("tx", res.TxHash.Hex()).
				Str("address", res.Address.Hex()).
				Msg("submitted")
		}
		if err := waitForBatch(ctx, d, batch, opts.Confirmations, log); err != nil {
			// State already records this step's submissions; the next run's
			// skip check decides whether they landed.
			return fmt.Errorf("step %s: %w", batch.Key, err)
		}
	}

	final := eng.State()
	if err := eng.Err(); err != nil {
		log.Error().Err(err).Strs("recorded", final.Keys()).Msg("migration aborted")
		return err
	}

	log.Info().Msg("migration complete")
	return printState(final)
}

func seedFactory(ctx context.Context, d *publish.Deployer, st *migrate.State, factoryAddress string) error {
	addr, err := parseAddress(factoryAddress)
	if err != nil {
		return err
	}
	code, err := d.CodeAt(ctx, addr)
	if err != nil {
		return err
	}
	if len(code) == 0 {
		return fmt.Errorf("factory address %s has no code", addr.Hex())
	}
	st.Put(migrate.StepFactory, migrate.Record{Address: addr})
	return nil
}

// waitForBatch waits for every transaction in one step's batch, concurrently
// within the batch but never across steps.
func waitForBatch(ctx context.Context, d *publish.Deployer, batch migrate.Batch, confirmations uint64, log zerolog.Logger) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, res := range batch.Results {
		if res.TxHash == (common.Hash{}) {
			continue
		}
		res := res
		g.Go(func() error {
			receipt, err := d.WaitForConfirmations(ctx, res.TxHash, confirmations)
			if err != nil {
				return fmt.Errorf("wait %s: %w", res.Name, err)
			}
			if receipt.Status != types.ReceiptStatusSuccessful {
				return fmt.Errorf("%s failed on-chain: %s", res.Name, res.TxHash.Hex())
			}
			if res.Address != (common.Address{}) {
				if actual, err := publish.ProxyAddressFromReceipt(receipt); err == nil && actual != res.Address {
					return fmt.Errorf("%s: proxy landed at %s, recorded %s", res.Name, actual.Hex(), res.Address.Hex())
				}
			}
			log.Debug().Str("action", res.Name).Str("tx", res.TxHash.Hex()).Msg("confirmed")
			return nil
		})
	}
	return g.Wait()
}

func printState(st migrate.State) error {
	blob, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(blob))
	return nil
}
