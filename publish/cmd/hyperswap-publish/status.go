package main

import (
	"github.com/spf13/cobra"

	"github.com/relforce/hyperswap-contracts/publish/migrate"
)

func newStatusCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the recorded migration state",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := migrate.LoadState(opts.StateFile)
			if err != nil {
				return err
			}
			return printState(st)
		},
	}
	cmd.Flags().StringVar(&opts.StateFile, "state-file", opts.StateFile, "migration state file")
	return cmd
}
