package main

import (
	"github.com/spf13/cobra"

	"github.com/omni-labs/bridge/core"
)

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "admin"}
	cmd.AddCommand(addFactoryCmd())
	cmd.AddCommand(addProverCmd())
	return cmd
}

func addFactoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-factory [chain] [address]",
		Short: "register a destination chain's wrapped-token factory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			chain, err := core.ParseChainKind(args[0])
			if err != nil {
				return err
			}
			addr, err := core.ParseOmniAddress(args[1])
			if err != nil {
				return err
			}
			locker.AddFactory(chain, addr)
			return nil
		},
	}
}

func addProverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-prover [chain] [prover-account]",
		Short: "register the prover responsible for verifying proofs from chain",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			chain, err := core.ParseChainKind(args[0])
			if err != nil {
				return err
			}
			locker.AddProver(chain, args[1])
			return nil
		},
	}
}
