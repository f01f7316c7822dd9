package main

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"
)

func storageCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "storage"}
	cmd.AddCommand(storageDepositCmd())
	cmd.AddCommand(storageBalanceCmd())
	return cmd
}

func storageDepositCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deposit [account] [amount]",
		Short: "credit an account's storage balance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, ok := new(big.Int).SetString(args[1], 10)
			if !ok {
				return fmt.Errorf("invalid amount %q", args[1])
			}
			locker.StorageDeposit(args[0], amount)
			return nil
		},
	}
}

func storageBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance [account]",
		Short: "print an account's storage balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(locker.StorageBalanceOf(args[0]).String())
			return nil
		},
	}
}
