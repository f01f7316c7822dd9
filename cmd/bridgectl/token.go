package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/omni-labs/bridge/core"
)

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "token"}
	cmd.AddCommand(bindTokenCmd())
	cmd.AddCommand(tokenAddressCmd())
	cmd.AddCommand(deployNativeTokenCmd())
	cmd.AddCommand(addDeployedTokensCmd())
	return cmd
}

func bindTokenCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "bind [tokenID] [chain-address]",
		Short: "bind a chain-side token address to a home tokenID (test/offline use; production binds via a verified deploy proof)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			decimals, _ := cmd.Flags().GetUint8("decimals")
			originDecimals, _ := cmd.Flags().GetUint8("origin-decimals")

			addr, err := core.ParseOmniAddress(args[1])
			if err != nil {
				return err
			}
			return locker.Registry.BindToken(args[0], addr, core.Decimals(decimals), core.Decimals(originDecimals))
		},
	}
	c.Flags().Uint8("decimals", 18, "decimals on the bound chain")
	c.Flags().Uint8("origin-decimals", 18, "decimals on the token's origin chain")
	return c
}

func deployNativeTokenCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "deploy-native [chain]",
		Short: "mint the home-bridge accounting entry for a foreign chain's native coin (DAO-only, test/offline use)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			decimals, _ := cmd.Flags().GetUint8("decimals")

			chain, err := core.ParseChainKind(args[0])
			if err != nil {
				return err
			}
			tokenID, err := locker.DeployNativeToken(chain, core.Decimals(decimals))
			if err != nil {
				return err
			}
			fmt.Println(tokenID)
			return nil
		},
	}
	c.Flags().Uint8("decimals", 18, "native coin's decimals on its own chain")
	return c
}

func addDeployedTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-deployed [tokenID] [chain-address] [decimals] ...",
		Short: "batch-register already-deployed wrapped tokens, skipping deploy_token's proof verification (DAO-only)",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args)%3 != 0 {
				return fmt.Errorf("expected triples of [tokenID chain-address decimals], got %d args", len(args))
			}
			var batch []core.DeployedTokenArg
			for i := 0; i < len(args); i += 3 {
				addr, err := core.ParseOmniAddress(args[i+1])
				if err != nil {
					return err
				}
				var decimals uint8
				if _, err := fmt.Sscanf(args[i+2], "%d", &decimals); err != nil {
					return fmt.Errorf("invalid decimals %q", args[i+2])
				}
				batch = append(batch, core.DeployedTokenArg{
					TokenID:  args[i],
					Address:  addr,
					Decimals: core.Decimals(decimals),
				})
			}
			return locker.AddDeployedTokens(batch)
		},
	}
}

func tokenAddressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "address [chain] [tokenID]",
		Short: "look up a tokenID's bound address on chain",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			chain, err := core.ParseChainKind(args[0])
			if err != nil {
				return err
			}
			addr, ok := locker.GetTokenAddress(chain, args[1])
			if !ok {
				return fmt.Errorf("token %q not bound on %s", args[1], chain)
			}
			fmt.Println(addr.String())
			return nil
		},
	}
}
