package main

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/omni-labs/bridge/core"
)

func transferCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "transfer"}
	cmd.AddCommand(initTransferCmd())
	cmd.AddCommand(getTransferCmd())
	cmd.AddCommand(signTransferCmd())
	return cmd
}

func initTransferCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "init",
		Short: "start a transfer out of the home chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			sender, _ := cmd.Flags().GetString("sender")
			token, _ := cmd.Flags().GetString("token")
			recipient, _ := cmd.Flags().GetString("recipient")
			amountStr, _ := cmd.Flags().GetString("amount")
			feeStr, _ := cmd.Flags().GetString("fee")
			storageOwner, _ := cmd.Flags().GetString("storage-owner")

			senderAddr, err := core.ParseOmniAddress(sender)
			if err != nil {
				return err
			}
			tokenAddr, err := core.ParseOmniAddress(token)
			if err != nil {
				return err
			}
			recipientAddr, err := core.ParseOmniAddress(recipient)
			if err != nil {
				return err
			}
			amount, ok := new(big.Int).SetString(amountStr, 10)
			if !ok {
				return fmt.Errorf("invalid amount %q", amountStr)
			}
			fee := big.NewInt(0)
			if feeStr != "" {
				fee, ok = new(big.Int).SetString(feeStr, 10)
				if !ok {
					return fmt.Errorf("invalid fee %q", feeStr)
				}
			}

			id, err := locker.InitTransfer(senderAddr, tokenAddr, amount, recipientAddr,
				core.Fee{Fee: fee, NativeFee: big.NewInt(0)}, "", storageOwner)
			if err != nil {
				return err
			}
			fmt.Println(id.String())
			return nil
		},
	}
	c.Flags().String("sender", "", "sender OmniAddress, e.g. home:alice")
	c.Flags().String("token", "", "token OmniAddress")
	c.Flags().String("recipient", "", "recipient OmniAddress")
	c.Flags().String("amount", "", "amount in the token's home precision")
	c.Flags().String("fee", "0", "token-denominated relayer fee")
	c.Flags().String("storage-owner", "", "account paying storage; blank derives a virtual account")
	return c
}

func getTransferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [chain] [nonce]",
		Short: "print a pending transfer record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			chain, err := core.ParseChainKind(args[0])
			if err != nil {
				return err
			}
			var nonce uint64
			if _, err := fmt.Sscanf(args[1], "%d", &nonce); err != nil {
				return fmt.Errorf("invalid nonce %q", args[1])
			}
			msg, err := locker.GetTransferMessage(core.TransferId{OriginChain: chain, OriginNonce: nonce})
			if err != nil {
				return err
			}
			fmt.Printf("%+v\n", msg)
			return nil
		},
	}
}

func signTransferCmd() *cobra.Command {
	var feeRecipient string
	cmd := &cobra.Command{
		Use:   "sign [chain] [nonce]",
		Short: "print the payload a destination-chain signer must sign",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			chain, err := core.ParseChainKind(args[0])
			if err != nil {
				return err
			}
			var nonce uint64
			if _, err := fmt.Sscanf(args[1], "%d", &nonce); err != nil {
				return fmt.Errorf("invalid nonce %q", args[1])
			}
			var fr *string
			if feeRecipient != "" {
				fr = &feeRecipient
			}
			payload, err := locker.SignTransfer(core.TransferId{OriginChain: chain, OriginNonce: nonce}, fr)
			if err != nil {
				return err
			}
			fmt.Printf("%x\n", payload)
			return nil
		},
	}
	cmd.Flags().StringVar(&feeRecipient, "fee-recipient", "", "fee recipient to bind into the signed payload (unset when empty)")
	return cmd
}
