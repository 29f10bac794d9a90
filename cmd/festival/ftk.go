package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/xraph/festival"
	"github.com/xraph/festival/types"
)

var ftkCmd = &cobra.Command{
	Use:   "ftk",
	Short: "FTK value ledger",
}

var ftkMintCmd = &cobra.Command{
	Use:   "mint <to> <amount>",
	Short: "Mint FTK (owner only)",
	Args:  cobra.ExactArgs(2),
	RunE: run(func(ctx context.Context, f *festival.Festival, args []string) error {
		from, err := caller(f)
		if err != nil {
			return err
		}
		to, err := parseAddress(f, args[0])
		if err != nil {
			return err
		}
		amount, err := types.ParseFTK(args[1])
		if err != nil {
			return err
		}
		if err := f.MintValue(ctx, from, to, amount); err != nil {
			return err
		}
		out.success("minted %s to %s", amount, to.Hex())
		return nil
	}),
}

var ftkTransferCmd = &cobra.Command{
	Use:   "transfer <to> <amount>",
	Short: "Transfer FTK",
	Args:  cobra.ExactArgs(2),
	RunE: run(func(ctx context.Context, f *festival.Festival, args []string) error {
		from, err := caller(f)
		if err != nil {
			return err
		}
		to, err := parseAddress(f, args[0])
		if err != nil {
			return err
		}
		amount, err := types.ParseFTK(args[1])
		if err != nil {
			return err
		}
		if err := f.TransferValue(ctx, from, to, amount); err != nil {
			return err
		}
		out.success("transferred %s to %s", amount, to.Hex())
		return nil
	}),
}

var ftkApproveCmd = &cobra.Command{
	Use:   "approve <spender> <amount|max>",
	Short: "Set a spender's FTK allowance",
	Args:  cobra.ExactArgs(2),
	RunE: run(func(ctx context.Context, f *festival.Festival, args []string) error {
		owner, err := caller(f)
		if err != nil {
			return err
		}
		spender, err := parseAddress(f, args[0])
		if err != nil {
			return err
		}
		amount := types.MaxAmount()
		if args[1] != "max" {
			if amount, err = types.ParseFTK(args[1]); err != nil {
				return err
			}
		}
		if err := f.ApproveValue(ctx, owner, spender, amount); err != nil {
			return err
		}
		out.success("approved %s for %s", spender.Hex(), describeAllowance(amount))
		return nil
	}),
}

var ftkBalanceCmd = &cobra.Command{
	Use:   "balance [address]",
	Short: "Show an FTK balance",
	Args:  cobra.MaximumNArgs(1),
	RunE: run(func(ctx context.Context, f *festival.Festival, args []string) error {
		addr, err := caller(f)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			if addr, err = parseAddress(f, args[0]); err != nil {
				return err
			}
		}
		b, err := f.ValueBalanceOf(ctx, addr)
		if err != nil {
			return err
		}
		return out.pairs("Balance", [][2]string{
			{"address", addr.Hex()},
			{"balance", b.String()},
		})
	}),
}

var ftkAllowanceCmd = &cobra.Command{
	Use:   "allowance <owner> <spender>",
	Short: "Show an FTK allowance",
	Args:  cobra.ExactArgs(2),
	RunE: run(func(ctx context.Context, f *festival.Festival, args []string) error {
		owner, err := parseAddress(f, args[0])
		if err != nil {
			return err
		}
		spender, err := parseAddress(f, args[1])
		if err != nil {
			return err
		}
		a, err := f.Allowance(ctx, owner, spender)
		if err != nil {
			return err
		}
		return out.pairs("Allowance", [][2]string{
			{"owner", owner.Hex()},
			{"spender", spender.Hex()},
			{"allowance", describeAllowance(a)},
		})
	}),
}

var ftkSupplyCmd = &cobra.Command{
	Use:   "supply",
	Short: "Show the total FTK supply",
	Args:  cobra.NoArgs,
	RunE: run(func(ctx context.Context, f *festival.Festival, _ []string) error {
		s, err := f.ValueTotalSupply(ctx)
		if err != nil {
			return err
		}
		return out.pairs("Supply", [][2]string{{"total supply", s.String()}})
	}),
}

func init() {
	ftkCmd.AddCommand(ftkMintCmd, ftkTransferCmd, ftkApproveCmd, ftkBalanceCmd, ftkAllowanceCmd, ftkSupplyCmd)
}

func describeAllowance(a types.Amount) string {
	if a.IsMax() {
		return "unlimited"
	}
	return a.String()
}
