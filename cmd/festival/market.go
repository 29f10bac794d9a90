package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/xraph/festival"
	"github.com/xraph/festival/types"
)

var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "Secondary marketplace",
}

var marketListCmd = &cobra.Command{
	Use:   "list <unit-id> <price>",
	Short: "List a unit for resale (at most 110% of its last price)",
	Args:  cobra.ExactArgs(2),
	RunE: run(func(ctx context.Context, f *festival.Festival, args []string) error {
		seller, err := caller(f)
		if err != nil {
			return err
		}
		unitID, err := parseUnitID(args[0])
		if err != nil {
			return err
		}
		price, err := types.ParseFTK(args[1])
		if err != nil {
			return err
		}
		l, err := f.SetListing(ctx, seller, unitID, price)
		if err != nil {
			return err
		}
		out.success("unit %d listed at %s", unitID, l.AskPrice)
		return nil
	}),
}

var marketCancelCmd = &cobra.Command{
	Use:   "cancel <unit-id>",
	Short: "Withdraw a listing",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(ctx context.Context, f *festival.Festival, args []string) error {
		seller, err := caller(f)
		if err != nil {
			return err
		}
		unitID, err := parseUnitID(args[0])
		if err != nil {
			return err
		}
		if _, err := f.CancelListing(ctx, seller, unitID); err != nil {
			return err
		}
		out.success("listing of unit %d withdrawn", unitID)
		return nil
	}),
}

var marketPriceCmd = &cobra.Command{
	Use:   "price <unit-id>",
	Short: "Show a unit's ask and price cap",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(ctx context.Context, f *festival.Festival, args []string) error {
		unitID, err := parseUnitID(args[0])
		if err != nil {
			return err
		}
		v, err := f.Unit(ctx, unitID)
		if err != nil {
			return err
		}
		if v.Listing == nil {
			return fmt.Errorf("unit %d: %w", unitID, festival.ErrNoActiveListing)
		}
		return out.value("Listing", v.Listing, [][2]string{
			{"unit", strconv.FormatUint(unitID, 10)},
			{"seller", v.Listing.Seller.Hex()},
			{"ask", v.Listing.AskPrice.String()},
			{"price cap", v.PriceCap.String()},
		})
	}),
}

var marketBuyCmd = &cobra.Command{
	Use:   "buy <unit-id> <price>",
	Short: "Buy a listed unit at exactly its ask",
	Long: `Buy a listed unit. The price must equal the current ask.

The buyer must first approve the engine address for the ask:
  festival ftk approve engine 11 --as <buyer>
  festival market buy 1 11 --as <buyer>`,
	Args: cobra.ExactArgs(2),
	RunE: run(func(ctx context.Context, f *festival.Festival, args []string) error {
		buyer, err := caller(f)
		if err != nil {
			return err
		}
		unitID, err := parseUnitID(args[0])
		if err != nil {
			return err
		}
		price, err := types.ParseFTK(args[1])
		if err != nil {
			return err
		}
		s, err := f.PurchaseListing(ctx, buyer, unitID, price)
		if err != nil {
			return err
		}
		out.success("bought unit %d for %s", unitID, s.Price)
		return out.value("Settlement", s, [][2]string{
			{"settlement", s.ID.String()},
			{"seller", s.Seller.Hex()},
			{"buyer", s.Buyer.Hex()},
			{"price", s.Price.String()},
			{"fee", s.Fee.String()},
			{"proceeds", s.Proceeds.String()},
		})
	}),
}

var marketMonetiseCmd = &cobra.Command{
	Use:     "monetise <rate>",
	Aliases: []string{"monetize"},
	Short:   "Set the marketplace fee rate in percent (owner only)",
	Args:    cobra.ExactArgs(1),
	RunE: run(func(ctx context.Context, f *festival.Festival, args []string) error {
		by, err := caller(f)
		if err != nil {
			return err
		}
		rate, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("rate: %w", err)
		}
		cfg, err := f.Monetise(ctx, by, rate)
		if err != nil {
			return err
		}
		out.success("fee rate set to %d%%, paid to %s", cfg.Rate, cfg.Recipient.Hex())
		return nil
	}),
}

var marketFeeCmd = &cobra.Command{
	Use:   "fee",
	Short: "Show the marketplace fee configuration",
	Args:  cobra.NoArgs,
	RunE: run(func(ctx context.Context, f *festival.Festival, _ []string) error {
		cfg, err := f.FeeConfig(ctx)
		if err != nil {
			return err
		}
		return out.value("Fee", cfg, [][2]string{
			{"rate", strconv.FormatUint(cfg.Rate, 10) + "%"},
			{"recipient", cfg.Recipient.Hex()},
		})
	}),
}

func init() {
	marketCmd.AddCommand(marketListCmd, marketCancelCmd, marketPriceCmd, marketBuyCmd, marketMonetiseCmd, marketFeeCmd)
}
