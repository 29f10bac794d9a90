package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xraph/festival"
)

var saleCmd = &cobra.Command{
	Use:   "sale",
	Short: "Primary sale",
}

var saleStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Open the primary sale (owner only)",
	Args:  cobra.NoArgs,
	RunE: run(func(ctx context.Context, f *festival.Festival, _ []string) error {
		from, err := caller(f)
		if err != nil {
			return err
		}
		cfg, err := f.StartSale(ctx, from)
		if err != nil {
			return err
		}
		out.success("sale opened at %s per unit", cfg.UnitPrice)
		return out.value("Sale", cfg, saleRows(cfg.Enabled, cfg.UnitPrice.String(), cfg.MaxPerTransaction, cfg.MaxPerActor))
	}),
}

var saleMintCmd = &cobra.Command{
	Use:   "mint <quantity>",
	Short: "Buy units in the primary sale",
	Long: `Buy units in the primary sale at the configured unit price.

The buyer must first approve the engine address for the total:
  festival ftk approve engine 30 --as <buyer>
  festival sale mint 3 --as <buyer>`,
	Args: cobra.ExactArgs(1),
	RunE: run(func(ctx context.Context, f *festival.Festival, args []string) error {
		qty, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("quantity: %w", err)
		}
		buyer, err := caller(f)
		if err != nil {
			return err
		}
		r, err := f.PublicMint(ctx, buyer, qty)
		if err != nil {
			return err
		}
		out.success("minted %d unit(s) for %s", len(r.Units), r.Total)
		return out.value("Receipt", r, [][2]string{
			{"receipt", r.ID.String()},
			{"buyer", r.Buyer.Hex()},
			{"units", joinIDs(r.Units)},
			{"unit price", r.UnitPrice.String()},
			{"total", r.Total.String()},
		})
	}),
}

var saleStatusCmd = &cobra.Command{
	Use:   "status [address]",
	Short: "Show the sale configuration and an address's mint count",
	Args:  cobra.MaximumNArgs(1),
	RunE: run(func(ctx context.Context, f *festival.Festival, args []string) error {
		cfg, err := f.SaleConfig(ctx)
		if err != nil {
			return err
		}
		rows := saleRows(cfg.Enabled, cfg.UnitPrice.String(), cfg.MaxPerTransaction, cfg.MaxPerActor)
		rows = append(rows, [2]string{"beneficiary", cfg.Beneficiary.Hex()})

		if len(args) == 1 {
			addr, err := parseAddress(f, args[0])
			if err != nil {
				return err
			}
			n, err := f.MintCount(ctx, addr)
			if err != nil {
				return err
			}
			rows = append(rows, [2]string{"minted by " + addr.Hex(), strconv.FormatUint(n, 10)})
		}
		return out.value("Sale", cfg, rows)
	}),
}

func init() {
	saleCmd.AddCommand(saleStartCmd, saleMintCmd, saleStatusCmd)
}

func saleRows(enabled bool, price string, perTx, perActor uint64) [][2]string {
	return [][2]string{
		{"open", strconv.FormatBool(enabled)},
		{"unit price", price},
		{"max per transaction", strconv.FormatUint(perTx, 10)},
		{"max per address", strconv.FormatUint(perActor, 10)},
	}
}

func joinIDs(ids []uint64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(id, 10)
	}
	return strings.Join(parts, ", ")
}
