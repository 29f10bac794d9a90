package main

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/xraph/festival"
	"github.com/xraph/festival/store/memory"
	"github.com/xraph/festival/types"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a resale walkthrough against an in-memory store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		owner := common.HexToAddress(cfg.Owner)
		f := festival.New(memory.New(), owner, engineOptions(cfg)...)
		if err := f.Start(ctx); err != nil {
			return err
		}
		defer f.Stop(context.WithoutCancel(ctx)) //nolint:errcheck // memory store

		seller := common.HexToAddress("0x00000000000000000000000000000000000000b2")
		buyer := common.HexToAddress("0x00000000000000000000000000000000000000c3")

		steps := []struct {
			msg string
			fn  func() error
		}{
			{"fund seller with 100 FTK", func() error { return f.MintValue(ctx, owner, seller, types.FTK(100)) }},
			{"fund buyer with 100 FTK", func() error { return f.MintValue(ctx, owner, buyer, types.FTK(100)) }},
			{"open the sale", func() error { _, err := f.StartSale(ctx, owner); return err }},
			{"seller approves the engine", func() error { return f.ApproveValue(ctx, seller, f.Address(), types.MaxAmount()) }},
			{"seller mints unit 1", func() error { _, err := f.PublicMint(ctx, seller, 1); return err }},
			{"seller lists unit 1 at 110%", func() error {
				limit, err := f.PriceCap(ctx, 1)
				if err != nil {
					return err
				}
				_, err = f.SetListing(ctx, seller, 1, limit)
				return err
			}},
			{"buyer approves the engine", func() error { return f.ApproveValue(ctx, buyer, f.Address(), types.MaxAmount()) }},
			{"buyer purchases unit 1", func() error {
				ask, err := f.SellingPrice(ctx, 1)
				if err != nil {
					return err
				}
				_, err = f.PurchaseListing(ctx, buyer, 1, ask)
				return err
			}},
		}
		for _, s := range steps {
			if err := s.fn(); err != nil {
				return err
			}
			out.success("%s", s.msg)
		}

		var rows [][2]string
		for _, who := range []struct {
			name string
			addr common.Address
		}{{"owner", owner}, {"seller", seller}, {"buyer", buyer}} {
			b, err := f.ValueBalanceOf(ctx, who.addr)
			if err != nil {
				return err
			}
			rows = append(rows, [2]string{who.name, b.String()})
		}
		limit, err := f.PriceCap(ctx, 1)
		if err != nil {
			return err
		}
		rows = append(rows, [2]string{"unit 1 price cap", limit.String()})
		return out.pairs("Result", rows)
	},
}
