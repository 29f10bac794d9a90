package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/xraph/festival"
)

var unitCmd = &cobra.Command{
	Use:   "unit",
	Short: "FNFT ticket registry",
}

var unitShowCmd = &cobra.Command{
	Use:   "show <unit-id>",
	Short: "Show a unit's owner, price and listing",
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

		listing := "-"
		if v.Listing != nil {
			listing = v.Listing.AskPrice.String()
		}
		approved := "-"
		if v.HasApproval() {
			approved = v.Approved.Hex()
		}
		return out.value(fmt.Sprintf("Unit %d", v.ID), v, [][2]string{
			{"owner", v.Owner.Hex()},
			{"approved", approved},
			{"last price", v.LastPrice.String()},
			{"price cap", v.PriceCap.String()},
			{"listed at", listing},
		})
	}),
}

var unitListCmd = &cobra.Command{
	Use:   "list [address]",
	Short: "List the units an address owns",
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
		ids, err := f.UnitsOf(ctx, addr)
		if err != nil {
			return err
		}
		total, err := f.UnitTotalSupply(ctx)
		if err != nil {
			return err
		}
		return out.pairs("Units", [][2]string{
			{"address", addr.Hex()},
			{"units", joinIDs(ids)},
			{"count", strconv.Itoa(len(ids))},
			{"minted overall", strconv.FormatUint(total, 10)},
		})
	}),
}

var unitTransferCmd = &cobra.Command{
	Use:   "transfer <from> <to> <unit-id>",
	Short: "Transfer a unit; withdraws any listing",
	Args:  cobra.ExactArgs(3),
	RunE: run(func(ctx context.Context, f *festival.Festival, args []string) error {
		by, err := caller(f)
		if err != nil {
			return err
		}
		from, err := parseAddress(f, args[0])
		if err != nil {
			return err
		}
		to, err := parseAddress(f, args[1])
		if err != nil {
			return err
		}
		unitID, err := parseUnitID(args[2])
		if err != nil {
			return err
		}
		r, err := f.Transfer(ctx, by, from, to, unitID)
		if err != nil {
			return err
		}
		out.success("unit %d transferred to %s", unitID, to.Hex())
		if r.ListingClosed {
			out.success("listing of unit %d withdrawn", unitID)
		}
		return nil
	}),
}

var unitApproveCmd = &cobra.Command{
	Use:   "approve <unit-id> <spender>",
	Short: "Approve one address to move a unit",
	Args:  cobra.ExactArgs(2),
	RunE: run(func(ctx context.Context, f *festival.Festival, args []string) error {
		owner, err := caller(f)
		if err != nil {
			return err
		}
		unitID, err := parseUnitID(args[0])
		if err != nil {
			return err
		}
		spender, err := parseAddress(f, args[1])
		if err != nil {
			return err
		}
		if err := f.Approve(ctx, owner, unitID, spender); err != nil {
			return err
		}
		out.success("%s may move unit %d", spender.Hex(), unitID)
		return nil
	}),
}

var operatorRevoke bool

var unitOperatorCmd = &cobra.Command{
	Use:   "operator <operator>",
	Short: "Grant or revoke an operator over all your units",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(ctx context.Context, f *festival.Festival, args []string) error {
		owner, err := caller(f)
		if err != nil {
			return err
		}
		op, err := parseAddress(f, args[0])
		if err != nil {
			return err
		}
		if err := f.SetApprovalForAll(ctx, owner, op, !operatorRevoke); err != nil {
			return err
		}
		if operatorRevoke {
			out.success("%s is no longer an operator for %s", op.Hex(), owner.Hex())
		} else {
			out.success("%s is now an operator for %s", op.Hex(), owner.Hex())
		}
		return nil
	}),
}

func init() {
	unitOperatorCmd.Flags().BoolVar(&operatorRevoke, "revoke", false, "revoke instead of grant")
	unitCmd.AddCommand(unitShowCmd, unitListCmd, unitTransferCmd, unitApproveCmd, unitOperatorCmd)
}

func parseUnitID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unit id %q: %w", s, err)
	}
	return id, nil
}
