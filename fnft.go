package festival

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/festival/asset"
	"github.com/xraph/festival/id"
	"github.com/xraph/festival/market"
	"github.com/xraph/festival/sale"
	"github.com/xraph/festival/store"
	"github.com/xraph/festival/types"
)

// ──────────────────────────────────────────────────
// Primary sale
// ──────────────────────────────────────────────────

// StartSale opens the primary sale. Only the owner may call it, once.
func (f *Festival) StartSale(ctx context.Context, caller common.Address) (*sale.Config, error) {
	var cfg *sale.Config
	err := f.update(ctx, "sale.start", func(c *components, _ store.Tx) error {
		var err error
		cfg, err = c.sale.Start(ctx, caller)
		return err
	})
	if err != nil {
		return nil, err
	}

	f.plugins.EmitSaleStarted(ctx, cfg)
	f.logger.Info("public sale opened",
		"unit_price", cfg.UnitPrice.String(),
		"max_per_tx", cfg.MaxPerTransaction,
		"max_per_actor", cfg.MaxPerActor,
	)
	return cfg, nil
}

// PublicMint sells quantity new units to buyer. buyer must have approved
// Address() for at least quantity times the unit price.
func (f *Festival) PublicMint(ctx context.Context, buyer common.Address, quantity uint64) (*sale.Receipt, error) {
	var receipt *sale.Receipt
	err := f.update(ctx, "sale.mint", func(c *components, _ store.Tx) error {
		var err error
		receipt, err = c.sale.PublicMint(ctx, buyer, quantity)
		return err
	})
	if err != nil {
		return nil, err
	}

	f.plugins.EmitUnitsMinted(ctx, receipt)
	return receipt, nil
}

// SaleConfig returns the sale configuration.
func (f *Festival) SaleConfig(ctx context.Context) (*sale.Config, error) {
	var cfg *sale.Config
	err := f.view(ctx, func(c *components) error {
		var err error
		cfg, err = c.sale.Config(ctx)
		return err
	})
	return cfg, err
}

// MintCount returns how many units addr has bought in the primary sale.
func (f *Festival) MintCount(ctx context.Context, addr common.Address) (uint64, error) {
	var n uint64
	err := f.view(ctx, func(c *components) error {
		var err error
		n, err = c.sale.MintCount(ctx, addr)
		return err
	})
	return n, err
}

// ──────────────────────────────────────────────────
// Asset registry
// ──────────────────────────────────────────────────

// Approve sets the single approved spender of unitID. caller must own it.
func (f *Festival) Approve(ctx context.Context, caller common.Address, unitID uint64, spender common.Address) error {
	return f.update(ctx, "fnft.approve", func(c *components, _ store.Tx) error {
		return c.units.Approve(ctx, caller, unitID, spender)
	})
}

// SetApprovalForAll grants or revokes operator's right to move all of
// owner's units.
func (f *Festival) SetApprovalForAll(ctx context.Context, owner, operator common.Address, approved bool) error {
	return f.update(ctx, "fnft.set_operator", func(c *components, _ store.Tx) error {
		return c.units.SetApprovalForAll(ctx, owner, operator, approved)
	})
}

// Transfer moves unitID from from to to on behalf of caller. Any active
// listing of the unit is withdrawn.
func (f *Festival) Transfer(ctx context.Context, caller, from, to common.Address, unitID uint64) (*asset.TransferReceipt, error) {
	var receipt *asset.TransferReceipt
	err := f.update(ctx, "fnft.transfer", func(c *components, _ store.Tx) error {
		if err := c.units.Transfer(ctx, caller, from, to, unitID); err != nil {
			return err
		}
		closed, err := c.market.Clear(ctx, unitID)
		if err != nil {
			return err
		}
		receipt = &asset.TransferReceipt{
			ID:            id.NewTransferID(),
			UnitID:        unitID,
			Caller:        caller,
			From:          from,
			To:            to,
			ListingClosed: closed,
			At:            f.now().UTC(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	f.plugins.EmitUnitTransferred(ctx, receipt)
	return receipt, nil
}

// OwnerOf returns the owner of unitID.
func (f *Festival) OwnerOf(ctx context.Context, unitID uint64) (common.Address, error) {
	var out common.Address
	err := f.view(ctx, func(c *components) error {
		var err error
		out, err = c.units.OwnerOf(ctx, unitID)
		return err
	})
	return out, err
}

// BalanceOf returns how many units addr owns.
func (f *Festival) BalanceOf(ctx context.Context, addr common.Address) (uint64, error) {
	var n uint64
	err := f.view(ctx, func(c *components) error {
		var err error
		n, err = c.units.BalanceOf(ctx, addr)
		return err
	})
	return n, err
}

// UnitsOf returns the unit IDs addr owns in ascending order.
func (f *Festival) UnitsOf(ctx context.Context, addr common.Address) ([]uint64, error) {
	var ids []uint64
	err := f.view(ctx, func(c *components) error {
		var err error
		ids, err = c.units.UnitsOf(ctx, addr)
		return err
	})
	return ids, err
}

// GetApproved returns the approved spender of unitID, or the zero address.
func (f *Festival) GetApproved(ctx context.Context, unitID uint64) (common.Address, error) {
	var out common.Address
	err := f.view(ctx, func(c *components) error {
		var err error
		out, err = c.units.GetApproved(ctx, unitID)
		return err
	})
	return out, err
}

// IsApprovedForAll reports whether operator may move all of owner's units.
func (f *Festival) IsApprovedForAll(ctx context.Context, owner, operator common.Address) (bool, error) {
	var ok bool
	err := f.view(ctx, func(c *components) error {
		var err error
		ok, err = c.units.IsApprovedForAll(ctx, owner, operator)
		return err
	})
	return ok, err
}

// LastPrice returns the price unitID last changed hands at.
func (f *Festival) LastPrice(ctx context.Context, unitID uint64) (types.Amount, error) {
	var out types.Amount
	err := f.view(ctx, func(c *components) error {
		var err error
		out, err = c.units.LastPrice(ctx, unitID)
		return err
	})
	return out, err
}

// UnitTotalSupply returns the number of units minted so far.
func (f *Festival) UnitTotalSupply(ctx context.Context) (uint64, error) {
	var n uint64
	err := f.view(ctx, func(c *components) error {
		var err error
		n, err = c.units.TotalSupply(ctx)
		return err
	})
	return n, err
}

// UnitView is a consistent snapshot of one unit and its marketplace state.
type UnitView struct {
	asset.Unit

	// Listing is nil when the unit is not for sale.
	Listing  *market.Listing `json:"listing,omitempty"`
	PriceCap types.Amount    `json:"price_cap"`
}

// Unit returns the owner, approval, last price and listing of unitID as
// one snapshot.
func (f *Festival) Unit(ctx context.Context, unitID uint64) (*UnitView, error) {
	var v *UnitView
	err := f.view(ctx, func(c *components) error {
		u, err := c.units.Unit(ctx, unitID)
		if err != nil {
			return err
		}
		l, err := c.market.Listing(ctx, unitID)
		if err != nil && !errors.Is(err, types.ErrNoActiveListing) {
			return err
		}
		v = &UnitView{Unit: *u, Listing: l, PriceCap: u.LastPrice.PlusTenth()}
		return nil
	})
	return v, err
}
