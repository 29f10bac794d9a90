package festival

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/festival/market"
	"github.com/xraph/festival/store"
	"github.com/xraph/festival/types"
)

// ──────────────────────────────────────────────────
// Secondary marketplace
// ──────────────────────────────────────────────────

// SetListing lists unitID at askPrice, replacing any existing listing.
// askPrice may not exceed 110% of the unit's last price.
func (f *Festival) SetListing(ctx context.Context, seller common.Address, unitID uint64, askPrice types.Amount) (*market.Listing, error) {
	var l *market.Listing
	err := f.update(ctx, "market.list", func(c *components, _ store.Tx) error {
		var err error
		l, err = c.market.SetListing(ctx, seller, unitID, askPrice)
		return err
	})
	if err != nil {
		return nil, err
	}

	f.plugins.EmitListingSet(ctx, l)
	return l, nil
}

// CancelListing withdraws seller's listing of unitID.
func (f *Festival) CancelListing(ctx context.Context, seller common.Address, unitID uint64) (*market.Listing, error) {
	var l *market.Listing
	err := f.update(ctx, "market.cancel", func(c *components, _ store.Tx) error {
		var err error
		l, err = c.market.CancelListing(ctx, seller, unitID)
		return err
	})
	if err != nil {
		return nil, err
	}

	f.plugins.EmitListingCanceled(ctx, l)
	return l, nil
}

// PurchaseListing buys the listed unitID for buyer. maxPrice must equal the
// current ask, so a repriced listing is never bought unseen. buyer must have
// approved Address() for at least the ask.
func (f *Festival) PurchaseListing(ctx context.Context, buyer common.Address, unitID uint64, maxPrice types.Amount) (*market.Settlement, error) {
	var s *market.Settlement
	err := f.update(ctx, "market.purchase", func(c *components, _ store.Tx) error {
		var err error
		s, err = c.market.Purchase(ctx, buyer, unitID, maxPrice)
		return err
	})
	if err != nil {
		return nil, err
	}

	f.plugins.EmitSettled(ctx, s)
	f.logger.Info("listing settled",
		"unit_id", s.UnitID,
		"seller", s.Seller.Hex(),
		"buyer", s.Buyer.Hex(),
		"price", s.Price.String(),
		"fee", s.Fee.String(),
	)
	return s, nil
}

// Monetise sets the marketplace fee rate in percent. Only the owner may
// call it.
func (f *Festival) Monetise(ctx context.Context, caller common.Address, rate uint64) (*market.FeeConfig, error) {
	var cfg *market.FeeConfig
	err := f.update(ctx, "market.monetise", func(c *components, _ store.Tx) error {
		var err error
		cfg, err = c.market.Monetise(ctx, caller, rate)
		return err
	})
	if err != nil {
		return nil, err
	}

	f.plugins.EmitFeeRateChanged(ctx, cfg)
	return cfg, nil
}

// Listing returns the active listing of unitID.
func (f *Festival) Listing(ctx context.Context, unitID uint64) (*market.Listing, error) {
	var l *market.Listing
	err := f.view(ctx, func(c *components) error {
		var err error
		l, err = c.market.Listing(ctx, unitID)
		return err
	})
	return l, err
}

// SellingPrice returns the ask of the active listing of unitID.
func (f *Festival) SellingPrice(ctx context.Context, unitID uint64) (types.Amount, error) {
	var out types.Amount
	err := f.view(ctx, func(c *components) error {
		var err error
		out, err = c.market.SellingPrice(ctx, unitID)
		return err
	})
	return out, err
}

// PriceCap returns the highest ask a new listing of unitID may carry.
func (f *Festival) PriceCap(ctx context.Context, unitID uint64) (types.Amount, error) {
	var out types.Amount
	err := f.view(ctx, func(c *components) error {
		var err error
		out, err = c.market.PriceCap(ctx, unitID)
		return err
	})
	return out, err
}

// FeeConfig returns the marketplace fee configuration.
func (f *Festival) FeeConfig(ctx context.Context) (*market.FeeConfig, error) {
	var cfg *market.FeeConfig
	err := f.view(ctx, func(c *components) error {
		var err error
		cfg, err = c.market.FeeConfig(ctx)
		return err
	})
	return cfg, err
}
