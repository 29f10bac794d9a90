package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/festival/asset"
	"github.com/xraph/festival/id"
	"github.com/xraph/festival/types"
)

// Payments moves FTK. token.Ledger satisfies it.
type Payments interface {
	Transfer(ctx context.Context, from, to common.Address, amount types.Amount) error
	TransferFrom(ctx context.Context, spender, from, to common.Address, amount types.Amount) error
}

// Units is the part of the asset registry the marketplace drives.
// asset.Registry satisfies it.
type Units interface {
	Unit(ctx context.Context, unitID uint64) (*asset.Unit, error)
	Move(ctx context.Context, unitID uint64, from, to common.Address) error
	SetLastPrice(ctx context.Context, unitID uint64, price types.Amount) error
}

// Market runs the secondary marketplace for one store transaction.
type Market struct {
	store  Store
	pay    Payments
	units  Units
	owner  common.Address
	escrow common.Address
	now    func() time.Time
}

// New creates a Market. owner may change the fee rate; escrow receives the
// buyer's payment and disburses it, so buyers approve escrow as spender.
func New(s Store, pay Payments, units Units, owner, escrow common.Address, now func() time.Time) *Market {
	if now == nil {
		now = time.Now
	}
	return &Market{
		store:  s,
		pay:    pay,
		units:  units,
		owner:  owner,
		escrow: escrow,
		now:    now,
	}
}

// PriceCap returns the highest ask a new listing of unitID may carry.
func (m *Market) PriceCap(ctx context.Context, unitID uint64) (types.Amount, error) {
	u, err := m.units.Unit(ctx, unitID)
	if err != nil {
		return types.Amount{}, err
	}
	return u.LastPrice.PlusTenth(), nil
}

// SetListing lists unitID at askPrice, replacing any existing listing.
func (m *Market) SetListing(ctx context.Context, seller common.Address, unitID uint64, askPrice types.Amount) (*Listing, error) {
	u, err := m.units.Unit(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("list unit %d: %w", unitID, err)
	}
	if u.Owner != seller {
		return nil, fmt.Errorf("list unit %d: %w", unitID, types.ErrNotOwner)
	}
	if limit := u.LastPrice.PlusTenth(); askPrice.GreaterThan(limit) {
		return nil, fmt.Errorf("list unit %d at %s (cap %s): %w", unitID, askPrice, limit, types.ErrPriceCapExceeded)
	}

	l := &Listing{
		ID:       id.NewListingID(),
		UnitID:   unitID,
		Seller:   seller,
		AskPrice: askPrice,
		ListedAt: m.now().UTC(),
	}
	if err := m.store.PutListing(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// CancelListing removes seller's listing of unitID. No value moves.
func (m *Market) CancelListing(ctx context.Context, seller common.Address, unitID uint64) (*Listing, error) {
	u, err := m.units.Unit(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("cancel listing %d: %w", unitID, err)
	}
	if u.Owner != seller {
		return nil, fmt.Errorf("cancel listing %d: %w", unitID, types.ErrNotOwner)
	}

	l, err := m.store.GetListing(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("cancel listing %d: %w", unitID, err)
	}
	if err := m.store.DeleteListing(ctx, unitID); err != nil {
		return nil, err
	}
	return l, nil
}

// Listing returns the active listing of unitID.
func (m *Market) Listing(ctx context.Context, unitID uint64) (*Listing, error) {
	return m.store.GetListing(ctx, unitID)
}

// SellingPrice returns the ask price of unitID's active listing.
func (m *Market) SellingPrice(ctx context.Context, unitID uint64) (types.Amount, error) {
	l, err := m.store.GetListing(ctx, unitID)
	if err != nil {
		return types.Amount{}, fmt.Errorf("selling price %d: %w", unitID, err)
	}
	return l.AskPrice, nil
}

// Purchase settles unitID's listing to buyer. maxPrice must equal the ask
// exactly. The buyer pays the ask to escrow, which forwards the proceeds to
// the seller and the fee to the recipient; ownership then moves, lastPrice
// becomes the ask and the listing is removed. Payment runs first so a funds
// failure leaves ownership, price and listing untouched.
func (m *Market) Purchase(ctx context.Context, buyer common.Address, unitID uint64, maxPrice types.Amount) (*Settlement, error) {
	l, err := m.store.GetListing(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("purchase unit %d: %w", unitID, err)
	}
	if !maxPrice.Equal(l.AskPrice) {
		return nil, fmt.Errorf("purchase unit %d at %s (ask %s): %w", unitID, maxPrice, l.AskPrice, types.ErrPriceMismatch)
	}

	fees, err := m.store.GetFeeConfig(ctx)
	if err != nil {
		return nil, err
	}
	fee, proceeds := fees.Split(l.AskPrice)

	if err := m.pay.TransferFrom(ctx, m.escrow, buyer, m.escrow, l.AskPrice); err != nil {
		return nil, fmt.Errorf("purchase unit %d payment: %w", unitID, err)
	}
	if err := m.pay.Transfer(ctx, m.escrow, l.Seller, proceeds); err != nil {
		return nil, fmt.Errorf("purchase unit %d proceeds: %w", unitID, err)
	}
	if !fee.IsZero() {
		if err := m.pay.Transfer(ctx, m.escrow, fees.Recipient, fee); err != nil {
			return nil, fmt.Errorf("purchase unit %d fee: %w", unitID, err)
		}
	}

	if err := m.units.Move(ctx, unitID, l.Seller, buyer); err != nil {
		return nil, fmt.Errorf("purchase unit %d: %w", unitID, err)
	}
	if err := m.units.SetLastPrice(ctx, unitID, l.AskPrice); err != nil {
		return nil, err
	}
	if err := m.store.DeleteListing(ctx, unitID); err != nil {
		return nil, err
	}

	return &Settlement{
		ID:           id.NewSettlementID(),
		ListingID:    l.ID,
		UnitID:       unitID,
		Seller:       l.Seller,
		Buyer:        buyer,
		Price:        l.AskPrice,
		Fee:          fee,
		Proceeds:     proceeds,
		FeeRate:      fees.Rate,
		FeeRecipient: fees.Recipient,
		SettledAt:    m.now().UTC(),
	}, nil
}

// Monetise sets the fee rate for all later settlements.
func (m *Market) Monetise(ctx context.Context, caller common.Address, rate uint64) (*FeeConfig, error) {
	if caller != m.owner {
		return nil, fmt.Errorf("monetise: %w", types.ErrNotAuthorized)
	}
	if rate > MaxFeeRate {
		return nil, fmt.Errorf("monetise %d: %w", rate, types.ErrInvalidRate)
	}

	fees, err := m.store.GetFeeConfig(ctx)
	if err != nil {
		return nil, err
	}
	fees.Rate = rate
	if err := m.store.PutFeeConfig(ctx, fees); err != nil {
		return nil, err
	}
	return fees, nil
}

// FeeConfig returns the current fee configuration.
func (m *Market) FeeConfig(ctx context.Context) (*FeeConfig, error) {
	return m.store.GetFeeConfig(ctx)
}

// Clear drops unitID's listing if one exists. Transfers outside the
// marketplace call it so a new owner never inherits a stale offer.
func (m *Market) Clear(ctx context.Context, unitID uint64) (bool, error) {
	if _, err := m.store.GetListing(ctx, unitID); err != nil {
		if errors.Is(err, types.ErrNoActiveListing) {
			return false, nil
		}
		return false, err
	}
	return true, m.store.DeleteListing(ctx, unitID)
}
