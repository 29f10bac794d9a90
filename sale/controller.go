package sale

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/festival/id"
	"github.com/xraph/festival/types"
)

// Payments pulls FTK from a buyer. token.Ledger satisfies it.
type Payments interface {
	TransferFrom(ctx context.Context, spender, from, to common.Address, amount types.Amount) error
}

// Minter allocates new units. asset.Registry satisfies it.
type Minter interface {
	Mint(ctx context.Context, to common.Address, lastPrice types.Amount) (uint64, error)
}

// Controller runs the primary sale for one store transaction.
type Controller struct {
	store   Store
	pay     Payments
	units   Minter
	owner   common.Address
	spender common.Address
	now     func() time.Time
}

// New creates a Controller. owner may open the sale; spender is the
// identity that pulls payment from buyers and must hold their allowance.
func New(s Store, pay Payments, units Minter, owner, spender common.Address, now func() time.Time) *Controller {
	if now == nil {
		now = time.Now
	}
	return &Controller{
		store:   s,
		pay:     pay,
		units:   units,
		owner:   owner,
		spender: spender,
		now:     now,
	}
}

// Config returns the current sale configuration.
func (c *Controller) Config(ctx context.Context) (*Config, error) {
	return c.store.GetSaleConfig(ctx)
}

// Start opens the sale. It can only happen once.
func (c *Controller) Start(ctx context.Context, caller common.Address) (*Config, error) {
	if caller != c.owner {
		return nil, fmt.Errorf("start sale: %w", types.ErrNotAuthorized)
	}

	cfg, err := c.store.GetSaleConfig(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.Enabled {
		return nil, fmt.Errorf("start sale: %w", types.ErrAlreadyOpen)
	}

	now := c.now().UTC()
	cfg.Enabled = true
	cfg.OpenedAt = &now
	if err := c.store.PutSaleConfig(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PublicMint sells quantity units to buyer at the configured unit price.
// Payment is pulled before any unit is minted, so a funds failure leaves
// no trace; the enclosing transaction discards partial writes otherwise.
func (c *Controller) PublicMint(ctx context.Context, buyer common.Address, quantity uint64) (*Receipt, error) {
	cfg, err := c.store.GetSaleConfig(ctx)
	if err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		return nil, fmt.Errorf("public mint: %w", types.ErrSaleClosed)
	}
	if quantity == 0 || quantity > cfg.MaxPerTransaction {
		return nil, fmt.Errorf("public mint %d: %w", quantity, types.ErrInvalidQuantity)
	}

	minted, err := c.store.GetMintCount(ctx, buyer)
	if err != nil {
		return nil, err
	}
	if minted+quantity > cfg.MaxPerActor {
		return nil, fmt.Errorf("public mint %d (already minted %d): %w", quantity, minted, types.ErrMintCapExceeded)
	}

	total, ok := cfg.UnitPrice.MulUint64(quantity)
	if !ok {
		return nil, fmt.Errorf("public mint %d: %w", quantity, types.ErrInvalidAmount)
	}
	if err := c.pay.TransferFrom(ctx, c.spender, buyer, cfg.Beneficiary, total); err != nil {
		return nil, fmt.Errorf("public mint payment: %w", err)
	}

	units := make([]uint64, 0, quantity)
	for range quantity {
		unitID, err := c.units.Mint(ctx, buyer, cfg.UnitPrice)
		if err != nil {
			return nil, err
		}
		units = append(units, unitID)
	}

	if err := c.store.PutMintCount(ctx, buyer, minted+quantity); err != nil {
		return nil, err
	}

	return &Receipt{
		ID:        id.NewMintID(),
		Buyer:     buyer,
		Units:     units,
		UnitPrice: cfg.UnitPrice,
		Total:     total,
		At:        c.now().UTC(),
	}, nil
}

// MintCount returns how many units addr has bought in the primary sale.
func (c *Controller) MintCount(ctx context.Context, addr common.Address) (uint64, error) {
	return c.store.GetMintCount(ctx, addr)
}
