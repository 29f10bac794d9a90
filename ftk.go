package festival

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/festival/store"
	"github.com/xraph/festival/types"
)

// ──────────────────────────────────────────────────
// FTK value ledger
// ──────────────────────────────────────────────────

// MintValue creates amount FTK for to. Only the owner may mint.
func (f *Festival) MintValue(ctx context.Context, caller, to common.Address, amount types.Amount) error {
	err := f.update(ctx, "ftk.mint", func(c *components, _ store.Tx) error {
		return c.ledger.Mint(ctx, caller, to, amount)
	})
	if err != nil {
		return err
	}

	f.plugins.EmitValueMinted(ctx, to, amount)
	return nil
}

// TransferValue moves amount FTK from from to to.
func (f *Festival) TransferValue(ctx context.Context, from, to common.Address, amount types.Amount) error {
	err := f.update(ctx, "ftk.transfer", func(c *components, _ store.Tx) error {
		return c.ledger.Transfer(ctx, from, to, amount)
	})
	if err != nil {
		return err
	}

	f.plugins.EmitValueTransferred(ctx, from, to, amount)
	return nil
}

// ApproveValue sets spender's allowance over owner's FTK. MaxAmount grants
// an allowance that is never consumed.
func (f *Festival) ApproveValue(ctx context.Context, owner, spender common.Address, amount types.Amount) error {
	return f.update(ctx, "ftk.approve", func(c *components, _ store.Tx) error {
		return c.ledger.Approve(ctx, owner, spender, amount)
	})
}

// TransferValueFrom moves amount FTK from from to to on behalf of spender.
func (f *Festival) TransferValueFrom(ctx context.Context, spender, from, to common.Address, amount types.Amount) error {
	err := f.update(ctx, "ftk.transfer_from", func(c *components, _ store.Tx) error {
		return c.ledger.TransferFrom(ctx, spender, from, to, amount)
	})
	if err != nil {
		return err
	}

	f.plugins.EmitValueTransferred(ctx, from, to, amount)
	return nil
}

// ValueBalanceOf returns addr's FTK balance.
func (f *Festival) ValueBalanceOf(ctx context.Context, addr common.Address) (types.Amount, error) {
	var out types.Amount
	err := f.view(ctx, func(c *components) error {
		var err error
		out, err = c.ledger.BalanceOf(ctx, addr)
		return err
	})
	return out, err
}

// Allowance returns spender's remaining FTK allowance over owner's balance.
func (f *Festival) Allowance(ctx context.Context, owner, spender common.Address) (types.Amount, error) {
	var out types.Amount
	err := f.view(ctx, func(c *components) error {
		var err error
		out, err = c.ledger.Allowance(ctx, owner, spender)
		return err
	})
	return out, err
}

// ValueTotalSupply returns the total FTK ever minted.
func (f *Festival) ValueTotalSupply(ctx context.Context) (types.Amount, error) {
	var out types.Amount
	err := f.view(ctx, func(c *components) error {
		var err error
		out, err = c.ledger.TotalSupply(ctx)
		return err
	})
	return out, err
}
