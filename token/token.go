package token

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/festival/types"
)

// Ledger applies value-ledger rules on top of a Store. It holds no state of
// its own; callers bind it to one store transaction at a time.
type Ledger struct {
	store     Store
	authority common.Address
}

// New binds a Ledger to s. Only authority may mint.
func New(s Store, authority common.Address) *Ledger {
	return &Ledger{store: s, authority: authority}
}

// Authority returns the mint authority.
func (l *Ledger) Authority() common.Address { return l.authority }

// Mint creates amount new FTK for to.
func (l *Ledger) Mint(ctx context.Context, caller, to common.Address, amount types.Amount) error {
	if caller != l.authority {
		return fmt.Errorf("mint: %w", types.ErrNotAuthorized)
	}
	if to == (common.Address{}) {
		return fmt.Errorf("mint: %w", types.ErrInvalidAddress)
	}

	supply, err := l.store.GetSupply(ctx)
	if err != nil {
		return err
	}
	newSupply, ok := supply.Add(amount)
	if !ok {
		return fmt.Errorf("mint: supply overflow: %w", types.ErrInvalidAmount)
	}

	acct, err := l.store.GetAccount(ctx, to)
	if err != nil {
		return err
	}
	// Balance cannot overflow when supply did not.
	acct.Balance, _ = acct.Balance.Add(amount)

	if err := l.store.PutAccount(ctx, acct); err != nil {
		return err
	}
	return l.store.PutSupply(ctx, newSupply)
}

// Transfer moves amount from from to to.
func (l *Ledger) Transfer(ctx context.Context, from, to common.Address, amount types.Amount) error {
	if to == (common.Address{}) {
		return fmt.Errorf("transfer: %w", types.ErrInvalidAddress)
	}

	src, err := l.store.GetAccount(ctx, from)
	if err != nil {
		return err
	}
	remaining, ok := src.Balance.Sub(amount)
	if !ok {
		return fmt.Errorf("transfer %s from %s: %w", amount, from.Hex(), types.ErrInsufficientFunds)
	}
	if from == to {
		return nil
	}

	dst, err := l.store.GetAccount(ctx, to)
	if err != nil {
		return err
	}

	src.Balance = remaining
	dst.Balance, _ = dst.Balance.Add(amount)

	if err := l.store.PutAccount(ctx, src); err != nil {
		return err
	}
	return l.store.PutAccount(ctx, dst)
}

// Approve sets spender's allowance over owner's balance, replacing any
// previous value.
func (l *Ledger) Approve(ctx context.Context, owner, spender common.Address, amount types.Amount) error {
	if spender == (common.Address{}) {
		return fmt.Errorf("approve: %w", types.ErrInvalidAddress)
	}
	return l.store.PutAllowance(ctx, owner, spender, amount)
}

// TransferFrom moves amount from from to to on behalf of spender, consuming
// allowance. The allowance is checked before the balance. An unlimited
// allowance (MaxAmount) is never decremented.
func (l *Ledger) TransferFrom(ctx context.Context, spender, from, to common.Address, amount types.Amount) error {
	allowance, err := l.store.GetAllowance(ctx, from, spender)
	if err != nil {
		return err
	}

	if !allowance.IsMax() {
		left, ok := allowance.Sub(amount)
		if !ok {
			return fmt.Errorf("transfer %s from %s: %w", amount, from.Hex(), types.ErrInsufficientAllowance)
		}
		if err := l.store.PutAllowance(ctx, from, spender, left); err != nil {
			return err
		}
	}

	return l.Transfer(ctx, from, to, amount)
}

// BalanceOf returns addr's balance.
func (l *Ledger) BalanceOf(ctx context.Context, addr common.Address) (types.Amount, error) {
	acct, err := l.store.GetAccount(ctx, addr)
	if err != nil {
		return types.Amount{}, err
	}
	return acct.Balance, nil
}

// Allowance returns spender's remaining allowance over owner's balance.
func (l *Ledger) Allowance(ctx context.Context, owner, spender common.Address) (types.Amount, error) {
	return l.store.GetAllowance(ctx, owner, spender)
}

// TotalSupply returns the total FTK ever minted.
func (l *Ledger) TotalSupply(ctx context.Context) (types.Amount, error) {
	return l.store.GetSupply(ctx)
}
