package asset

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/festival/types"
)

// Registry applies FNFT ownership rules on top of a Store. Like the other
// components it is bound to a single store transaction.
type Registry struct {
	store Store
	now   func() time.Time
}

// New binds a Registry to s. now stamps entity timestamps; nil means
// time.Now.
func New(s Store, now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{store: s, now: now}
}

// Mint allocates the next unit ID to to with the given starting lastPrice.
// Callers validate eligibility; the only failures are storage errors.
func (r *Registry) Mint(ctx context.Context, to common.Address, lastPrice types.Amount) (uint64, error) {
	last, err := r.store.GetLastUnitID(ctx)
	if err != nil {
		return 0, err
	}
	unitID := last + 1

	u := &Unit{
		Entity:    types.NewEntity(r.now()),
		ID:        unitID,
		Owner:     to,
		LastPrice: lastPrice,
	}
	if err := r.store.PutUnit(ctx, u); err != nil {
		return 0, err
	}
	if err := r.addToHolder(ctx, to, unitID); err != nil {
		return 0, err
	}
	if err := r.store.PutLastUnitID(ctx, unitID); err != nil {
		return 0, err
	}
	return unitID, nil
}

// Transfer moves unitID from from to to on behalf of caller. The caller must
// be from, the unit's approved spender, or an operator of from.
func (r *Registry) Transfer(ctx context.Context, caller, from, to common.Address, unitID uint64) error {
	if caller == (common.Address{}) {
		return fmt.Errorf("transfer unit %d: %w", unitID, types.ErrNotAuthorized)
	}

	u, err := r.store.GetUnit(ctx, unitID)
	if err != nil {
		return fmt.Errorf("transfer unit %d: %w", unitID, err)
	}
	if u.Owner != from {
		return fmt.Errorf("transfer unit %d: %w", unitID, types.ErrNotOwner)
	}

	if caller != from && !(u.HasApproval() && caller == u.Approved) {
		op, err := r.store.IsOperator(ctx, from, caller)
		if err != nil {
			return err
		}
		if !op {
			return fmt.Errorf("transfer unit %d: %w", unitID, types.ErrNotAuthorized)
		}
	}

	if to == (common.Address{}) {
		return fmt.Errorf("transfer unit %d: %w", unitID, types.ErrInvalidAddress)
	}

	return r.move(ctx, u, to)
}

// Move reassigns unitID from from to to without an authorization check.
// It is reserved for settlement, which has already proven the seller's
// consent through the listing.
func (r *Registry) Move(ctx context.Context, unitID uint64, from, to common.Address) error {
	u, err := r.store.GetUnit(ctx, unitID)
	if err != nil {
		return fmt.Errorf("move unit %d: %w", unitID, err)
	}
	if u.Owner != from {
		return fmt.Errorf("move unit %d: %w", unitID, types.ErrNotOwner)
	}
	return r.move(ctx, u, to)
}

func (r *Registry) move(ctx context.Context, u *Unit, to common.Address) error {
	from := u.Owner
	u.Owner = to
	u.Approved = common.Address{}
	u.Touch(r.now())

	if err := r.store.PutUnit(ctx, u); err != nil {
		return err
	}
	if from == to {
		return nil
	}

	h, err := r.store.GetHolder(ctx, from)
	if err != nil {
		return err
	}
	h.Remove(u.ID)
	if err := r.store.PutHolder(ctx, h); err != nil {
		return err
	}
	return r.addToHolder(ctx, to, u.ID)
}

func (r *Registry) addToHolder(ctx context.Context, addr common.Address, unitID uint64) error {
	h, err := r.store.GetHolder(ctx, addr)
	if err != nil {
		return err
	}
	h.Add(unitID)
	return r.store.PutHolder(ctx, h)
}

// Approve sets the single approved spender for unitID, replacing any
// previous one. The zero address clears the slot.
func (r *Registry) Approve(ctx context.Context, caller common.Address, unitID uint64, spender common.Address) error {
	u, err := r.store.GetUnit(ctx, unitID)
	if err != nil {
		return fmt.Errorf("approve unit %d: %w", unitID, err)
	}
	if u.Owner != caller {
		return fmt.Errorf("approve unit %d: %w", unitID, types.ErrNotOwner)
	}

	u.Approved = spender
	u.Touch(r.now())
	return r.store.PutUnit(ctx, u)
}

// SetApprovalForAll grants or revokes operator's right to transfer every
// unit owner holds.
func (r *Registry) SetApprovalForAll(ctx context.Context, owner, operator common.Address, approved bool) error {
	if operator == owner || operator == (common.Address{}) {
		return fmt.Errorf("set operator: %w", types.ErrInvalidAddress)
	}
	return r.store.PutOperator(ctx, owner, operator, approved)
}

// SetLastPrice records the price of a completed settlement.
func (r *Registry) SetLastPrice(ctx context.Context, unitID uint64, price types.Amount) error {
	u, err := r.store.GetUnit(ctx, unitID)
	if err != nil {
		return err
	}
	u.LastPrice = price
	u.Touch(r.now())
	return r.store.PutUnit(ctx, u)
}

// Unit returns a copy of the unit record.
func (r *Registry) Unit(ctx context.Context, unitID uint64) (*Unit, error) {
	return r.store.GetUnit(ctx, unitID)
}

// OwnerOf returns the owner of unitID.
func (r *Registry) OwnerOf(ctx context.Context, unitID uint64) (common.Address, error) {
	u, err := r.store.GetUnit(ctx, unitID)
	if err != nil {
		return common.Address{}, err
	}
	return u.Owner, nil
}

// GetApproved returns the approved spender of unitID, or the zero address.
func (r *Registry) GetApproved(ctx context.Context, unitID uint64) (common.Address, error) {
	u, err := r.store.GetUnit(ctx, unitID)
	if err != nil {
		return common.Address{}, err
	}
	return u.Approved, nil
}

// LastPrice returns the price unitID last changed hands at.
func (r *Registry) LastPrice(ctx context.Context, unitID uint64) (types.Amount, error) {
	u, err := r.store.GetUnit(ctx, unitID)
	if err != nil {
		return types.Amount{}, err
	}
	return u.LastPrice, nil
}

// IsApprovedForAll reports whether operator may transfer all of owner's units.
func (r *Registry) IsApprovedForAll(ctx context.Context, owner, operator common.Address) (bool, error) {
	return r.store.IsOperator(ctx, owner, operator)
}

// BalanceOf returns how many units addr owns.
func (r *Registry) BalanceOf(ctx context.Context, addr common.Address) (uint64, error) {
	h, err := r.store.GetHolder(ctx, addr)
	if err != nil {
		return 0, err
	}
	return uint64(len(h.Units)), nil
}

// UnitsOf returns the IDs addr owns in ascending order.
func (r *Registry) UnitsOf(ctx context.Context, addr common.Address) ([]uint64, error) {
	h, err := r.store.GetHolder(ctx, addr)
	if err != nil {
		return nil, err
	}
	return h.Units, nil
}

// TotalSupply returns the number of units minted so far.
func (r *Registry) TotalSupply(ctx context.Context) (uint64, error) {
	return r.store.GetLastUnitID(ctx)
}
