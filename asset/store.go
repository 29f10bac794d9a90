package asset

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Store defines the persistence operations for the asset registry.
// GetUnit returns types.ErrUnknownUnit for IDs that were never minted;
// GetHolder returns an empty holder for unknown accounts.
type Store interface {
	GetUnit(ctx context.Context, unitID uint64) (*Unit, error)
	PutUnit(ctx context.Context, u *Unit) error
	GetHolder(ctx context.Context, addr common.Address) (*Holder, error)
	PutHolder(ctx context.Context, h *Holder) error
	IsOperator(ctx context.Context, owner, operator common.Address) (bool, error)
	PutOperator(ctx context.Context, owner, operator common.Address, approved bool) error
	GetLastUnitID(ctx context.Context) (uint64, error)
	PutLastUnitID(ctx context.Context, unitID uint64) error
}
