package token

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/festival/types"
)

// Store defines the persistence operations for the value ledger.
// Lookups of unknown accounts and allowances return zero values.
type Store interface {
	GetAccount(ctx context.Context, addr common.Address) (*Account, error)
	PutAccount(ctx context.Context, a *Account) error
	GetAllowance(ctx context.Context, owner, spender common.Address) (types.Amount, error)
	PutAllowance(ctx context.Context, owner, spender common.Address, amount types.Amount) error
	GetSupply(ctx context.Context) (types.Amount, error)
	PutSupply(ctx context.Context, supply types.Amount) error
}
