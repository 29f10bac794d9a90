package sale

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Store defines the persistence operations for the primary sale.
// GetSaleConfig returns types.ErrNotInitialized before genesis.
type Store interface {
	GetSaleConfig(ctx context.Context) (*Config, error)
	PutSaleConfig(ctx context.Context, c *Config) error
	GetMintCount(ctx context.Context, addr common.Address) (uint64, error)
	PutMintCount(ctx context.Context, addr common.Address, n uint64) error
}
