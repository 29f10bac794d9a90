package market

import "context"

// Store defines the persistence operations for the marketplace.
// GetListing returns types.ErrNoActiveListing when the unit is not listed;
// GetFeeConfig returns types.ErrNotInitialized before genesis.
type Store interface {
	GetListing(ctx context.Context, unitID uint64) (*Listing, error)
	PutListing(ctx context.Context, l *Listing) error
	DeleteListing(ctx context.Context, unitID uint64) error
	GetFeeConfig(ctx context.Context) (*FeeConfig, error)
	PutFeeConfig(ctx context.Context, f *FeeConfig) error
}
