// Package plugin provides an extensible plugin system for Festival.
// Plugins hook into lifecycle and business events after the state change
// has been committed; they can observe but never veto an operation.
package plugin

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/festival/asset"
	"github.com/xraph/festival/market"
	"github.com/xraph/festival/sale"
	"github.com/xraph/festival/types"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the engine starts. f is the *festival.Festival.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, f any) error
}

// OnShutdown is called when the engine stops.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Value ledger hooks
// ──────────────────────────────────────────────────

// OnValueMinted is called after FTK is minted.
type OnValueMinted interface {
	Plugin
	OnValueMinted(ctx context.Context, to common.Address, amount types.Amount) error
}

// OnValueTransferred is called after a direct or delegated FTK transfer.
type OnValueTransferred interface {
	Plugin
	OnValueTransferred(ctx context.Context, from, to common.Address, amount types.Amount) error
}

// ──────────────────────────────────────────────────
// Primary sale hooks
// ──────────────────────────────────────────────────

// OnSaleStarted is called when the primary sale opens.
type OnSaleStarted interface {
	Plugin
	OnSaleStarted(ctx context.Context, cfg *sale.Config) error
}

// OnUnitsMinted is called after a successful public mint.
type OnUnitsMinted interface {
	Plugin
	OnUnitsMinted(ctx context.Context, receipt *sale.Receipt) error
}

// ──────────────────────────────────────────────────
// Asset registry hooks
// ──────────────────────────────────────────────────

// OnUnitTransferred is called after a unit changes hands outside the
// marketplace.
type OnUnitTransferred interface {
	Plugin
	OnUnitTransferred(ctx context.Context, receipt *asset.TransferReceipt) error
}

// ──────────────────────────────────────────────────
// Marketplace hooks
// ──────────────────────────────────────────────────

// OnListingSet is called when a unit is listed or relisted.
type OnListingSet interface {
	Plugin
	OnListingSet(ctx context.Context, l *market.Listing) error
}

// OnListingCanceled is called when a seller withdraws a listing.
type OnListingCanceled interface {
	Plugin
	OnListingCanceled(ctx context.Context, l *market.Listing) error
}

// OnSettled is called after a listing is purchased.
type OnSettled interface {
	Plugin
	OnSettled(ctx context.Context, s *market.Settlement) error
}

// OnFeeRateChanged is called when the owner changes the monetisation rate.
type OnFeeRateChanged interface {
	Plugin
	OnFeeRateChanged(ctx context.Context, cfg *market.FeeConfig) error
}

// ──────────────────────────────────────────────────
// Rejection hooks
// ──────────────────────────────────────────────────

// OnOperationRejected is called when an operation fails a business rule.
// Storage failures are not reported here.
type OnOperationRejected interface {
	Plugin
	OnOperationRejected(ctx context.Context, op string, err error) error
}
