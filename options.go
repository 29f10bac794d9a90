package festival

import (
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/festival/plugin"
	"github.com/xraph/festival/sale"
	"github.com/xraph/festival/types"
)

// Option configures a Festival instance.
type Option func(*Festival)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Festival) {
		f.logger = logger
		f.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(f *Festival) {
		_ = f.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithPluginTimeout bounds each plugin hook call.
func WithPluginTimeout(d time.Duration) Option {
	return func(f *Festival) {
		f.plugins.WithTimeout(d)
	}
}

// WithSaleConfig sets the sale parameters written at genesis. Enabled and
// OpenedAt are ignored; the sale always starts closed. A zero beneficiary
// means the owner.
func WithSaleConfig(cfg sale.Config) Option {
	return func(f *Festival) {
		cfg.Enabled = false
		cfg.OpenedAt = nil
		f.saleConfig = cfg
	}
}

// WithInitialSupply sets the FTK minted to the owner at genesis.
func WithInitialSupply(amount types.Amount) Option {
	return func(f *Festival) {
		f.initialSupply = amount
	}
}

// WithFeeRecipient sets the account that receives monetisation fees.
// Defaults to the owner.
func WithFeeRecipient(addr common.Address) Option {
	return func(f *Festival) {
		f.feeRecipient = addr
	}
}

// WithAddress overrides the engine's own account, which escrows marketplace
// payments and pulls sale payments. Buyers approve it as FTK spender.
func WithAddress(addr common.Address) Option {
	return func(f *Festival) {
		f.address = addr
	}
}

// WithClock sets the time source for timestamps and receipts.
func WithClock(now func() time.Time) Option {
	return func(f *Festival) {
		f.now = now
	}
}

// WithMigrate controls whether Start runs store migrations. Defaults to true.
func WithMigrate(enabled bool) Option {
	return func(f *Festival) {
		f.migrate = enabled
	}
}
