package festival

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/xraph/festival/asset"
	"github.com/xraph/festival/market"
	"github.com/xraph/festival/plugin"
	"github.com/xraph/festival/sale"
	"github.com/xraph/festival/store"
	"github.com/xraph/festival/token"
	"github.com/xraph/festival/types"
)

// DefaultInitialSupply is the FTK minted to the owner at genesis.
var DefaultInitialSupply = types.FTK(1_000_000)

// Festival is the engine. It binds the value ledger, asset registry,
// primary sale and marketplace to one store transaction per call.
// Mutations are serialized under a single writer lock; views share a read
// lock and never observe a half-applied operation.
type Festival struct {
	mu      sync.RWMutex
	store   store.Store
	plugins *plugin.Registry
	logger  *slog.Logger
	now     func() time.Time

	owner   common.Address
	address common.Address

	// Genesis configuration
	saleConfig    sale.Config
	initialSupply types.Amount
	feeRecipient  common.Address
	migrate       bool
}

// New creates a Festival owned by owner. Only owner may mint FTK, open
// the sale and set the fee rate.
func New(s store.Store, owner common.Address, opts ...Option) *Festival {
	f := &Festival{
		store:         s,
		plugins:       plugin.NewRegistry(),
		logger:        slog.Default(),
		now:           time.Now,
		owner:         owner,
		address:       crypto.CreateAddress(owner, 0),
		saleConfig:    *sale.DefaultConfig(owner),
		initialSupply: DefaultInitialSupply,
		feeRecipient:  owner,
		migrate:       true,
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.saleConfig.Beneficiary == (common.Address{}) {
		f.saleConfig.Beneficiary = owner
	}
	if f.feeRecipient == (common.Address{}) {
		f.feeRecipient = owner
	}

	return f
}

// Owner returns the organiser identity.
func (f *Festival) Owner() common.Address { return f.owner }

// Wallet returns the organiser's wallet. It is the same identity as Owner
// and is the default sale beneficiary and fee recipient.
func (f *Festival) Wallet() common.Address { return f.owner }

// Address returns the engine's own account. Buyers approve it as FTK
// spender before minting or purchasing.
func (f *Festival) Address() common.Address { return f.address }

// Store returns the underlying store.
func (f *Festival) Store() store.Store { return f.store }

// Plugins returns the plugin registry.
func (f *Festival) Plugins() *plugin.Registry { return f.plugins }

// Start migrates the store, writes genesis state on first run and
// initializes plugins.
func (f *Festival) Start(ctx context.Context) error {
	if f.owner == (common.Address{}) {
		return fmt.Errorf("start: owner: %w", types.ErrInvalidAddress)
	}
	if err := f.saleConfig.Validate(); err != nil {
		return fmt.Errorf("start: sale config: %w", err)
	}

	if f.migrate {
		if err := f.store.Migrate(ctx); err != nil {
			return err
		}
	}

	created, err := f.genesis(ctx)
	if err != nil {
		return fmt.Errorf("start: genesis: %w", err)
	}
	if created && !f.initialSupply.IsZero() {
		f.plugins.EmitValueMinted(ctx, f.owner, f.initialSupply)
	}

	f.plugins.EmitInit(ctx, f)

	f.logger.Info("festival started",
		"owner", f.owner.Hex(),
		"address", f.address.Hex(),
		"genesis", created,
		"plugins", f.plugins.Count(),
	)

	return nil
}

// genesis writes the initial configuration and supply once.
func (f *Festival) genesis(ctx context.Context) (bool, error) {
	created := false
	err := f.update(ctx, "genesis", func(c *components, tx store.Tx) error {
		if _, err := tx.GetSaleConfig(ctx); !errors.Is(err, types.ErrNotInitialized) {
			return err
		}
		created = true

		cfg := f.saleConfig
		if err := tx.PutSaleConfig(ctx, &cfg); err != nil {
			return err
		}
		if err := tx.PutFeeConfig(ctx, &market.FeeConfig{Recipient: f.feeRecipient}); err != nil {
			return err
		}
		if f.initialSupply.IsZero() {
			return nil
		}
		return c.ledger.Mint(ctx, f.owner, f.owner, f.initialSupply)
	})
	return created, err
}

// Stop shuts down plugins and closes the store.
func (f *Festival) Stop(ctx context.Context) error {
	f.plugins.EmitShutdown(ctx)
	f.logger.Info("festival stopped")
	return f.store.Close()
}

// components are the business components bound to one transaction.
type components struct {
	ledger *token.Ledger
	units  *asset.Registry
	sale   *sale.Controller
	market *market.Market
}

func (f *Festival) bind(tx store.Tx) *components {
	ledger := token.New(tx, f.owner)
	units := asset.New(tx, f.now)
	return &components{
		ledger: ledger,
		units:  units,
		sale:   sale.New(tx, ledger, units, f.owner, f.address, f.now),
		market: market.New(tx, ledger, units, f.owner, f.address, f.now),
	}
}

// update runs fn as one atomic mutation under the writer lock.
func (f *Festival) update(ctx context.Context, op string, fn func(c *components, tx store.Tx) error) error {
	f.mu.Lock()
	err := f.store.Update(ctx, func(tx store.Tx) error {
		return fn(f.bind(tx), tx)
	})
	f.mu.Unlock()

	if err != nil {
		f.reject(ctx, op, err)
	}
	return err
}

// view runs fn against a consistent snapshot under the read lock.
func (f *Festival) view(ctx context.Context, fn func(c *components) error) error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.store.View(ctx, func(tx store.Tx) error {
		return fn(f.bind(tx))
	})
}

func (f *Festival) reject(ctx context.Context, op string, err error) {
	kind := types.KindOf(err)
	if kind == types.KindInternal {
		f.logger.Error("festival operation failed",
			"op", op,
			"error", err,
		)
		return
	}

	f.logger.Debug("festival operation rejected",
		"op", op,
		"kind", kind.String(),
		"code", types.CodeOf(err),
		"error", err,
	)
	f.plugins.EmitOperationRejected(ctx, op, err)
}
