package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/festival/asset"
	"github.com/xraph/festival/market"
	"github.com/xraph/festival/sale"
	"github.com/xraph/festival/types"
)

// DefaultTimeout bounds a single hook call.
const DefaultTimeout = 5 * time.Second

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger
	timeout time.Duration

	// Type-cached plugin lists for efficient dispatch
	onInit              []OnInit
	onShutdown          []OnShutdown
	onValueMinted       []OnValueMinted
	onValueTransferred  []OnValueTransferred
	onSaleStarted       []OnSaleStarted
	onUnitsMinted       []OnUnitsMinted
	onUnitTransferred   []OnUnitTransferred
	onListingSet        []OnListingSet
	onListingCanceled   []OnListingCanceled
	onSettled           []OnSettled
	onFeeRateChanged    []OnFeeRateChanged
	onOperationRejected []OnOperationRejected
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:  slog.Default(),
		timeout: DefaultTimeout,
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// WithTimeout sets the per-hook timeout.
func (r *Registry) WithTimeout(d time.Duration) *Registry {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnValueMinted); ok {
		r.onValueMinted = append(r.onValueMinted, v)
	}
	if v, ok := p.(OnValueTransferred); ok {
		r.onValueTransferred = append(r.onValueTransferred, v)
	}
	if v, ok := p.(OnSaleStarted); ok {
		r.onSaleStarted = append(r.onSaleStarted, v)
	}
	if v, ok := p.(OnUnitsMinted); ok {
		r.onUnitsMinted = append(r.onUnitsMinted, v)
	}
	if v, ok := p.(OnUnitTransferred); ok {
		r.onUnitTransferred = append(r.onUnitTransferred, v)
	}
	if v, ok := p.(OnListingSet); ok {
		r.onListingSet = append(r.onListingSet, v)
	}
	if v, ok := p.(OnListingCanceled); ok {
		r.onListingCanceled = append(r.onListingCanceled, v)
	}
	if v, ok := p.(OnSettled); ok {
		r.onSettled = append(r.onSettled, v)
	}
	if v, ok := p.(OnFeeRateChanged); ok {
		r.onFeeRateChanged = append(r.onFeeRateChanged, v)
	}
	if v, ok := p.(OnOperationRejected); ok {
		r.onOperationRejected = append(r.onOperationRejected, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", implementedInterfaces(p),
	)

	return nil
}

var hookTypes = []struct {
	name string
	typ  reflect.Type
}{
	{"OnInit", reflect.TypeFor[OnInit]()},
	{"OnShutdown", reflect.TypeFor[OnShutdown]()},
	{"OnValueMinted", reflect.TypeFor[OnValueMinted]()},
	{"OnValueTransferred", reflect.TypeFor[OnValueTransferred]()},
	{"OnSaleStarted", reflect.TypeFor[OnSaleStarted]()},
	{"OnUnitsMinted", reflect.TypeFor[OnUnitsMinted]()},
	{"OnUnitTransferred", reflect.TypeFor[OnUnitTransferred]()},
	{"OnListingSet", reflect.TypeFor[OnListingSet]()},
	{"OnListingCanceled", reflect.TypeFor[OnListingCanceled]()},
	{"OnSettled", reflect.TypeFor[OnSettled]()},
	{"OnFeeRateChanged", reflect.TypeFor[OnFeeRateChanged]()},
	{"OnOperationRejected", reflect.TypeFor[OnOperationRejected]()},
}

// implementedInterfaces returns the hook names p implements.
func implementedInterfaces(p Plugin) []string {
	var names []string
	v := reflect.TypeOf(p)
	for _, h := range hookTypes {
		if v.Implements(h.typ) {
			names = append(names, h.name)
		}
	}
	return names
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// emit calls fn for every plugin in the snapshot, logging failures.
func emit[T Plugin](ctx context.Context, r *Registry, hook string, snapshot func() []T, fn func(T) error) {
	r.mu.RLock()
	plugins := snapshot()
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return fn(p)
		}); err != nil {
			r.logger.Warn("plugin "+hook+" failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, f any) {
	emit(ctx, r, "OnInit", func() []OnInit { return r.onInit }, func(p OnInit) error {
		return p.OnInit(ctx, f)
	})
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	emit(ctx, r, "OnShutdown", func() []OnShutdown { return r.onShutdown }, func(p OnShutdown) error {
		return p.OnShutdown(ctx)
	})
}

// EmitValueMinted emits a value minted event.
func (r *Registry) EmitValueMinted(ctx context.Context, to common.Address, amount types.Amount) {
	emit(ctx, r, "OnValueMinted", func() []OnValueMinted { return r.onValueMinted }, func(p OnValueMinted) error {
		return p.OnValueMinted(ctx, to, amount)
	})
}

// EmitValueTransferred emits a value transferred event.
func (r *Registry) EmitValueTransferred(ctx context.Context, from, to common.Address, amount types.Amount) {
	emit(ctx, r, "OnValueTransferred", func() []OnValueTransferred { return r.onValueTransferred }, func(p OnValueTransferred) error {
		return p.OnValueTransferred(ctx, from, to, amount)
	})
}

// EmitSaleStarted emits a sale started event.
func (r *Registry) EmitSaleStarted(ctx context.Context, cfg *sale.Config) {
	emit(ctx, r, "OnSaleStarted", func() []OnSaleStarted { return r.onSaleStarted }, func(p OnSaleStarted) error {
		return p.OnSaleStarted(ctx, cfg)
	})
}

// EmitUnitsMinted emits a units minted event.
func (r *Registry) EmitUnitsMinted(ctx context.Context, receipt *sale.Receipt) {
	emit(ctx, r, "OnUnitsMinted", func() []OnUnitsMinted { return r.onUnitsMinted }, func(p OnUnitsMinted) error {
		return p.OnUnitsMinted(ctx, receipt)
	})
}

// EmitUnitTransferred emits a unit transferred event.
func (r *Registry) EmitUnitTransferred(ctx context.Context, receipt *asset.TransferReceipt) {
	emit(ctx, r, "OnUnitTransferred", func() []OnUnitTransferred { return r.onUnitTransferred }, func(p OnUnitTransferred) error {
		return p.OnUnitTransferred(ctx, receipt)
	})
}

// EmitListingSet emits a listing set event.
func (r *Registry) EmitListingSet(ctx context.Context, l *market.Listing) {
	emit(ctx, r, "OnListingSet", func() []OnListingSet { return r.onListingSet }, func(p OnListingSet) error {
		return p.OnListingSet(ctx, l)
	})
}

// EmitListingCanceled emits a listing canceled event.
func (r *Registry) EmitListingCanceled(ctx context.Context, l *market.Listing) {
	emit(ctx, r, "OnListingCanceled", func() []OnListingCanceled { return r.onListingCanceled }, func(p OnListingCanceled) error {
		return p.OnListingCanceled(ctx, l)
	})
}

// EmitSettled emits a settlement event.
func (r *Registry) EmitSettled(ctx context.Context, s *market.Settlement) {
	emit(ctx, r, "OnSettled", func() []OnSettled { return r.onSettled }, func(p OnSettled) error {
		return p.OnSettled(ctx, s)
	})
}

// EmitFeeRateChanged emits a fee rate changed event.
func (r *Registry) EmitFeeRateChanged(ctx context.Context, cfg *market.FeeConfig) {
	emit(ctx, r, "OnFeeRateChanged", func() []OnFeeRateChanged { return r.onFeeRateChanged }, func(p OnFeeRateChanged) error {
		return p.OnFeeRateChanged(ctx, cfg)
	})
}

// EmitOperationRejected emits an operation rejected event.
func (r *Registry) EmitOperationRejected(ctx context.Context, op string, err error) {
	emit(ctx, r, "OnOperationRejected", func() []OnOperationRejected { return r.onOperationRejected }, func(p OnOperationRejected) error {
		return p.OnOperationRejected(ctx, op, err)
	})
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the engine.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(r.timeout):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
