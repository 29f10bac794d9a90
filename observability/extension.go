// Package observability provides a metrics extension for Festival that
// records sale, transfer and marketplace event counts via a MetricFactory.
package observability

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/festival/asset"
	"github.com/xraph/festival/market"
	"github.com/xraph/festival/plugin"
	"github.com/xraph/festival/sale"
	"github.com/xraph/festival/types"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin              = (*MetricsExtension)(nil)
	_ plugin.OnInit              = (*MetricsExtension)(nil)
	_ plugin.OnValueMinted       = (*MetricsExtension)(nil)
	_ plugin.OnValueTransferred  = (*MetricsExtension)(nil)
	_ plugin.OnSaleStarted       = (*MetricsExtension)(nil)
	_ plugin.OnUnitsMinted       = (*MetricsExtension)(nil)
	_ plugin.OnUnitTransferred   = (*MetricsExtension)(nil)
	_ plugin.OnListingSet        = (*MetricsExtension)(nil)
	_ plugin.OnListingCanceled   = (*MetricsExtension)(nil)
	_ plugin.OnSettled           = (*MetricsExtension)(nil)
	_ plugin.OnFeeRateChanged    = (*MetricsExtension)(nil)
	_ plugin.OnOperationRejected = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// Gauge interface for metric gauges.
type Gauge interface {
	Set(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
	Gauge(name string) Gauge
}

// MetricsExtension records system-wide ticketing metrics.
// Register it as a Festival plugin to track them automatically.
type MetricsExtension struct {
	factory MetricFactory

	// Value ledger metrics
	ValueMinted      Counter
	ValueTransfers   Counter
	ValueTransferFTK Histogram

	// Primary sale metrics
	SaleStarted   Counter
	SaleOpen      Gauge
	UnitsMinted   Counter
	MintBatchSize Histogram
	SaleRevenue   Counter

	// Registry metrics
	UnitTransfers  Counter
	ListingsClosed Counter

	// Marketplace metrics
	ListingsSet      Counter
	ListingsCanceled Counter
	Settlements      Counter
	SettlementPrice  Histogram
	FeesCollected    Counter
	FeeRate          Gauge

	// Rejection metrics
	Rejections              Counter
	AuthorizationRejections Counter
	StateRejections         Counter
	ValidationRejections    Counter
	FundsRejections         Counter
	NotFoundRejections      Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Value ledger metrics
		ValueMinted:      factory.Counter("festival.ftk.minted"),
		ValueTransfers:   factory.Counter("festival.ftk.transfers"),
		ValueTransferFTK: factory.Histogram("festival.ftk.transfer.amount"),

		// Primary sale metrics
		SaleStarted:   factory.Counter("festival.sale.started"),
		SaleOpen:      factory.Gauge("festival.sale.open"),
		UnitsMinted:   factory.Counter("festival.sale.units.minted"),
		MintBatchSize: factory.Histogram("festival.sale.batch.size"),
		SaleRevenue:   factory.Counter("festival.sale.revenue"),

		// Registry metrics
		UnitTransfers:  factory.Counter("festival.fnft.transfers"),
		ListingsClosed: factory.Counter("festival.fnft.listings.closed"),

		// Marketplace metrics
		ListingsSet:      factory.Counter("festival.market.listings.set"),
		ListingsCanceled: factory.Counter("festival.market.listings.canceled"),
		Settlements:      factory.Counter("festival.market.settlements"),
		SettlementPrice:  factory.Histogram("festival.market.settlement.price"),
		FeesCollected:    factory.Counter("festival.market.fees.collected"),
		FeeRate:          factory.Gauge("festival.market.fee.rate"),

		// Rejection metrics
		Rejections:              factory.Counter("festival.rejections"),
		AuthorizationRejections: factory.Counter("festival.rejections.authorization"),
		StateRejections:         factory.Counter("festival.rejections.state"),
		ValidationRejections:    factory.Counter("festival.rejections.validation"),
		FundsRejections:         factory.Counter("festival.rejections.funds"),
		NotFoundRejections:      factory.Counter("festival.rejections.not_found"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ any) error {
	return nil
}

// ──────────────────────────────────────────────────
// Value ledger hooks
// ──────────────────────────────────────────────────

// OnValueMinted implements plugin.OnValueMinted.
func (m *MetricsExtension) OnValueMinted(_ context.Context, _ common.Address, amount types.Amount) error {
	m.ValueMinted.Add(toFTK(amount))
	return nil
}

// OnValueTransferred implements plugin.OnValueTransferred.
func (m *MetricsExtension) OnValueTransferred(_ context.Context, _, _ common.Address, amount types.Amount) error {
	m.ValueTransfers.Inc()
	m.ValueTransferFTK.Observe(toFTK(amount))
	return nil
}

// ──────────────────────────────────────────────────
// Primary sale hooks
// ──────────────────────────────────────────────────

// OnSaleStarted implements plugin.OnSaleStarted.
func (m *MetricsExtension) OnSaleStarted(_ context.Context, _ *sale.Config) error {
	m.SaleStarted.Inc()
	m.SaleOpen.Set(1)
	return nil
}

// OnUnitsMinted implements plugin.OnUnitsMinted.
func (m *MetricsExtension) OnUnitsMinted(_ context.Context, r *sale.Receipt) error {
	count := float64(len(r.Units))
	m.UnitsMinted.Add(count)
	m.MintBatchSize.Observe(count)
	m.SaleRevenue.Add(toFTK(r.Total))
	return nil
}

// ──────────────────────────────────────────────────
// Registry hooks
// ──────────────────────────────────────────────────

// OnUnitTransferred implements plugin.OnUnitTransferred.
func (m *MetricsExtension) OnUnitTransferred(_ context.Context, r *asset.TransferReceipt) error {
	m.UnitTransfers.Inc()
	if r.ListingClosed {
		m.ListingsClosed.Inc()
	}
	return nil
}

// ──────────────────────────────────────────────────
// Marketplace hooks
// ──────────────────────────────────────────────────

// OnListingSet implements plugin.OnListingSet.
func (m *MetricsExtension) OnListingSet(_ context.Context, _ *market.Listing) error {
	m.ListingsSet.Inc()
	return nil
}

// OnListingCanceled implements plugin.OnListingCanceled.
func (m *MetricsExtension) OnListingCanceled(_ context.Context, _ *market.Listing) error {
	m.ListingsCanceled.Inc()
	return nil
}

// OnSettled implements plugin.OnSettled.
func (m *MetricsExtension) OnSettled(_ context.Context, s *market.Settlement) error {
	m.Settlements.Inc()
	m.SettlementPrice.Observe(toFTK(s.Price))
	if !s.Fee.IsZero() {
		m.FeesCollected.Add(toFTK(s.Fee))
	}
	return nil
}

// OnFeeRateChanged implements plugin.OnFeeRateChanged.
func (m *MetricsExtension) OnFeeRateChanged(_ context.Context, cfg *market.FeeConfig) error {
	m.FeeRate.Set(float64(cfg.Rate))
	return nil
}

// ──────────────────────────────────────────────────
// Rejection hooks
// ──────────────────────────────────────────────────

// OnOperationRejected implements plugin.OnOperationRejected.
func (m *MetricsExtension) OnOperationRejected(_ context.Context, _ string, err error) error {
	m.Rejections.Inc()
	switch types.KindOf(err) {
	case types.KindAuthorization:
		m.AuthorizationRejections.Inc()
	case types.KindState:
		m.StateRejections.Inc()
	case types.KindValidation:
		m.ValidationRejections.Inc()
	case types.KindFunds:
		m.FundsRejections.Inc()
	case types.KindNotFound:
		m.NotFoundRejections.Inc()
	}
	return nil
}

// toFTK converts an amount to whole tokens for metric values. Precision
// beyond float64 is lost.
func toFTK(a types.Amount) float64 {
	f, ok := new(big.Float).SetString(a.FormatFTK())
	if !ok {
		return 0
	}
	v, _ := f.Float64()
	return v
}
