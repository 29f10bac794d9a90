// Package audithook bridges Festival events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import any
// audit backend directly. Callers inject a RecorderFunc adapter at wiring
// time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/festival/asset"
	"github.com/xraph/festival/market"
	"github.com/xraph/festival/plugin"
	"github.com/xraph/festival/sale"
	"github.com/xraph/festival/types"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin              = (*Extension)(nil)
	_ plugin.OnValueMinted       = (*Extension)(nil)
	_ plugin.OnValueTransferred  = (*Extension)(nil)
	_ plugin.OnSaleStarted       = (*Extension)(nil)
	_ plugin.OnUnitsMinted       = (*Extension)(nil)
	_ plugin.OnUnitTransferred   = (*Extension)(nil)
	_ plugin.OnListingSet        = (*Extension)(nil)
	_ plugin.OnListingCanceled   = (*Extension)(nil)
	_ plugin.OnSettled           = (*Extension)(nil)
	_ plugin.OnFeeRateChanged    = (*Extension)(nil)
	_ plugin.OnOperationRejected = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Actor      string         `json:"actor,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Festival events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Value ledger hooks
// ──────────────────────────────────────────────────

// OnValueMinted implements plugin.OnValueMinted.
func (e *Extension) OnValueMinted(ctx context.Context, to common.Address, amount types.Amount) error {
	return e.record(ctx, ActionValueMinted, SeverityInfo, OutcomeSuccess,
		ResourceAccount, to.Hex(), "", CategoryValue, nil,
		"amount", amount.Base(),
	)
}

// OnValueTransferred implements plugin.OnValueTransferred.
func (e *Extension) OnValueTransferred(ctx context.Context, from, to common.Address, amount types.Amount) error {
	return e.record(ctx, ActionValueTransferred, SeverityInfo, OutcomeSuccess,
		ResourceAccount, to.Hex(), from.Hex(), CategoryValue, nil,
		"from", from.Hex(),
		"to", to.Hex(),
		"amount", amount.Base(),
	)
}

// ──────────────────────────────────────────────────
// Primary sale hooks
// ──────────────────────────────────────────────────

// OnSaleStarted implements plugin.OnSaleStarted.
func (e *Extension) OnSaleStarted(ctx context.Context, cfg *sale.Config) error {
	return e.record(ctx, ActionSaleStarted, SeverityInfo, OutcomeSuccess,
		ResourceSale, "", "", CategorySale, nil,
		"unit_price", cfg.UnitPrice.Base(),
		"max_per_transaction", cfg.MaxPerTransaction,
		"max_per_actor", cfg.MaxPerActor,
		"beneficiary", cfg.Beneficiary.Hex(),
	)
}

// OnUnitsMinted implements plugin.OnUnitsMinted.
func (e *Extension) OnUnitsMinted(ctx context.Context, r *sale.Receipt) error {
	return e.record(ctx, ActionUnitsMinted, SeverityInfo, OutcomeSuccess,
		ResourceSale, r.ID.String(), r.Buyer.Hex(), CategorySale, nil,
		"units", r.Units,
		"total", r.Total.Base(),
	)
}

// ──────────────────────────────────────────────────
// Registry hooks
// ──────────────────────────────────────────────────

// OnUnitTransferred implements plugin.OnUnitTransferred.
func (e *Extension) OnUnitTransferred(ctx context.Context, r *asset.TransferReceipt) error {
	return e.record(ctx, ActionUnitTransferred, SeverityInfo, OutcomeSuccess,
		ResourceUnit, unitRef(r.UnitID), r.Caller.Hex(), CategoryOwnership, nil,
		"transfer_id", r.ID.String(),
		"from", r.From.Hex(),
		"to", r.To.Hex(),
		"listing_closed", r.ListingClosed,
	)
}

// ──────────────────────────────────────────────────
// Marketplace hooks
// ──────────────────────────────────────────────────

// OnListingSet implements plugin.OnListingSet.
func (e *Extension) OnListingSet(ctx context.Context, l *market.Listing) error {
	return e.record(ctx, ActionListingSet, SeverityInfo, OutcomeSuccess,
		ResourceListing, unitRef(l.UnitID), l.Seller.Hex(), CategoryMarketplace, nil,
		"listing_id", l.ID.String(),
		"ask_price", l.AskPrice.Base(),
	)
}

// OnListingCanceled implements plugin.OnListingCanceled.
func (e *Extension) OnListingCanceled(ctx context.Context, l *market.Listing) error {
	return e.record(ctx, ActionListingCanceled, SeverityInfo, OutcomeSuccess,
		ResourceListing, unitRef(l.UnitID), l.Seller.Hex(), CategoryMarketplace, nil,
		"listing_id", l.ID.String(),
	)
}

// OnSettled implements plugin.OnSettled.
func (e *Extension) OnSettled(ctx context.Context, s *market.Settlement) error {
	return e.record(ctx, ActionListingSettled, SeverityInfo, OutcomeSuccess,
		ResourceListing, unitRef(s.UnitID), s.Buyer.Hex(), CategoryMarketplace, nil,
		"settlement_id", s.ID.String(),
		"seller", s.Seller.Hex(),
		"price", s.Price.Base(),
		"fee", s.Fee.Base(),
		"fee_rate", s.FeeRate,
	)
}

// OnFeeRateChanged implements plugin.OnFeeRateChanged.
func (e *Extension) OnFeeRateChanged(ctx context.Context, cfg *market.FeeConfig) error {
	return e.record(ctx, ActionFeeRateChanged, SeverityWarning, OutcomeSuccess,
		ResourceFee, "", "", CategoryMarketplace, nil,
		"rate", cfg.Rate,
		"recipient", cfg.Recipient.Hex(),
	)
}

// ──────────────────────────────────────────────────
// Rejection hooks
// ──────────────────────────────────────────────────

// OnOperationRejected implements plugin.OnOperationRejected.
func (e *Extension) OnOperationRejected(ctx context.Context, op string, err error) error {
	severity := SeverityInfo
	if types.KindOf(err) == types.KindAuthorization {
		severity = SeverityWarning
	}
	return e.record(ctx, ActionOperationRejected, severity, OutcomeFailure,
		"", "", "", CategoryAccess, err,
		"operation", op,
		"kind", types.KindOf(err).String(),
		"code", types.CodeOf(err),
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, actor, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Actor:      actor,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}

func unitRef(unitID uint64) string {
	return strconv.FormatUint(unitID, 10)
}
