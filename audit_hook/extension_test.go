package audithook_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	audithook "github.com/xraph/festival/audit_hook"
	"github.com/xraph/festival/market"
	"github.com/xraph/festival/types"
)

func capture() (*[]*audithook.AuditEvent, audithook.Recorder) {
	var events []*audithook.AuditEvent
	return &events, audithook.RecorderFunc(func(_ context.Context, e *audithook.AuditEvent) error {
		events = append(events, e)
		return nil
	})
}

func TestSettlementEvent(t *testing.T) {
	events, rec := capture()
	ext := audithook.New(rec)

	s := &market.Settlement{
		UnitID: 7,
		Seller: common.HexToAddress("0x0b"),
		Buyer:  common.HexToAddress("0x0c"),
		Price:  types.FTK(11),
		Fee:    types.FTK(1),
	}
	if err := ext.OnSettled(context.Background(), s); err != nil {
		t.Fatal(err)
	}

	if len(*events) != 1 {
		t.Fatalf("expected one event, got %d", len(*events))
	}
	e := (*events)[0]
	if e.Action != audithook.ActionListingSettled || e.ResourceID != "7" || e.Actor != s.Buyer.Hex() {
		t.Errorf("unexpected event: %+v", e)
	}
	if e.Metadata["price"] != types.FTK(11).Base() {
		t.Errorf("price metadata: %v", e.Metadata["price"])
	}
}

func TestRejectionSeverity(t *testing.T) {
	tests := []struct {
		err      error
		severity string
	}{
		{types.ErrNotAuthorized, audithook.SeverityWarning},
		{types.ErrPriceMismatch, audithook.SeverityInfo},
	}

	for _, tt := range tests {
		t.Run(types.CodeOf(tt.err), func(t *testing.T) {
			events, rec := capture()
			ext := audithook.New(rec)

			if err := ext.OnOperationRejected(context.Background(), "market.purchase", tt.err); err != nil {
				t.Fatal(err)
			}
			e := (*events)[0]
			if e.Outcome != audithook.OutcomeFailure || e.Severity != tt.severity {
				t.Errorf("got outcome %s severity %s", e.Outcome, e.Severity)
			}
			if e.Metadata["code"] != types.CodeOf(tt.err) || e.Reason == "" {
				t.Errorf("unexpected metadata: %+v", e.Metadata)
			}
		})
	}
}

func TestActionFiltering(t *testing.T) {
	ctx := context.Background()
	addr := common.HexToAddress("0x0a")

	t.Run("enabled", func(t *testing.T) {
		events, rec := capture()
		ext := audithook.New(rec, audithook.WithEnabledActions(audithook.ActionValueMinted))

		_ = ext.OnValueMinted(ctx, addr, types.FTK(1))
		_ = ext.OnValueTransferred(ctx, addr, addr, types.FTK(1))
		if len(*events) != 1 || (*events)[0].Action != audithook.ActionValueMinted {
			t.Errorf("unexpected events: %+v", *events)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		events, rec := capture()
		ext := audithook.New(rec, audithook.WithDisabledActions(audithook.ActionValueTransferred))

		_ = ext.OnValueMinted(ctx, addr, types.FTK(1))
		_ = ext.OnValueTransferred(ctx, addr, addr, types.FTK(1))
		if len(*events) != 1 || (*events)[0].Action != audithook.ActionValueMinted {
			t.Errorf("unexpected events: %+v", *events)
		}
	})
}

func TestRecorderFailureIsSwallowed(t *testing.T) {
	rec := audithook.RecorderFunc(func(context.Context, *audithook.AuditEvent) error {
		return errors.New("backend down")
	})
	ext := audithook.New(rec, audithook.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	if err := ext.OnListingSet(context.Background(), &market.Listing{UnitID: 1}); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}
