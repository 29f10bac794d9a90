package plugin_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/festival/market"
	"github.com/xraph/festival/plugin"
	"github.com/xraph/festival/types"
)

type recorder struct {
	name string

	mu     sync.Mutex
	minted []types.Amount
	settle []*market.Settlement
	reject []string
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) OnValueMinted(_ context.Context, _ common.Address, amount types.Amount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.minted = append(r.minted, amount)
	return nil
}

func (r *recorder) OnSettled(_ context.Context, s *market.Settlement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settle = append(r.settle, s)
	return nil
}

func (r *recorder) OnOperationRejected(_ context.Context, op string, _ error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reject = append(r.reject, op)
	return nil
}

type failing struct{}

func (failing) Name() string { return "failing" }

func (failing) OnValueMinted(context.Context, common.Address, types.Amount) error {
	return errors.New("boom")
}

type slow struct{ release chan struct{} }

func (slow) Name() string { return "slow" }

func (s slow) OnValueMinted(context.Context, common.Address, types.Amount) error {
	<-s.release
	return nil
}

func quietRegistry() *plugin.Registry {
	return plugin.NewRegistry().WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := quietRegistry()

	if err := r.Register(&recorder{name: "audit"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(&recorder{name: "audit"}); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
	if r.Count() != 1 {
		t.Errorf("Count: got %d, want 1", r.Count())
	}
	if r.Get("audit") == nil {
		t.Error("Get: expected plugin")
	}
	if r.Get("missing") != nil {
		t.Error("Get: expected nil for unknown name")
	}
}

func TestEmitDispatchesOnlyToImplementers(t *testing.T) {
	r := quietRegistry()
	rec := &recorder{name: "rec"}
	if err := r.Register(rec); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(failing{}); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	r.EmitValueMinted(ctx, common.HexToAddress("0x01"), types.FTK(5))
	r.EmitSettled(ctx, &market.Settlement{UnitID: 7})
	r.EmitOperationRejected(ctx, "market.purchase", types.ErrPriceMismatch)
	// No plugin implements these; they must be no-ops.
	r.EmitShutdown(ctx)
	r.EmitListingSet(ctx, &market.Listing{})

	if len(rec.minted) != 1 || !rec.minted[0].Equal(types.FTK(5)) {
		t.Errorf("minted: got %v", rec.minted)
	}
	if len(rec.settle) != 1 || rec.settle[0].UnitID != 7 {
		t.Errorf("settled: got %v", rec.settle)
	}
	if len(rec.reject) != 1 || rec.reject[0] != "market.purchase" {
		t.Errorf("rejected: got %v", rec.reject)
	}
}

func TestEmitTimesOutSlowPlugins(t *testing.T) {
	r := quietRegistry().WithTimeout(20 * time.Millisecond)
	s := slow{release: make(chan struct{})}
	defer close(s.release)

	if err := r.Register(s); err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	r.EmitValueMinted(context.Background(), common.Address{}, types.FTK(1))
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("emit blocked for %s", elapsed)
	}
}
