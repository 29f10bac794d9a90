package festival_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/festival"
	"github.com/xraph/festival/asset"
	"github.com/xraph/festival/market"
	"github.com/xraph/festival/sale"
	badgerstore "github.com/xraph/festival/store/badger"
	"github.com/xraph/festival/store/memory"
)

var (
	owner  = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	seller = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	buyer  = common.HexToAddress("0x00000000000000000000000000000000000000c3")
	third  = common.HexToAddress("0x00000000000000000000000000000000000000d4")
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFestival(t *testing.T, opts ...festival.Option) *festival.Festival {
	t.Helper()

	opts = append([]festival.Option{festival.WithLogger(quiet())}, opts...)
	f := festival.New(memory.New(), owner, opts...)
	if err := f.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	return f
}

// fund mints amount FTK to addr.
func fund(t *testing.T, f *festival.Festival, addr common.Address, amount festival.Amount) {
	t.Helper()
	if err := f.MintValue(context.Background(), owner, addr, amount); err != nil {
		t.Fatalf("fund %s: %v", addr.Hex(), err)
	}
}

// mintOne opens the sale if needed and buys one unit for addr.
func mintOne(t *testing.T, f *festival.Festival, addr common.Address) uint64 {
	t.Helper()
	ctx := context.Background()

	cfg, err := f.SaleConfig(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Enabled {
		if _, err := f.StartSale(ctx, owner); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.ApproveValue(ctx, addr, f.Address(), cfg.UnitPrice); err != nil {
		t.Fatal(err)
	}
	receipt, err := f.PublicMint(ctx, addr, 1)
	if err != nil {
		t.Fatalf("public mint: %v", err)
	}
	return receipt.Units[0]
}

func balance(t *testing.T, f *festival.Festival, addr common.Address) festival.Amount {
	t.Helper()
	b, err := f.ValueBalanceOf(context.Background(), addr)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func assertBalance(t *testing.T, f *festival.Festival, addr common.Address, want festival.Amount) {
	t.Helper()
	if got := balance(t, f, addr); !got.Equal(want) {
		t.Errorf("balance of %s: got %s, want %s", addr.Hex(), got, want)
	}
}

func TestGenesis(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	f := festival.New(s, owner, festival.WithLogger(quiet()))
	if err := f.Start(ctx); err != nil {
		t.Fatal(err)
	}

	assertBalance(t, f, owner, festival.DefaultInitialSupply)
	if f.Wallet() != owner || f.Owner() != owner {
		t.Errorf("wallet %s owner %s, want %s", f.Wallet().Hex(), f.Owner().Hex(), owner.Hex())
	}

	cfg, err := f.SaleConfig(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Enabled {
		t.Error("sale should start closed")
	}
	if !cfg.UnitPrice.Equal(festival.FTK(10)) || cfg.MaxPerTransaction != 5 || cfg.MaxPerActor != 5 {
		t.Errorf("unexpected sale defaults: %+v", cfg)
	}

	fees, err := f.FeeConfig(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if fees.Rate != 0 || fees.Recipient != owner {
		t.Errorf("unexpected fee config: %+v", fees)
	}

	// A second start over the same store must not mint again.
	again := festival.New(s, owner, festival.WithLogger(quiet()))
	if err := again.Start(ctx); err != nil {
		t.Fatal(err)
	}
	supply, err := again.ValueTotalSupply(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !supply.Equal(festival.DefaultInitialSupply) {
		t.Errorf("supply after restart: got %s", supply)
	}
}

func TestStartRejectsZeroOwner(t *testing.T) {
	f := festival.New(memory.New(), common.Address{}, festival.WithLogger(quiet()))
	if err := f.Start(context.Background()); !errors.Is(err, festival.ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
}

func TestResaleScenario(t *testing.T) {
	ctx := context.Background()
	f := newFestival(t)

	fund(t, f, seller, festival.FTK(100))
	fund(t, f, buyer, festival.FTK(100))

	unitID := mintOne(t, f, seller)
	if unitID != 1 {
		t.Fatalf("first unit: got %d, want 1", unitID)
	}
	assertBalance(t, f, seller, festival.FTK(90))

	if _, err := f.SetListing(ctx, seller, unitID, festival.FTK(12)); !errors.Is(err, festival.ErrPriceCapExceeded) {
		t.Fatalf("expected ErrPriceCapExceeded, got %v", err)
	}
	if _, err := f.SetListing(ctx, seller, unitID, festival.FTK(11)); err != nil {
		t.Fatal(err)
	}

	price, err := f.SellingPrice(ctx, unitID)
	if err != nil {
		t.Fatal(err)
	}
	if !price.Equal(festival.FTK(11)) {
		t.Errorf("selling price: got %s", price)
	}

	if err := f.ApproveValue(ctx, buyer, f.Address(), festival.FTK(11)); err != nil {
		t.Fatal(err)
	}
	s, err := f.PurchaseListing(ctx, buyer, unitID, festival.FTK(11))
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if !s.Fee.IsZero() || !s.Proceeds.Equal(festival.FTK(11)) {
		t.Errorf("settlement: fee %s proceeds %s", s.Fee, s.Proceeds)
	}

	assertBalance(t, f, seller, festival.FTK(101))
	assertBalance(t, f, buyer, festival.FTK(89))
	assertBalance(t, f, f.Address(), festival.Zero())

	holder, err := f.OwnerOf(ctx, unitID)
	if err != nil {
		t.Fatal(err)
	}
	if holder != buyer {
		t.Errorf("owner: got %s, want buyer", holder.Hex())
	}

	limit, err := f.PriceCap(ctx, unitID)
	if err != nil {
		t.Fatal(err)
	}
	if !limit.Equal(festival.MustFTK("12.1")) {
		t.Errorf("price cap: got %s, want 12.1 FTK", limit)
	}

	if _, err := f.SellingPrice(ctx, unitID); !errors.Is(err, festival.ErrNoActiveListing) {
		t.Errorf("expected listing to be gone, got %v", err)
	}
}

func TestFeeAccounting(t *testing.T) {
	ctx := context.Background()
	f := newFestival(t, festival.WithFeeRecipient(third))

	fund(t, f, seller, festival.FTK(10))
	fund(t, f, buyer, festival.FTK(100))
	unitID := mintOne(t, f, seller)

	if _, err := f.Monetise(ctx, seller, 10); !errors.Is(err, festival.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if _, err := f.Monetise(ctx, owner, 101); !errors.Is(err, festival.ErrInvalidRate) {
		t.Fatalf("expected ErrInvalidRate, got %v", err)
	}
	if _, err := f.Monetise(ctx, owner, 10); err != nil {
		t.Fatal(err)
	}

	if _, err := f.SetListing(ctx, seller, unitID, festival.FTK(10)); err != nil {
		t.Fatal(err)
	}
	if err := f.ApproveValue(ctx, buyer, f.Address(), festival.FTK(10)); err != nil {
		t.Fatal(err)
	}
	s, err := f.PurchaseListing(ctx, buyer, unitID, festival.FTK(10))
	if err != nil {
		t.Fatal(err)
	}

	if !s.Fee.Equal(festival.FTK(1)) || !s.Proceeds.Equal(festival.FTK(9)) || s.FeeRecipient != third {
		t.Errorf("settlement: %+v", s)
	}
	assertBalance(t, f, seller, festival.FTK(9))
	assertBalance(t, f, buyer, festival.FTK(90))
	assertBalance(t, f, third, festival.FTK(1))
}

func TestRejectedPurchaseChangesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFestival(t)

	fund(t, f, seller, festival.FTK(10))
	fund(t, f, buyer, festival.FTK(5))
	unitID := mintOne(t, f, seller)

	if _, err := f.SetListing(ctx, seller, unitID, festival.FTK(11)); err != nil {
		t.Fatal(err)
	}
	if err := f.ApproveValue(ctx, buyer, f.Address(), festival.FTK(11)); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		maxPrice festival.Amount
		check    func(error) bool
	}{
		{"price mismatch", festival.FTK(10), festival.IsValidation},
		{"insufficient funds", festival.FTK(11), festival.IsFunds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.PurchaseListing(ctx, buyer, unitID, tt.maxPrice)
			if err == nil || !tt.check(err) {
				t.Fatalf("unexpected error: %v", err)
			}

			assertBalance(t, f, buyer, festival.FTK(5))
			assertBalance(t, f, seller, festival.Zero())

			allowance, err := f.Allowance(ctx, buyer, f.Address())
			if err != nil {
				t.Fatal(err)
			}
			if !allowance.Equal(festival.FTK(11)) {
				t.Errorf("allowance: got %s", allowance)
			}

			holder, err := f.OwnerOf(ctx, unitID)
			if err != nil {
				t.Fatal(err)
			}
			if holder != seller {
				t.Errorf("owner changed to %s", holder.Hex())
			}
			if _, err := f.Listing(ctx, unitID); err != nil {
				t.Errorf("listing should survive: %v", err)
			}
		})
	}
}

func TestPublicMintCaps(t *testing.T) {
	ctx := context.Background()
	f := newFestival(t)
	fund(t, f, buyer, festival.FTK(100))

	if _, err := f.PublicMint(ctx, buyer, 1); !errors.Is(err, festival.ErrSaleClosed) {
		t.Fatalf("expected ErrSaleClosed, got %v", err)
	}
	if _, err := f.StartSale(ctx, buyer); !errors.Is(err, festival.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if _, err := f.StartSale(ctx, owner); err != nil {
		t.Fatal(err)
	}
	if _, err := f.StartSale(ctx, owner); !errors.Is(err, festival.ErrAlreadyOpen) {
		t.Fatalf("expected ErrAlreadyOpen, got %v", err)
	}

	if err := f.ApproveValue(ctx, buyer, f.Address(), festival.MaxAmount()); err != nil {
		t.Fatal(err)
	}
	if _, err := f.PublicMint(ctx, buyer, 6); !errors.Is(err, festival.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}

	receipt, err := f.PublicMint(ctx, buyer, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(receipt.Units) != 5 || !receipt.Total.Equal(festival.FTK(50)) {
		t.Errorf("receipt: %+v", receipt)
	}
	if _, err := f.PublicMint(ctx, buyer, 1); !errors.Is(err, festival.ErrMintCapExceeded) {
		t.Fatalf("expected ErrMintCapExceeded, got %v", err)
	}

	n, err := f.MintCount(ctx, buyer)
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("mint count: got %d", n)
	}
	units, err := f.BalanceOf(ctx, buyer)
	if err != nil {
		t.Fatal(err)
	}
	if units != 5 {
		t.Errorf("unit balance: got %d", units)
	}
	assertBalance(t, f, buyer, festival.FTK(50))
}

func TestTransferWithdrawsListing(t *testing.T) {
	ctx := context.Background()
	f := newFestival(t)
	fund(t, f, seller, festival.FTK(10))
	unitID := mintOne(t, f, seller)

	if _, err := f.SetListing(ctx, seller, unitID, festival.FTK(10)); err != nil {
		t.Fatal(err)
	}

	if _, err := f.Transfer(ctx, third, seller, third, unitID); !errors.Is(err, festival.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if _, err := f.Transfer(ctx, common.Address{}, seller, third, unitID); !errors.Is(err, festival.ErrNotAuthorized) {
		t.Fatalf("zero caller: expected ErrNotAuthorized, got %v", err)
	}
	if holder, _ := f.OwnerOf(ctx, unitID); holder != seller {
		t.Fatalf("owner after rejected transfers: got %s", holder.Hex())
	}
	if err := f.SetApprovalForAll(ctx, seller, third, true); err != nil {
		t.Fatal(err)
	}

	receipt, err := f.Transfer(ctx, third, seller, buyer, unitID)
	if err != nil {
		t.Fatal(err)
	}
	if !receipt.ListingClosed {
		t.Error("expected receipt to report the closed listing")
	}

	_, err = f.Listing(ctx, unitID)
	if !festival.IsNotFound(err) || !festival.IsState(err) {
		t.Errorf("expected no active listing, got %v", err)
	}

	ids, err := f.UnitsOf(ctx, buyer)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != unitID {
		t.Errorf("units of buyer: got %v", ids)
	}
	if ids, _ := f.UnitsOf(ctx, seller); len(ids) != 0 {
		t.Errorf("units of seller: got %v", ids)
	}
}

func TestApproveClearedOnTransfer(t *testing.T) {
	ctx := context.Background()
	f := newFestival(t)
	fund(t, f, seller, festival.FTK(10))
	unitID := mintOne(t, f, seller)

	if err := f.Approve(ctx, buyer, unitID, third); !errors.Is(err, festival.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if err := f.Approve(ctx, seller, unitID, third); err != nil {
		t.Fatal(err)
	}
	if got, _ := f.GetApproved(ctx, unitID); got != third {
		t.Fatalf("approved: got %s", got.Hex())
	}

	if _, err := f.Transfer(ctx, third, seller, buyer, unitID); err != nil {
		t.Fatal(err)
	}
	if got, _ := f.GetApproved(ctx, unitID); got != (common.Address{}) {
		t.Errorf("approval should be cleared, got %s", got.Hex())
	}
}

func TestSupplyEqualsSumOfBalances(t *testing.T) {
	ctx := context.Background()
	f := newFestival(t, festival.WithFeeRecipient(third))

	fund(t, f, seller, festival.FTK(30))
	fund(t, f, buyer, festival.FTK(40))
	unitID := mintOne(t, f, seller)
	mintOne(t, f, buyer)

	if _, err := f.Monetise(ctx, owner, 25); err != nil {
		t.Fatal(err)
	}
	if _, err := f.SetListing(ctx, seller, unitID, festival.MustFTK("10.5")); err != nil {
		t.Fatal(err)
	}
	if err := f.ApproveValue(ctx, buyer, f.Address(), festival.MustFTK("10.5")); err != nil {
		t.Fatal(err)
	}
	if _, err := f.PurchaseListing(ctx, buyer, unitID, festival.MustFTK("10.5")); err != nil {
		t.Fatal(err)
	}
	if err := f.TransferValue(ctx, buyer, seller, festival.FTK(3)); err != nil {
		t.Fatal(err)
	}

	var parts []festival.Amount
	for _, addr := range []common.Address{owner, seller, buyer, third, f.Address()} {
		parts = append(parts, balance(t, f, addr))
	}
	sum, ok := festival.SumAmounts(parts...)
	if !ok {
		t.Fatal("overflow")
	}

	supply, err := f.ValueTotalSupply(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !sum.Equal(supply) {
		t.Errorf("sum of balances %s != supply %s", sum, supply)
	}

	units, err := f.UnitTotalSupply(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if units != 2 {
		t.Errorf("unit supply: got %d", units)
	}
}

func TestUnitSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFestival(t)
	fund(t, f, seller, festival.FTK(10))
	unitID := mintOne(t, f, seller)

	v, err := f.Unit(ctx, unitID)
	if err != nil {
		t.Fatal(err)
	}
	if v.Owner != seller || v.Listing != nil || !v.PriceCap.Equal(festival.FTK(11)) {
		t.Errorf("snapshot: %+v", v)
	}

	if _, err := f.SetListing(ctx, seller, unitID, festival.FTK(9)); err != nil {
		t.Fatal(err)
	}
	v, err = f.Unit(ctx, unitID)
	if err != nil {
		t.Fatal(err)
	}
	if v.Listing == nil || !v.Listing.AskPrice.Equal(festival.FTK(9)) {
		t.Errorf("snapshot listing: %+v", v.Listing)
	}

	if _, err := f.Unit(ctx, 99); !errors.Is(err, festival.ErrUnknownUnit) || !festival.IsNotFound(err) {
		t.Errorf("expected ErrUnknownUnit, got %v", err)
	}
}

func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		err   error
		check func(error) bool
		kind  festival.Kind
	}{
		{festival.ErrNotOwner, festival.IsAuthorization, festival.KindAuthorization},
		{festival.ErrSaleClosed, festival.IsState, festival.KindState},
		{festival.ErrPriceMismatch, festival.IsValidation, festival.KindValidation},
		{festival.ErrInsufficientAllowance, festival.IsFunds, festival.KindFunds},
		{festival.ErrUnknownUnit, festival.IsNotFound, festival.KindNotFound},
		{festival.ErrNoActiveListing, festival.IsNotFound, festival.KindState},
	}

	for _, tt := range tests {
		t.Run(festival.CodeOf(tt.err), func(t *testing.T) {
			if !tt.check(tt.err) {
				t.Error("predicate returned false")
			}
			if got := festival.KindOf(tt.err); got != tt.kind {
				t.Errorf("kind: got %s, want %s", got, tt.kind)
			}
		})
	}
}

// ──────────────────────────────────────────────────
// Plugin events
// ──────────────────────────────────────────────────

type events struct {
	mu        sync.Mutex
	minted    int
	sales     []*sale.Receipt
	transfers []*asset.TransferReceipt
	settled   []*market.Settlement
	rejected  []string
}

func (e *events) Name() string { return "events" }

func (e *events) OnValueMinted(context.Context, common.Address, festival.Amount) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.minted++
	return nil
}

func (e *events) OnUnitsMinted(_ context.Context, r *sale.Receipt) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sales = append(e.sales, r)
	return nil
}

func (e *events) OnUnitTransferred(_ context.Context, r *asset.TransferReceipt) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transfers = append(e.transfers, r)
	return nil
}

func (e *events) OnSettled(_ context.Context, s *market.Settlement) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settled = append(e.settled, s)
	return nil
}

func (e *events) OnOperationRejected(_ context.Context, op string, _ error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rejected = append(e.rejected, op)
	return nil
}

func TestPluginEvents(t *testing.T) {
	ctx := context.Background()
	ev := &events{}
	f := newFestival(t, festival.WithPlugin(ev))

	if ev.minted != 1 {
		t.Errorf("genesis mint events: got %d, want 1", ev.minted)
	}

	fund(t, f, seller, festival.FTK(10))
	fund(t, f, buyer, festival.FTK(10))
	unitID := mintOne(t, f, seller)

	if _, err := f.SetListing(ctx, seller, unitID, festival.FTK(10)); err != nil {
		t.Fatal(err)
	}
	if err := f.ApproveValue(ctx, buyer, f.Address(), festival.FTK(10)); err != nil {
		t.Fatal(err)
	}
	if _, err := f.PurchaseListing(ctx, buyer, unitID, festival.FTK(10)); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Transfer(ctx, buyer, buyer, third, unitID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.CancelListing(ctx, third, unitID); err == nil {
		t.Fatal("expected cancel without listing to fail")
	}

	if ev.minted != 3 {
		t.Errorf("mint events: got %d, want 3", ev.minted)
	}
	if len(ev.sales) != 1 || ev.sales[0].Units[0] != unitID {
		t.Errorf("sale events: %v", ev.sales)
	}
	if len(ev.settled) != 1 || ev.settled[0].Buyer != buyer {
		t.Errorf("settlement events: %v", ev.settled)
	}
	if len(ev.transfers) != 1 || ev.transfers[0].To != third || ev.transfers[0].ListingClosed {
		t.Errorf("transfer events: %v", ev.transfers)
	}
	if len(ev.rejected) != 1 || ev.rejected[0] != "market.cancel" {
		t.Errorf("rejection events: %v", ev.rejected)
	}
}

func TestStateSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	open := func() *festival.Festival {
		s, err := badgerstore.Open(dir, nil)
		if err != nil {
			t.Fatal(err)
		}
		f := festival.New(s, owner, festival.WithLogger(quiet()))
		if err := f.Start(ctx); err != nil {
			t.Fatal(err)
		}
		return f
	}

	f := open()
	fund(t, f, seller, festival.FTK(10))
	unitID := mintOne(t, f, seller)
	if _, err := f.SetListing(ctx, seller, unitID, festival.FTK(11)); err != nil {
		t.Fatal(err)
	}
	if err := f.Stop(ctx); err != nil {
		t.Fatal(err)
	}

	f = open()
	defer f.Stop(ctx) //nolint:errcheck // test cleanup

	price, err := f.SellingPrice(ctx, unitID)
	if err != nil {
		t.Fatal(err)
	}
	if !price.Equal(festival.FTK(11)) {
		t.Errorf("listing price after restart: got %s", price)
	}
	supply, err := f.ValueTotalSupply(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := festival.DefaultInitialSupply.Add(festival.FTK(10))
	if !supply.Equal(want) {
		t.Errorf("supply after restart: got %s, want %s", supply, want)
	}
	if cfg, _ := f.SaleConfig(ctx); !cfg.Enabled {
		t.Error("sale should still be open")
	}
}

func TestConcurrentPublicMintHonoursActorCap(t *testing.T) {
	ctx := context.Background()
	f := newFestival(t)

	fund(t, f, buyer, festival.FTK(200))
	if _, err := f.StartSale(ctx, owner); err != nil {
		t.Fatal(err)
	}
	if err := f.ApproveValue(ctx, buyer, f.Address(), festival.FTK(200)); err != nil {
		t.Fatal(err)
	}

	const workers = 12
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		minted int
		capped int
		other  []error
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.PublicMint(ctx, buyer, 1)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				minted++
			case errors.Is(err, festival.ErrMintCapExceeded):
				capped++
			default:
				other = append(other, err)
			}
		}()
	}
	wg.Wait()

	if len(other) > 0 {
		t.Fatalf("unexpected errors: %v", other)
	}
	if minted != 5 || capped != workers-5 {
		t.Errorf("minted %d capped %d, want 5 and %d", minted, capped, workers-5)
	}

	count, err := f.MintCount(ctx, buyer)
	if err != nil {
		t.Fatal(err)
	}
	if count != 5 {
		t.Errorf("mint count: got %d, want 5", count)
	}
	units, err := f.UnitTotalSupply(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if units != 5 {
		t.Errorf("unit supply: got %d, want 5", units)
	}
	assertBalance(t, f, buyer, festival.FTK(150))
}

func TestConcurrentPurchaseSettlesOnce(t *testing.T) {
	ctx := context.Background()
	f := newFestival(t)

	fund(t, f, seller, festival.FTK(10))
	unitID := mintOne(t, f, seller)
	if _, err := f.SetListing(ctx, seller, unitID, festival.FTK(11)); err != nil {
		t.Fatal(err)
	}

	buyers := make([]common.Address, 8)
	for i := range buyers {
		buyers[i] = common.BigToAddress(big.NewInt(int64(0xe0 + i)))
		fund(t, f, buyers[i], festival.FTK(20))
		if err := f.ApproveValue(ctx, buyers[i], f.Address(), festival.FTK(11)); err != nil {
			t.Fatal(err)
		}
	}

	supply, err := f.ValueTotalSupply(ctx)
	if err != nil {
		t.Fatal(err)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []common.Address
		lost    int
		other   []error
		done    = make(chan struct{})
	)

	// Readers run alongside the purchases and must never see supply move.
	var readers sync.WaitGroup
	for range 4 {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				got, err := f.ValueTotalSupply(ctx)
				if err != nil || !got.Equal(supply) {
					mu.Lock()
					other = append(other, fmt.Errorf("supply read %s: %v", got, err))
					mu.Unlock()
					return
				}
			}
		}()
	}

	for _, b := range buyers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.PurchaseListing(ctx, b, unitID, festival.FTK(11))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners = append(winners, b)
			case errors.Is(err, festival.ErrNoActiveListing):
				lost++
			default:
				other = append(other, err)
			}
		}()
	}
	wg.Wait()
	close(done)
	readers.Wait()

	if len(other) > 0 {
		t.Fatalf("unexpected errors: %v", other)
	}
	if len(winners) != 1 || lost != len(buyers)-1 {
		t.Fatalf("winners %d lost %d, want 1 and %d", len(winners), lost, len(buyers)-1)
	}

	holder, err := f.OwnerOf(ctx, unitID)
	if err != nil {
		t.Fatal(err)
	}
	if holder != winners[0] {
		t.Errorf("owner: got %s, want %s", holder.Hex(), winners[0].Hex())
	}
	assertBalance(t, f, seller, festival.FTK(11))

	parts := []festival.Amount{balance(t, f, owner), balance(t, f, seller), balance(t, f, f.Address())}
	for _, b := range buyers {
		want := festival.FTK(20)
		if b == winners[0] {
			want = festival.FTK(9)
		}
		assertBalance(t, f, b, want)
		parts = append(parts, balance(t, f, b))
	}
	sum, ok := festival.SumAmounts(parts...)
	if !ok {
		t.Fatal("overflow")
	}
	if !sum.Equal(supply) {
		t.Errorf("sum of balances %s != supply %s", sum, supply)
	}
}
