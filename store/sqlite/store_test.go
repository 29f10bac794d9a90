package sqlite_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/festival"
	"github.com/xraph/festival/market"
	"github.com/xraph/festival/store"
	"github.com/xraph/festival/store/sqlite"
	"github.com/xraph/festival/store/storetest"
	"github.com/xraph/festival/types"
)

func openStore(t *testing.T, path string) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return s
}

func TestConformance(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "festival.db"))
	defer s.Close()

	storetest.Run(t, s)
}

func TestCompactDropsTombstones(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, filepath.Join(t.TempDir(), "festival.db"))
	defer s.Close()

	if err := s.Migrate(ctx); err != nil {
		t.Fatal(err)
	}

	seller := common.HexToAddress("0x00000000000000000000000000000000000000b2")
	err := s.Update(ctx, func(tx store.Tx) error {
		return tx.PutListing(ctx, &market.Listing{UnitID: 7, Seller: seller, AskPrice: types.FTK(3)})
	})
	if err != nil {
		t.Fatal(err)
	}
	err = s.Update(ctx, func(tx store.Tx) error {
		return tx.DeleteListing(ctx, 7)
	})
	if err != nil {
		t.Fatal(err)
	}

	err = s.View(ctx, func(tx store.Tx) error {
		_, err := tx.GetListing(ctx, 7)
		return err
	})
	if !errors.Is(err, types.ErrNoActiveListing) {
		t.Fatalf("tombstoned listing should read as absent, got %v", err)
	}

	n, err := s.Compact(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("compact removed %d records, want 1", n)
	}
	if n, _ := s.Compact(ctx); n != 0 {
		t.Errorf("second compact removed %d records, want 0", n)
	}
}

func TestFailedUpdateWritesNothing(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, filepath.Join(t.TempDir(), "festival.db"))
	defer s.Close()

	if err := s.Migrate(ctx); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err := s.Update(ctx, func(tx store.Tx) error {
		if err := tx.PutSupply(ctx, types.FTK(5)); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want boom", err)
	}

	err = s.View(ctx, func(tx store.Tx) error {
		supply, err := tx.GetSupply(ctx)
		if err != nil {
			return err
		}
		if !supply.IsZero() {
			t.Errorf("supply after failed update: got %s", supply)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestFestivalStateSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "festival.db")
	owner := common.HexToAddress("0x00000000000000000000000000000000000000a1")
	buyer := common.HexToAddress("0x00000000000000000000000000000000000000c3")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	f := festival.New(openStore(t, path), owner, festival.WithLogger(logger))
	if err := f.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if err := f.MintValue(ctx, owner, buyer, types.FTK(20)); err != nil {
		t.Fatal(err)
	}
	if _, err := f.StartSale(ctx, owner); err != nil {
		t.Fatal(err)
	}
	if err := f.ApproveValue(ctx, buyer, f.Address(), types.FTK(10)); err != nil {
		t.Fatal(err)
	}
	receipt, err := f.PublicMint(ctx, buyer, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Stop(ctx); err != nil {
		t.Fatal(err)
	}

	again := festival.New(openStore(t, path), owner, festival.WithLogger(logger))
	if err := again.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer again.Stop(ctx)

	holder, err := again.OwnerOf(ctx, receipt.Units[0])
	if err != nil {
		t.Fatal(err)
	}
	if holder != buyer {
		t.Errorf("owner after reopen: got %s", holder.Hex())
	}
	if b, _ := again.ValueBalanceOf(ctx, buyer); !b.Equal(types.FTK(10)) {
		t.Errorf("buyer balance after reopen: got %s", b)
	}
	supply, err := again.ValueTotalSupply(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if want, _ := festival.DefaultInitialSupply.Add(types.FTK(20)); !supply.Equal(want) {
		t.Errorf("supply after reopen: got %s, want %s", supply, want)
	}
}
