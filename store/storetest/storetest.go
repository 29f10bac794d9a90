// Package storetest is a conformance suite for store.Store backends.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/festival/asset"
	"github.com/xraph/festival/market"
	"github.com/xraph/festival/sale"
	"github.com/xraph/festival/store"
	"github.com/xraph/festival/token"
	"github.com/xraph/festival/types"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

// Run exercises s against the store.Store contract. s must be empty.
func Run(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()

	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	t.Run("EmptyReads", func(t *testing.T) { testEmptyReads(t, s) })
	t.Run("RoundTrip", func(t *testing.T) { testRoundTrip(t, s) })
	t.Run("Rollback", func(t *testing.T) { testRollback(t, s) })
	t.Run("Deletes", func(t *testing.T) { testDeletes(t, s) })
	t.Run("ViewIsReadOnly", func(t *testing.T) { testViewIsReadOnly(t, s) })
}

func testEmptyReads(t *testing.T, s store.Store) {
	ctx := context.Background()
	err := s.View(ctx, func(tx store.Tx) error {
		acct, err := tx.GetAccount(ctx, alice)
		if err != nil {
			return err
		}
		if !acct.Balance.IsZero() || acct.Address != alice {
			t.Errorf("unknown account: got %+v", acct)
		}
		if _, err := tx.GetUnit(ctx, 1); !errors.Is(err, types.ErrUnknownUnit) {
			t.Errorf("GetUnit: expected ErrUnknownUnit, got %v", err)
		}
		if _, err := tx.GetListing(ctx, 1); !errors.Is(err, types.ErrNoActiveListing) {
			t.Errorf("GetListing: expected ErrNoActiveListing, got %v", err)
		}
		if _, err := tx.GetSaleConfig(ctx); !errors.Is(err, types.ErrNotInitialized) {
			t.Errorf("GetSaleConfig: expected ErrNotInitialized, got %v", err)
		}
		if _, err := tx.GetFeeConfig(ctx); !errors.Is(err, types.ErrNotInitialized) {
			t.Errorf("GetFeeConfig: expected ErrNotInitialized, got %v", err)
		}
		h, err := tx.GetHolder(ctx, bob)
		if err != nil {
			return err
		}
		if len(h.Units) != 0 {
			t.Errorf("unknown holder owns %v", h.Units)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func testRoundTrip(t *testing.T, s store.Store) {
	ctx := context.Background()
	err := s.Update(ctx, func(tx store.Tx) error {
		if err := tx.PutAccount(ctx, &token.Account{Address: alice, Balance: types.FTK(90)}); err != nil {
			return err
		}
		if err := tx.PutAllowance(ctx, alice, bob, types.MaxAmount()); err != nil {
			return err
		}
		if err := tx.PutSupply(ctx, types.FTK(90)); err != nil {
			return err
		}
		if err := tx.PutUnit(ctx, &asset.Unit{ID: 1, Owner: alice, LastPrice: types.FTK(10)}); err != nil {
			return err
		}
		if err := tx.PutHolder(ctx, &asset.Holder{Address: alice, Units: []uint64{1}}); err != nil {
			return err
		}
		if err := tx.PutOperator(ctx, alice, bob, true); err != nil {
			return err
		}
		if err := tx.PutLastUnitID(ctx, 1); err != nil {
			return err
		}
		if err := tx.PutSaleConfig(ctx, sale.DefaultConfig(alice)); err != nil {
			return err
		}
		if err := tx.PutMintCount(ctx, alice, 1); err != nil {
			return err
		}
		if err := tx.PutListing(ctx, &market.Listing{UnitID: 1, Seller: alice, AskPrice: types.FTK(11)}); err != nil {
			return err
		}
		return tx.PutFeeConfig(ctx, &market.FeeConfig{Rate: 10, Recipient: bob})
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	err = s.View(ctx, func(tx store.Tx) error {
		acct, err := tx.GetAccount(ctx, alice)
		if err != nil {
			return err
		}
		if !acct.Balance.Equal(types.FTK(90)) {
			t.Errorf("balance: got %s", acct.Balance)
		}
		allowance, err := tx.GetAllowance(ctx, alice, bob)
		if err != nil {
			return err
		}
		if !allowance.IsMax() {
			t.Errorf("allowance: got %s", allowance.Base())
		}
		u, err := tx.GetUnit(ctx, 1)
		if err != nil {
			return err
		}
		if u.Owner != alice || !u.LastPrice.Equal(types.FTK(10)) {
			t.Errorf("unit: got %+v", u)
		}
		op, err := tx.IsOperator(ctx, alice, bob)
		if err != nil {
			return err
		}
		if !op {
			t.Error("operator approval lost")
		}
		last, err := tx.GetLastUnitID(ctx)
		if err != nil {
			return err
		}
		if last != 1 {
			t.Errorf("last unit: got %d", last)
		}
		cfg, err := tx.GetSaleConfig(ctx)
		if err != nil {
			return err
		}
		if cfg.MaxPerActor != sale.DefaultMaxPerActor || cfg.Beneficiary != alice {
			t.Errorf("sale config: got %+v", cfg)
		}
		n, err := tx.GetMintCount(ctx, alice)
		if err != nil {
			return err
		}
		if n != 1 {
			t.Errorf("mint count: got %d", n)
		}
		l, err := tx.GetListing(ctx, 1)
		if err != nil {
			return err
		}
		if !l.AskPrice.Equal(types.FTK(11)) {
			t.Errorf("listing: got %+v", l)
		}
		fee, err := tx.GetFeeConfig(ctx)
		if err != nil {
			return err
		}
		if fee.Rate != 10 || fee.Recipient != bob {
			t.Errorf("fee config: got %+v", fee)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func testRollback(t *testing.T, s store.Store) {
	ctx := context.Background()
	abort := errors.New("abort")

	err := s.Update(ctx, func(tx store.Tx) error {
		if err := tx.PutAccount(ctx, &token.Account{Address: bob, Balance: types.FTK(1)}); err != nil {
			return err
		}
		if err := tx.PutLastUnitID(ctx, 99); err != nil {
			return err
		}
		return abort
	})
	if !errors.Is(err, abort) {
		t.Fatalf("expected abort, got %v", err)
	}

	err = s.View(ctx, func(tx store.Tx) error {
		acct, err := tx.GetAccount(ctx, bob)
		if err != nil {
			return err
		}
		if !acct.Balance.IsZero() {
			t.Errorf("aborted balance visible: %s", acct.Balance)
		}
		last, err := tx.GetLastUnitID(ctx)
		if err != nil {
			return err
		}
		if last == 99 {
			t.Error("aborted unit sequence visible")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func testDeletes(t *testing.T, s store.Store) {
	ctx := context.Background()
	err := s.Update(ctx, func(tx store.Tx) error {
		if err := tx.PutListing(ctx, &market.Listing{UnitID: 2, Seller: bob, AskPrice: types.FTK(1)}); err != nil {
			return err
		}
		if err := tx.DeleteListing(ctx, 2); err != nil {
			return err
		}
		if _, err := tx.GetListing(ctx, 2); !errors.Is(err, types.ErrNoActiveListing) {
			t.Errorf("deleted listing visible inside tx: %v", err)
		}
		return tx.PutOperator(ctx, alice, bob, false)
	})
	if err != nil {
		t.Fatal(err)
	}

	err = s.View(ctx, func(tx store.Tx) error {
		if _, err := tx.GetListing(ctx, 2); !errors.Is(err, types.ErrNoActiveListing) {
			t.Errorf("deleted listing visible: %v", err)
		}
		op, err := tx.IsOperator(ctx, alice, bob)
		if err != nil {
			return err
		}
		if op {
			t.Error("revoked operator still approved")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func testViewIsReadOnly(t *testing.T, s store.Store) {
	ctx := context.Background()
	err := s.View(ctx, func(tx store.Tx) error {
		return tx.PutLastUnitID(ctx, 5)
	})
	if err == nil {
		t.Fatal("expected write inside View to fail")
	}
}
