package store

import (
	"context"
	"errors"
	"testing"
)

func mapReader(m map[string][]byte) func(context.Context, string) ([]byte, error) {
	return func(_ context.Context, key string) ([]byte, error) {
		if v, ok := m[key]; ok {
			return v, nil
		}
		return nil, ErrKeyNotFound
	}
}

func TestOverlayReadsStagedWrites(t *testing.T) {
	ctx := context.Background()
	base := map[string][]byte{"a": []byte("1"), "b": []byte("2")}
	o := NewOverlay(mapReader(base))

	if err := o.Put(ctx, "a", []byte("10")); err != nil {
		t.Fatal(err)
	}
	if err := o.Delete(ctx, "b"); err != nil {
		t.Fatal(err)
	}

	if v, err := o.Get(ctx, "a"); err != nil || string(v) != "10" {
		t.Errorf("a: got %q, %v", v, err)
	}
	if _, err := o.Get(ctx, "b"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("b: expected ErrKeyNotFound, got %v", err)
	}
	if string(base["a"]) != "1" {
		t.Error("overlay must not touch the base")
	}

	writes := o.Writes()
	if len(writes) != 2 || writes[0].Key != "a" || writes[1].Key != "b" {
		t.Fatalf("unexpected writes: %+v", writes)
	}
	if writes[0].Deleted() || !writes[1].Deleted() {
		t.Error("wrong tombstone flags")
	}
}

func TestRunDiscardsOnError(t *testing.T) {
	ctx := context.Background()
	committed := false
	boom := errors.New("boom")

	err := Run(ctx, mapReader(nil), func(tx Tx) error {
		if err := tx.PutLastUnitID(ctx, 7); err != nil {
			return err
		}
		return boom
	}, func(context.Context, []Write) error {
		committed = true
		return nil
	})

	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if committed {
		t.Error("commit must not run when fn fails")
	}
}

func TestRunSkipsEmptyCommit(t *testing.T) {
	ctx := context.Background()
	err := Run(ctx, mapReader(nil), func(tx Tx) error {
		_, err := tx.GetLastUnitID(ctx)
		return err
	}, func(context.Context, []Write) error {
		t.Error("commit must not run without writes")
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"ftk/account/0xabc", KindAccount},
		{"ftk/allowance/0xa/0xb", KindAllowance},
		{"ftk/supply", KindSupply},
		{UnitKey(1), KindUnit},
		{"fnft/seq", KindUnitSeq},
		{ListingKey(3), KindListing},
		{"market/fee", KindFee},
		{"other", ""},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := KindOf(tt.key); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnitKeysSortNumerically(t *testing.T) {
	if UnitKey(9) >= UnitKey(10) {
		t.Errorf("%s should sort before %s", UnitKey(9), UnitKey(10))
	}
}
