package extension

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/festival/types"
)

const ownerHex = "0x00000000000000000000000000000000000000a1"

func TestConfigParse(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantErr  bool
		sentinel error
	}{
		{"defaults", Config{Owner: ownerHex}, false, nil},
		{"missing owner", Config{}, true, types.ErrInvalidAddress},
		{"bad fee recipient", Config{Owner: ownerHex, FeeRecipient: "nope"}, true, types.ErrInvalidAddress},
		{"bad unit price", Config{Owner: ownerHex, UnitPrice: "ten"}, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mergeWithDefaults(tt.cfg).parse()
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.sentinel != nil && !errors.Is(err, tt.sentinel) {
				t.Fatalf("expected %v, got %v", tt.sentinel, err)
			}
		})
	}
}

func TestConfigParseValues(t *testing.T) {
	cfg := mergeWithDefaults(Config{
		Owner:         ownerHex,
		UnitPrice:     "2.5",
		MaxPerActor:   10,
		InitialSupply: "500",
		FeeRecipient:  "0x00000000000000000000000000000000000000f1",
	})

	p, err := cfg.parse()
	if err != nil {
		t.Fatal(err)
	}
	if p.owner != common.HexToAddress(ownerHex) || p.sale.Beneficiary != p.owner {
		t.Errorf("owner: %s beneficiary %s", p.owner.Hex(), p.sale.Beneficiary.Hex())
	}
	if !p.sale.UnitPrice.Equal(types.MustFTK("2.5")) {
		t.Errorf("unit price: %s", p.sale.UnitPrice)
	}
	if p.sale.MaxPerTransaction != 5 || p.sale.MaxPerActor != 10 {
		t.Errorf("caps: %d/%d", p.sale.MaxPerTransaction, p.sale.MaxPerActor)
	}
	if !p.initialSupply.Equal(types.FTK(500)) {
		t.Errorf("initial supply: %s", p.initialSupply)
	}
	if p.feeRecipient == (common.Address{}) {
		t.Error("fee recipient not parsed")
	}
}

func TestMergeConfigurations(t *testing.T) {
	yaml := Config{UnitPrice: "20"}
	prog := Config{Owner: ownerHex, UnitPrice: "5", DisableMigrate: true}

	got := mergeConfigurations(yaml, prog)
	if got.UnitPrice != "20" {
		t.Errorf("yaml should win: got %s", got.UnitPrice)
	}
	if got.Owner != ownerHex {
		t.Errorf("programmatic owner should fill the gap: got %q", got.Owner)
	}
	if !got.DisableMigrate {
		t.Error("programmatic DisableMigrate should apply")
	}
	if got.MaxPerTransaction != 5 || got.InitialSupply != "1000000" {
		t.Errorf("defaults not applied: %+v", got)
	}
}
