// Package sale implements the primary sale: a one-way Closed to Open switch,
// a fixed unit price, and per-transaction and per-actor mint caps.
package sale

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/festival/id"
	"github.com/xraph/festival/types"
)

// Default sale parameters.
var (
	DefaultUnitPrice         = types.FTK(10)
	DefaultMaxPerTransaction = uint64(5)
	DefaultMaxPerActor       = uint64(5)
)

// Config is the process-wide sale configuration.
type Config struct {
	Enabled           bool           `json:"enabled"`
	UnitPrice         types.Amount   `json:"unit_price"`
	MaxPerTransaction uint64         `json:"max_per_transaction"`
	MaxPerActor       uint64         `json:"max_per_actor"`
	Beneficiary       common.Address `json:"beneficiary"`
	OpenedAt          *time.Time     `json:"opened_at,omitempty"`
}

// DefaultConfig returns a closed sale paying beneficiary.
func DefaultConfig(beneficiary common.Address) *Config {
	return &Config{
		UnitPrice:         DefaultUnitPrice,
		MaxPerTransaction: DefaultMaxPerTransaction,
		MaxPerActor:       DefaultMaxPerActor,
		Beneficiary:       beneficiary,
	}
}

// Validate checks that the caps are usable.
func (c *Config) Validate() error {
	if c.MaxPerTransaction == 0 || c.MaxPerActor == 0 {
		return types.ErrInvalidQuantity
	}
	if c.Beneficiary == (common.Address{}) {
		return types.ErrInvalidAddress
	}
	return nil
}

// Receipt describes a successful public mint.
type Receipt struct {
	ID        id.MintID      `json:"id"`
	Buyer     common.Address `json:"buyer"`
	Units     []uint64       `json:"units"`
	UnitPrice types.Amount   `json:"unit_price"`
	Total     types.Amount   `json:"total"`
	At        time.Time      `json:"at"`
}
