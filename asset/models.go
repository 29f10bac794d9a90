// Package asset implements the FNFT registry: unit identity, ownership,
// single-slot transfer approval, operator approvals, and each unit's last
// transacted price.
package asset

import (
	"slices"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/festival/id"
	"github.com/xraph/festival/types"
)

// Registry metadata.
const (
	Name   = "FestivalNFT"
	Symbol = "FNFT"
)

// Unit is one non-fungible asset. IDs start at 1 and are never reused.
type Unit struct {
	types.Entity

	ID        uint64         `json:"id"`
	Owner     common.Address `json:"owner"`
	Approved  common.Address `json:"approved"`
	LastPrice types.Amount   `json:"last_price"`
}

// HasApproval reports whether a spender is approved for the unit.
func (u *Unit) HasApproval() bool {
	return u.Approved != (common.Address{})
}

// Holder is the set of units an account owns, kept sorted.
type Holder struct {
	Address common.Address `json:"address"`
	Units   []uint64       `json:"units"`
}

// Add inserts unitID, keeping Units sorted.
func (h *Holder) Add(unitID uint64) {
	i, found := slices.BinarySearch(h.Units, unitID)
	if !found {
		h.Units = slices.Insert(h.Units, i, unitID)
	}
}

// Remove deletes unitID. It reports whether it was present.
func (h *Holder) Remove(unitID uint64) bool {
	i, found := slices.BinarySearch(h.Units, unitID)
	if found {
		h.Units = slices.Delete(h.Units, i, i+1)
	}
	return found
}

// Owns reports whether the holder owns unitID.
func (h *Holder) Owns(unitID uint64) bool {
	_, found := slices.BinarySearch(h.Units, unitID)
	return found
}

// TransferReceipt describes an ownership change made outside the
// marketplace.
type TransferReceipt struct {
	ID            id.TransferID  `json:"id"`
	UnitID        uint64         `json:"unit_id"`
	Caller        common.Address `json:"caller"`
	From          common.Address `json:"from"`
	To            common.Address `json:"to"`
	ListingClosed bool           `json:"listing_closed"`
	At            time.Time      `json:"at"`
}
