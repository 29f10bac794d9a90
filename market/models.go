// Package market implements the secondary marketplace: fixed-price listings
// capped at 110% of a unit's last transacted price, and settlement that
// splits the buyer's payment between the seller and a fee recipient.
package market

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/festival/id"
	"github.com/xraph/festival/types"
)

// MaxFeeRate is the highest accepted monetisation rate, in percent.
const MaxFeeRate = 100

// Listing is an active offer to sell one unit at a fixed price.
type Listing struct {
	ID       id.ListingID   `json:"id"`
	UnitID   uint64         `json:"unit_id"`
	Seller   common.Address `json:"seller"`
	AskPrice types.Amount   `json:"ask_price"`
	ListedAt time.Time      `json:"listed_at"`
}

// FeeConfig routes a percentage of every settlement to Recipient.
type FeeConfig struct {
	Rate      uint64         `json:"rate"`
	Recipient common.Address `json:"recipient"`
}

// Split returns the fee and seller proceeds for a sale at price.
// fee + proceeds == price.
func (f *FeeConfig) Split(price types.Amount) (fee, proceeds types.Amount) {
	fee = price.Percent(f.Rate)
	proceeds, _ = price.Sub(fee)
	return fee, proceeds
}

// Settlement describes a completed purchase.
type Settlement struct {
	ID           id.SettlementID `json:"id"`
	ListingID    id.ListingID    `json:"listing_id"`
	UnitID       uint64          `json:"unit_id"`
	Seller       common.Address  `json:"seller"`
	Buyer        common.Address  `json:"buyer"`
	Price        types.Amount    `json:"price"`
	Fee          types.Amount    `json:"fee"`
	Proceeds     types.Amount    `json:"proceeds"`
	FeeRate      uint64          `json:"fee_rate"`
	FeeRecipient common.Address  `json:"fee_recipient"`
	SettledAt    time.Time       `json:"settled_at"`
}
