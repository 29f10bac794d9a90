package store

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Record kinds. Each key starts with its kind.
const (
	KindAccount   = "ftk/account"
	KindAllowance = "ftk/allowance"
	KindSupply    = "ftk/supply"
	KindUnit      = "fnft/unit"
	KindHolder    = "fnft/holder"
	KindOperator  = "fnft/operator"
	KindUnitSeq   = "fnft/seq"
	KindSale      = "sale/config"
	KindMinted    = "sale/minted"
	KindListing   = "market/listing"
	KindFee       = "market/fee"
)

func addrPart(a common.Address) string {
	return strings.ToLower(a.Hex())
}

// AccountKey is the key of addr's FTK balance.
func AccountKey(addr common.Address) string { return KindAccount + "/" + addrPart(addr) }

// AllowanceKey is the key of spender's allowance over owner's balance.
func AllowanceKey(owner, spender common.Address) string {
	return KindAllowance + "/" + addrPart(owner) + "/" + addrPart(spender)
}

// SupplyKey is the key of the FTK total supply.
func SupplyKey() string { return KindSupply }

// UnitKey is the key of a unit record. IDs are zero-padded so keys sort
// numerically.
func UnitKey(unitID uint64) string { return fmt.Sprintf("%s/%020d", KindUnit, unitID) }

// HolderKey is the key of addr's owned-unit set.
func HolderKey(addr common.Address) string { return KindHolder + "/" + addrPart(addr) }

// OperatorKey is the key of an operator approval.
func OperatorKey(owner, operator common.Address) string {
	return KindOperator + "/" + addrPart(owner) + "/" + addrPart(operator)
}

// UnitSeqKey is the key of the last minted unit ID.
func UnitSeqKey() string { return KindUnitSeq }

// SaleKey is the key of the sale configuration.
func SaleKey() string { return KindSale }

// MintedKey is the key of addr's cumulative primary-mint count.
func MintedKey(addr common.Address) string { return KindMinted + "/" + addrPart(addr) }

// ListingKey is the key of a unit's active listing.
func ListingKey(unitID uint64) string { return fmt.Sprintf("%s/%020d", KindListing, unitID) }

// FeeKey is the key of the fee configuration.
func FeeKey() string { return KindFee }

// KindOf returns the record kind of key.
func KindOf(key string) string {
	for _, k := range []string{
		KindAllowance, KindAccount, KindSupply,
		KindUnitSeq, KindUnit, KindHolder, KindOperator,
		KindSale, KindMinted, KindListing, KindFee,
	} {
		if key == k || strings.HasPrefix(key, k+"/") {
			return k
		}
	}
	return ""
}
