// Package token implements the FTK fungible value ledger: balances, a
// single mint authority, transfers, and ERC-20 style allowances.
package token

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/festival/types"
)

// Token metadata.
const (
	Name     = "FestivalToken"
	Symbol   = types.Symbol
	Decimals = types.Decimals
)

// Account is an actor's FTK balance. Accounts are created implicitly on
// first reference and never destroyed.
type Account struct {
	Address common.Address `json:"address"`
	Balance types.Amount   `json:"balance"`
}
