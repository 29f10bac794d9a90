package festival

import "github.com/xraph/festival/types"

// Re-export common types so callers don't have to import the types package.

// Amount is re-exported from types package.
type Amount = types.Amount

// Entity is re-exported from types package.
type Entity = types.Entity

// Re-export Amount constructors
var (
	FTK        = types.FTK
	NewAmount  = types.NewAmount
	ParseFTK   = types.ParseFTK
	MustFTK    = types.MustFTK
	Zero       = types.Zero
	MaxAmount  = types.MaxAmount
	SumAmounts = types.Sum
)
