package festival

import "github.com/xraph/festival/id"

// ID is the identifier type of receipts, listings and settlements.
type ID = id.ID

// Prefix identifies the record type encoded in a TypeID.
type Prefix = id.Prefix
