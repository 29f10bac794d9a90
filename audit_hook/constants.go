package audithook

// Action constants for audit events.
const (
	// Value ledger actions
	ActionValueMinted      = "ftk.minted"
	ActionValueTransferred = "ftk.transferred"

	// Primary sale actions
	ActionSaleStarted = "sale.started"
	ActionUnitsMinted = "sale.units_minted"

	// Registry actions
	ActionUnitTransferred = "fnft.transferred"

	// Marketplace actions
	ActionListingSet      = "listing.set"
	ActionListingCanceled = "listing.canceled"
	ActionListingSettled  = "listing.settled"
	ActionFeeRateChanged  = "fee_rate.changed"

	// Rejections
	ActionOperationRejected = "operation.rejected"
)

// Resource constants for audit events.
const (
	ResourceAccount = "account"
	ResourceSale    = "sale"
	ResourceUnit    = "unit"
	ResourceListing = "listing"
	ResourceFee     = "fee"
)

// Category constants for audit events.
const (
	CategoryValue       = "value"
	CategorySale        = "sale"
	CategoryOwnership   = "ownership"
	CategoryMarketplace = "marketplace"
	CategoryAccess      = "access"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
