package types

import "errors"

// Kind classifies a failure so callers can react to a family of errors
// without matching each sentinel.
type Kind uint8

// Error kinds.
const (
	KindInternal Kind = iota
	KindAuthorization
	KindState
	KindValidation
	KindFunds
	KindNotFound
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindState:
		return "state"
	case KindValidation:
		return "validation"
	case KindFunds:
		return "funds"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error is a classified business-rule failure. Sentinels below are
// compared by identity with errors.Is.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return "festival: " + e.Message
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the machine-readable code of err, or "internal".
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "internal"
}

// Sentinel errors.
var (
	// Authorization
	ErrNotOwner      = &Error{KindAuthorization, "not_owner", "caller is not the owner"}
	ErrNotAuthorized = &Error{KindAuthorization, "not_authorized", "caller is not authorized"}

	// State
	ErrSaleClosed      = &Error{KindState, "sale_closed", "public sale is not open"}
	ErrAlreadyOpen     = &Error{KindState, "already_open", "public sale is already open"}
	ErrMintCapExceeded = &Error{KindState, "mint_cap_exceeded", "exceeds maximum public minting"}
	ErrNoActiveListing = &Error{KindState, "no_active_listing", "unit is not listed"}
	ErrNotInitialized  = &Error{KindState, "not_initialized", "registry has not been initialized"}

	// Validation
	ErrInvalidQuantity  = &Error{KindValidation, "invalid_quantity", "exceeds max per transaction"}
	ErrInvalidRate      = &Error{KindValidation, "invalid_rate", "fee rate must be between 0 and 100"}
	ErrPriceMismatch    = &Error{KindValidation, "price_mismatch", "price does not match listing"}
	ErrPriceCapExceeded = &Error{KindValidation, "price_cap_exceeded", "re-selling price is more than 110%"}
	ErrInvalidAddress   = &Error{KindValidation, "invalid_address", "zero address"}
	ErrInvalidAmount    = &Error{KindValidation, "invalid_amount", "amount out of range"}

	// Funds
	ErrInsufficientFunds     = &Error{KindFunds, "insufficient_funds", "transfer amount exceeds balance"}
	ErrInsufficientAllowance = &Error{KindFunds, "insufficient_allowance", "insufficient allowance"}

	// Not found
	ErrUnknownUnit = &Error{KindNotFound, "unknown_unit", "unit has not been minted"}
)
