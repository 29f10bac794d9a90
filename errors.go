package festival

import (
	"errors"

	"github.com/xraph/festival/types"
)

// Sentinel errors returned by engine operations. Every business-rule
// rejection wraps one of these; compare with errors.Is.
var (
	// Authorization errors
	ErrNotOwner      = types.ErrNotOwner
	ErrNotAuthorized = types.ErrNotAuthorized

	// State errors
	ErrSaleClosed      = types.ErrSaleClosed
	ErrAlreadyOpen     = types.ErrAlreadyOpen
	ErrMintCapExceeded = types.ErrMintCapExceeded
	ErrNoActiveListing = types.ErrNoActiveListing
	ErrNotInitialized  = types.ErrNotInitialized

	// Validation errors
	ErrInvalidQuantity  = types.ErrInvalidQuantity
	ErrInvalidRate      = types.ErrInvalidRate
	ErrPriceMismatch    = types.ErrPriceMismatch
	ErrPriceCapExceeded = types.ErrPriceCapExceeded
	ErrInvalidAddress   = types.ErrInvalidAddress
	ErrInvalidAmount    = types.ErrInvalidAmount

	// Funds errors
	ErrInsufficientFunds     = types.ErrInsufficientFunds
	ErrInsufficientAllowance = types.ErrInsufficientAllowance

	// Not found errors
	ErrUnknownUnit = types.ErrUnknownUnit
)

// Kind classifies an error. See KindOf.
type Kind = types.Kind

// Error kinds.
const (
	KindInternal      = types.KindInternal
	KindAuthorization = types.KindAuthorization
	KindState         = types.KindState
	KindValidation    = types.KindValidation
	KindFunds         = types.KindFunds
	KindNotFound      = types.KindNotFound
)

// KindOf returns the kind of err. Errors that are not business-rule
// rejections are KindInternal.
var KindOf = types.KindOf

// CodeOf returns the machine-readable code of err.
var CodeOf = types.CodeOf

// IsAuthorization returns true if the caller lacked the right to act.
func IsAuthorization(err error) bool {
	return types.KindOf(err) == types.KindAuthorization
}

// IsState returns true if the operation is not allowed in the current state.
func IsState(err error) bool {
	return types.KindOf(err) == types.KindState
}

// IsValidation returns true if an argument was rejected.
func IsValidation(err error) bool {
	return types.KindOf(err) == types.KindValidation
}

// IsFunds returns true if a balance or allowance was too small.
func IsFunds(err error) bool {
	return types.KindOf(err) == types.KindFunds
}

// IsNotFound returns true if the error refers to a unit or listing that
// does not exist.
func IsNotFound(err error) bool {
	return types.KindOf(err) == types.KindNotFound ||
		errors.Is(err, ErrNoActiveListing)
}
