package types

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// Decimals is the number of fractional digits of one FTK.
const Decimals = 18

// Symbol is the ticker of the fungible ledger.
const Symbol = "FTK"

var oneFTK = new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(Decimals))

// Amount is a non-negative quantity of FTK in its smallest unit (10^-18 FTK).
// All arithmetic is integer-only and overflow-checked.
//
// Examples:
//   - FTK(10)       = 10 FTK  (10 * 10^18 base units)
//   - NewAmount(1)  = 0.000000000000000001 FTK
type Amount struct {
	v uint256.Int
}

// NewAmount creates an Amount from base units.
func NewAmount(base uint64) Amount {
	var a Amount
	a.v.SetUint64(base)
	return a
}

// FTK creates an Amount of whole tokens.
func FTK(whole uint64) Amount {
	var a Amount
	a.v.Mul(uint256.NewInt(whole), oneFTK)
	return a
}

// Zero returns the zero Amount.
func Zero() Amount { return Amount{} }

// MaxAmount returns the largest representable Amount (2^256 - 1).
// Used as the "unlimited" allowance.
func MaxAmount() Amount {
	var a Amount
	a.v.SetAllOne()
	return a
}

// ParseAmount parses a decimal string of base units.
func ParseAmount(s string) (Amount, error) {
	v, err := uint256.FromDecimal(strings.TrimSpace(s))
	if err != nil {
		return Amount{}, fmt.Errorf("amount: parse %q: %w", s, err)
	}
	return Amount{v: *v}, nil
}

// ParseFTK parses a decimal token string such as "10" or "10.5".
func ParseFTK(s string) (Amount, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), Symbol))
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > Decimals {
		return Amount{}, fmt.Errorf("amount: parse %q: more than %d fractional digits", s, Decimals)
	}

	w, err := uint256.FromDecimal(whole)
	if err != nil {
		return Amount{}, fmt.Errorf("amount: parse %q: %w", s, err)
	}
	scaled, overflow := new(uint256.Int).MulOverflow(w, oneFTK)
	if overflow {
		return Amount{}, fmt.Errorf("amount: parse %q: overflow", s)
	}

	if frac != "" {
		padded := strings.TrimLeft(frac+strings.Repeat("0", Decimals-len(frac)), "0")
		if padded == "" {
			padded = "0"
		}
		f, err := uint256.FromDecimal(padded)
		if err != nil {
			return Amount{}, fmt.Errorf("amount: parse %q: %w", s, err)
		}
		if _, overflow := scaled.AddOverflow(scaled, f); overflow {
			return Amount{}, fmt.Errorf("amount: parse %q: overflow", s)
		}
	}
	return Amount{v: *scaled}, nil
}

// MustFTK is like ParseFTK but panics on error. Use for hardcoded values.
func MustFTK(s string) Amount {
	a, err := ParseFTK(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Arithmetic operations

// Add returns a+other. ok is false on overflow.
func (a Amount) Add(other Amount) (sum Amount, ok bool) {
	_, overflow := sum.v.AddOverflow(&a.v, &other.v)
	return sum, !overflow
}

// Sub returns a-other. ok is false when other > a.
func (a Amount) Sub(other Amount) (diff Amount, ok bool) {
	_, underflow := diff.v.SubOverflow(&a.v, &other.v)
	return diff, !underflow
}

// MulUint64 returns a*n. ok is false on overflow.
func (a Amount) MulUint64(n uint64) (prod Amount, ok bool) {
	_, overflow := prod.v.MulOverflow(&a.v, uint256.NewInt(n))
	return prod, !overflow
}

// Percent returns floor(a * rate / 100) for rate in [0, 100].
// The product is never materialised, so it cannot overflow.
func (a Amount) Percent(rate uint64) Amount {
	hundred := uint256.NewInt(100)
	r := uint256.NewInt(rate)

	var q, m uint256.Int
	q.DivMod(&a.v, hundred, &m)

	var out Amount
	out.v.Mul(&q, r)
	m.Mul(&m, r)
	m.Div(&m, hundred)
	out.v.Add(&out.v, &m)
	return out
}

// PlusTenth returns a + floor(a/10), which equals floor(a*110/100).
// Saturates at MaxAmount.
func (a Amount) PlusTenth() Amount {
	var tenth uint256.Int
	tenth.Div(&a.v, uint256.NewInt(10))

	var out Amount
	if _, overflow := out.v.AddOverflow(&a.v, &tenth); overflow {
		return MaxAmount()
	}
	return out
}

// Comparison methods

// Cmp compares a and other: -1, 0 or +1.
func (a Amount) Cmp(other Amount) int { return a.v.Cmp(&other.v) }

// Equal reports whether a == other.
func (a Amount) Equal(other Amount) bool { return a.v.Eq(&other.v) }

// LessThan reports whether a < other.
func (a Amount) LessThan(other Amount) bool { return a.v.Lt(&other.v) }

// GreaterThan reports whether a > other.
func (a Amount) GreaterThan(other Amount) bool { return a.v.Gt(&other.v) }

// IsZero reports whether a is zero.
func (a Amount) IsZero() bool { return a.v.IsZero() }

// IsMax reports whether a is the unlimited allowance value.
func (a Amount) IsMax() bool { return a.Equal(MaxAmount()) }

// Formatting methods

// Base returns the amount in base units as a decimal string.
func (a Amount) Base() string { return a.v.Dec() }

// FormatFTK returns the amount in whole tokens without symbol: "10", "10.5".
func (a Amount) FormatFTK() string {
	var whole, frac uint256.Int
	whole.DivMod(&a.v, oneFTK, &frac)
	if frac.IsZero() {
		return whole.Dec()
	}

	digits := frac.Dec()
	digits = strings.Repeat("0", Decimals-len(digits)) + digits
	return whole.Dec() + "." + strings.TrimRight(digits, "0")
}

// String returns a human-readable string with symbol: "10.5 FTK".
func (a Amount) String() string {
	return a.FormatFTK() + " " + Symbol
}

// MarshalText implements encoding.TextMarshaler using base units, so JSON
// carries the exact integer as a string.
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.v.Dec()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Amount) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*a = Amount{}
		return nil
	}
	parsed, err := ParseAmount(string(data))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Sum adds all values. ok is false on overflow.
func Sum(values ...Amount) (Amount, bool) {
	var total Amount
	for _, v := range values {
		var ok bool
		if total, ok = total.Add(v); !ok {
			return Amount{}, false
		}
	}
	return total, true
}
