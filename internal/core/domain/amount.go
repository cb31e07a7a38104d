package domain

import (
	"fmt"
	"strings"

	"github.com/SscSPs/payments_engine/internal/apperrors"
	"github.com/shopspring/decimal"
)

// AmountScale is the number of fractional digits accepted on input and
// emitted on output.
const AmountScale = 4

// Amount is an exact decimal monetary value. The zero value is 0.
type Amount struct {
	d decimal.Decimal
}

// Zero is the zero amount.
var Zero = Amount{}

// NewAmount wraps a decimal.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{d: d}
}

// NewAmountFromInt builds a whole amount, mostly useful in tests.
func NewAmountFromInt(v int64) Amount {
	return Amount{d: decimal.NewFromInt(v)}
}

// ParseAmount parses decimal text such as "1", "-2.5" or "0.0001". Surrounding
// whitespace is ignored. More than AmountScale fractional digits is an error
// since it could not be represented without rounding.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, fmt.Errorf("empty amount")
	}
	if strings.ContainsAny(s, "eE") {
		return Zero, fmt.Errorf("invalid amount %q: exponent notation not accepted", s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.Exponent() < -AmountScale {
		return Zero, fmt.Errorf("invalid amount %q: more than %d decimal places", s, AmountScale)
	}
	return Amount{d: d}, nil
}

// MustParseAmount is ParseAmount that panics on error.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Decimal returns the underlying decimal value.
func (a Amount) Decimal() decimal.Decimal { return a.d }

// Add returns a + b. It can not overflow.
func (a Amount) Add(b Amount) Amount {
	return Amount{d: a.d.Add(b.d)}
}

// Sub returns a - b, or ErrUnderflow when the result would be negative.
func (a Amount) Sub(b Amount) (Amount, error) {
	if a.d.LessThan(b.d) {
		return a, fmt.Errorf("%w: %s - %s", apperrors.ErrUnderflow, a, b)
	}
	return Amount{d: a.d.Sub(b.d)}, nil
}

// Cmp compares a and b and returns -1, 0 or 1.
func (a Amount) Cmp(b Amount) int { return a.d.Cmp(b.d) }

// Equal reports whether a and b have the same value regardless of scale.
func (a Amount) Equal(b Amount) bool { return a.d.Equal(b.d) }

// IsPositive reports whether a > 0.
func (a Amount) IsPositive() bool { return a.d.IsPositive() }

// IsNegative reports whether a < 0.
func (a Amount) IsNegative() bool { return a.d.IsNegative() }

// String formats the amount with exactly AmountScale fractional digits.
func (a Amount) String() string {
	return a.d.StringFixed(AmountScale)
}

// MarshalText implements encoding.TextMarshaler so JSON carries the exact text.
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Amount) UnmarshalText(text []byte) error {
	parsed, err := ParseAmount(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
