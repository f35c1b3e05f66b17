// Package core defines the ledger domain: exact monetary amounts, the
// transaction record, the per-user ledger and the error taxonomy shared by
// every other package.
package core

import (
	"github.com/shopspring/decimal"
)

// Money is an exact monetary amount carried with two fractional digits.
// All construction paths round half away from zero on the third decimal,
// so arithmetic on Money values can never accumulate sub-cent drift.
type Money struct {
	d decimal.Decimal
}

// Zero returns the zero amount.
func Zero() Money {
	return Money{d: decimal.Zero}
}

// MoneyFromDecimal rounds d to two fractional digits (half away from zero).
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{d: d.Round(2)}
}

// ParseMoney parses a plain decimal string such as "12", "12.3" or "-0.05".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidExpression
	}
	return MoneyFromDecimal(d), nil
}

// Add returns m+n, re-rounded to two decimals.
func (m Money) Add(n Money) Money {
	return MoneyFromDecimal(m.d.Add(n.d))
}

// Neg returns -m.
func (m Money) Neg() Money {
	return Money{d: m.d.Neg()}
}

// Equal reports whether two amounts are numerically equal.
func (m Money) Equal(n Money) bool {
	return m.d.Equal(n.d)
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.d.IsZero()
}

// IsPositive reports whether the amount is strictly positive.
func (m Money) IsPositive() bool {
	return m.d.IsPositive()
}

// Decimal exposes the underlying decimal value.
func (m Money) Decimal() decimal.Decimal {
	return m.d
}

// String renders the amount with exactly two decimals, e.g. "123.45".
func (m Money) String() string {
	return m.d.StringFixed(2)
}

// Signed renders the amount with a leading "+" on strictly positive values,
// matching the chat reply format ("+100.00", "-50.00", "0.00").
func (m Money) Signed() string {
	if m.d.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

// MarshalJSON encodes the amount as a bare two-decimal number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*m = MoneyFromDecimal(d)
	return nil
}
