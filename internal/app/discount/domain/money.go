package domain

import (
	"fmt"
	"math/big"
	"strings"
)

var (
	ten = big.NewInt(10)
	one = big.NewInt(1)
)

// Money represents a monetary value with precise decimal arithmetic using big.Rat.
// It stores the value as a rational number (numerator/denominator) to avoid floating-point precision issues.
type Money struct {
	rat *big.Rat
}

// NewMoney creates a new Money instance from numerator and denominator.
// Example: NewMoney(19999, 100) represents 199.99
func NewMoney(numerator, denominator int64) (*Money, error) {
	if denominator == 0 {
		return nil, fmt.Errorf("denominator cannot be zero")
	}

	rat := big.NewRat(numerator, denominator)
	return &Money{rat: rat}, nil
}

// ZeroMoney returns a zero amount.
func ZeroMoney() *Money {
	return &Money{rat: new(big.Rat)}
}

// ParseMoney parses a plain decimal string such as "199.99".
func ParseMoney(s string) (*Money, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "/eE") {
		return nil, fmt.Errorf("invalid decimal amount %q", s)
	}
	rat, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("invalid decimal amount %q", s)
	}
	return &Money{rat: rat}, nil
}

// Numerator returns the numerator of the rational number.
func (m *Money) Numerator() int64 {
	return m.rat.Num().Int64()
}

// Denominator returns the denominator of the rational number.
func (m *Money) Denominator() int64 {
	return m.rat.Denom().Int64()
}

// IsSafeForStorage reports whether numerator and denominator fit the INT64 columns.
func (m *Money) IsSafeForStorage() bool {
	return m.rat.Num().IsInt64() && m.rat.Denom().IsInt64()
}

// Rat returns a copy of the underlying rational.
func (m *Money) Rat() *big.Rat {
	return new(big.Rat).Set(m.rat)
}

// Subtract subtracts another Money value from this one and returns a new Money instance.
func (m *Money) Subtract(other *Money) *Money {
	result := new(big.Rat).Sub(m.rat, other.rat)
	return &Money{rat: result}
}

// MultiplyByRat multiplies this Money value by a rational number and returns a new Money instance.
func (m *Money) MultiplyByRat(rat *big.Rat) *Money {
	result := new(big.Rat).Mul(m.rat, rat)
	return &Money{rat: result}
}

// MultiplyByInt multiplies this Money value by a whole quantity.
func (m *Money) MultiplyByInt(n int64) *Money {
	return m.MultiplyByRat(new(big.Rat).SetInt64(n))
}

// Round rounds to the given number of decimal places, halves away from zero.
func (m *Money) Round(places int) *Money {
	scale := new(big.Int).Exp(ten, big.NewInt(int64(places)), nil)
	scaled := new(big.Rat).Mul(m.rat, new(big.Rat).SetInt(scale))

	q, r := new(big.Int).QuoRem(scaled.Num(), scaled.Denom(), new(big.Int))
	twiceRem := new(big.Int).Lsh(new(big.Int).Abs(r), 1)
	if twiceRem.Cmp(scaled.Denom()) >= 0 {
		if scaled.Sign() < 0 {
			q.Sub(q, one)
		} else {
			q.Add(q, one)
		}
	}

	return &Money{rat: new(big.Rat).SetFrac(q, scale)}
}

// HasAtMostPlaces reports whether the value is exact at the given decimal precision.
func (m *Money) HasAtMostPlaces(places int) bool {
	scale := new(big.Int).Exp(ten, big.NewInt(int64(places)), nil)
	return new(big.Rat).Mul(m.rat, new(big.Rat).SetInt(scale)).IsInt()
}

// IsZero returns true if the money value is zero.
func (m *Money) IsZero() bool {
	return m.rat.Sign() == 0
}

// IsNegative returns true if the money value is negative.
func (m *Money) IsNegative() bool {
	return m.rat.Sign() < 0
}

// String returns the value with two decimal places.
func (m *Money) String() string {
	return m.rat.FloatString(2)
}

// Copy creates a deep copy of this Money instance.
func (m *Money) Copy() *Money {
	return &Money{rat: new(big.Rat).Set(m.rat)}
}
