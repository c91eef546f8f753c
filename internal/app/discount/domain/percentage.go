package domain

import (
	"math/big"
	"strings"
)

var hundred = big.NewRat(100, 1)

// Percentage is a discount rate in the range (0, 100] with at most two
// decimal places. The zero value means "no discount" and is only produced
// by the price calculator.
type Percentage struct {
	rat *big.Rat
}

// ParsePercentage parses and validates a decimal percentage such as "12.5".
func ParsePercentage(s string) (Percentage, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "/eE") {
		return Percentage{}, ErrInvalidPercentage
	}
	rat, ok := new(big.Rat).SetString(s)
	if !ok {
		return Percentage{}, ErrInvalidPercentage
	}
	return NewPercentageFromRat(rat)
}

// NewPercentageFromRat validates a rational percentage.
func NewPercentageFromRat(rat *big.Rat) (Percentage, error) {
	if rat == nil || rat.Sign() <= 0 || rat.Cmp(hundred) > 0 {
		return Percentage{}, ErrPercentageOutOfRange
	}
	if !new(big.Rat).Mul(rat, hundred).IsInt() {
		return Percentage{}, ErrPercentageTooPrecise
	}
	return Percentage{rat: new(big.Rat).Set(rat)}, nil
}

// IsZero reports whether p is the zero value.
func (p Percentage) IsZero() bool {
	return p.rat == nil || p.rat.Sign() == 0
}

// Rat returns a copy of the percentage as a rational number (e.g. 10 for 10%).
func (p Percentage) Rat() *big.Rat {
	if p.rat == nil {
		return new(big.Rat)
	}
	return new(big.Rat).Set(p.rat)
}

// Fraction returns the percentage divided by 100.
func (p Percentage) Fraction() *big.Rat {
	return new(big.Rat).Quo(p.Rat(), hundred)
}

// Cmp compares two percentages.
func (p Percentage) Cmp(other Percentage) int {
	return p.Rat().Cmp(other.Rat())
}

// Equals reports whether both percentages hold the same value.
func (p Percentage) Equals(other Percentage) bool {
	return p.Cmp(other) == 0
}

func (p Percentage) String() string {
	return p.Rat().FloatString(2)
}
