// Package primitive provides the monetary and ordinal value types shared by
// every consensus component: amounts, heights, difficulties and time.
package primitive

import (
	"errors"
	"fmt"
	"math"
)

// MicroUnitsPerUnit is the number of micro-units in one whole unit.
const MicroUnitsPerUnit = 1_000_000

// Set of error variables for amount construction and arithmetic.
var (
	ErrNegativeAmount     = errors.New("amount cannot be negative")
	ErrInsufficientAmount = errors.New("amount subtraction would underflow")
	ErrAmountOverflow     = errors.New("amount addition would overflow")
)

// Amount represents a non-negative quantity of micro-units.
type Amount uint64

// NewAmount constructs an amount from a signed micro-unit count, failing
// when the value is negative.
func NewAmount(microUnits int64) (Amount, error) {
	if microUnits < 0 {
		return 0, fmt.Errorf("%d: %w", microUnits, ErrNegativeAmount)
	}

	return Amount(microUnits), nil
}

// FromUnits constructs an amount from a whole unit count.
func FromUnits(units uint64) Amount {
	return Amount(units * MicroUnitsPerUnit)
}

// Units returns the number of whole units, truncating any micro-units.
func (a Amount) Units() uint64 {
	return uint64(a) / MicroUnitsPerUnit
}

// MicroUnits returns the raw micro-unit count.
func (a Amount) MicroUnits() uint64 {
	return uint64(a)
}

// Add returns the sum of the two amounts.
func (a Amount) Add(b Amount) Amount {
	return a + b
}

// CheckedAdd returns the sum of the two amounts or an error on overflow.
func (a Amount) CheckedAdd(b Amount) (Amount, error) {
	if uint64(a) > math.MaxUint64-uint64(b) {
		return 0, ErrAmountOverflow
	}

	return a + b, nil
}

// Subtract returns a - b. Callers are expected to guard debits with a
// balance check, so an underflow is reported as an error, never wrapped.
func (a Amount) Subtract(b Amount) (Amount, error) {
	if b > a {
		return 0, fmt.Errorf("%d - %d: %w", a, b, ErrInsufficientAmount)
	}

	return a - b, nil
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a == 0
}

// String implements the fmt.Stringer interface.
func (a Amount) String() string {
	return fmt.Sprintf("%d.%06d", uint64(a)/MicroUnitsPerUnit, uint64(a)%MicroUnitsPerUnit)
}
