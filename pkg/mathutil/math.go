package mathutil

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	// SompiPerKaspa is the number of atomic units (sompi) in one KAS.
	SompiPerKaspa = uint64(100_000_000)
	// Precision is the number of decimal places of a whole-coin amount.
	Precision = 8
)

var (
	//BigOne represents a single KAS expressed in sompi
	BigOne = SompiPerKaspa
	//BigOneDecimal represents a single KAS expressed in sompi as decimal.Decimal
	BigOneDecimal = decimal.NewFromInt(int64(BigOne))
)

func init() {
	decimal.DivisionPrecision = Precision
}

// ToSompi converts a whole-coin amount into sompi.
// Halves are rounded away from zero. Negative, NaN and infinite values
// convert to zero, callers reject them first through ValidAmount.
func ToSompi(amount float64) uint64 {
	if !ValidAmount(amount) {
		return 0
	}
	return decimal.NewFromFloat(amount).Shift(Precision).Round(0).BigInt().Uint64()
}

// FromSompi converts an amount of sompi into whole coins.
func FromSompi(amount uint64) float64 {
	f, _ := FromSompiDecimal(amount).Float64()
	return f
}

// FromSompiDecimal is like FromSompi but keeps the exact decimal value.
func FromSompiDecimal(amount uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -Precision)
}

// ValidAmount returns whether the given whole-coin amount is a finite,
// non-negative number.
func ValidAmount(amount float64) bool {
	return !math.IsNaN(amount) && !math.IsInf(amount, 0) && amount >= 0
}

// Fee returns mass × feeRate, rounded up to the next sompi.
func Fee(mass uint64, feeRate float64) uint64 {
	if !ValidAmount(feeRate) {
		return 0
	}
	massDecimal := decimal.NewFromBigInt(new(big.Int).SetUint64(mass), 0)
	return MulDecimal(massDecimal, decimal.NewFromFloat(feeRate)).Ceil().BigInt().Uint64()
}

// MulDecimal takes two decimal.Decimal numbers and multiply them x * y and returns the result as decimal.Decimal
func MulDecimal(X, Y decimal.Decimal) (z decimal.Decimal) {
	z = X.Mul(Y)
	return
}
