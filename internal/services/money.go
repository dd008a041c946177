package services

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a caller-supplied amount string into cents. The value
// must be a positive decimal no finer than one cent and must fit in int64.
func ParseAmount(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, ErrInvalidAmount
	}

	if d.Cmp(decimal.Zero) <= 0 {
		return 0, ErrInvalidAmount
	}

	cents := d.Shift(2)
	if !cents.IsInteger() {
		return 0, ErrInvalidAmount
	}

	big := cents.BigInt()
	if !big.IsInt64() {
		return 0, ErrInvalidAmount
	}

	return big.Int64(), nil
}

// FormatAmount renders cents as a decimal string with two fraction digits.
func FormatAmount(cents int64) string {
	return decimal.NewFromInt(cents).Shift(-2).StringFixed(2)
}
