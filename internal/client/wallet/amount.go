package wallet

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/miniwallet/internal/common"
)

var decimalAmountPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// ToBaseUnits converts a decimal amount string into integer base units
// (amount × 10^decimals), flooring any excess fractional digits. The input
// must be a plain positive decimal; scientific notation, signs and
// non-finite values are rejected.
func ToBaseUnits(amount string, decimals uint8) (uint64, error) {
	amount = strings.TrimSpace(amount)
	if !decimalAmountPattern.MatchString(amount) {
		return 0, fmt.Errorf("%w: malformed amount %q", common.ErrValidation, amount)
	}

	whole, frac, _ := strings.Cut(amount, ".")
	if len(frac) > int(decimals) {
		// Floor: digits beyond the token's precision are dropped.
		frac = frac[:decimals]
	}
	frac += strings.Repeat("0", int(decimals)-len(frac))

	combined := strings.TrimLeft(whole+frac, "0")
	if combined == "" {
		return 0, nil
	}
	units, err := strconv.ParseUint(combined, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: amount %q out of range", common.ErrValidation, amount)
	}
	return units, nil
}

// FromBaseUnits scales a base-unit string down to a decimal amount. Malformed
// input yields zero; the balance view degrades instead of failing.
func FromBaseUnits(baseUnits string, decimals uint8) float64 {
	units, err := strconv.ParseUint(strings.TrimSpace(baseUnits), 10, 64)
	if err != nil {
		return 0
	}
	return float64(units) / math.Pow10(int(decimals))
}

// parsePositiveAmount parses a decimal amount string and confirms it is a
// finite value greater than zero.
func parsePositiveAmount(amount string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: %q is not a finite number", common.ErrValidation, amount)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive", common.ErrValidation)
	}
	return value, nil
}
