// Package money handles the decimal-string amounts used across the
// catalog and orders. Amounts are persisted verbatim as NUMERIC(10,2) and
// only converted to paise at the gateway boundary.
package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalid = errors.New("amount is not a valid decimal string")

// ToPaise converts an amount like "1250.00" or "850" to the currency's
// minor unit. One or two fractional digits are allowed; a trailing dot,
// a sign, or anything but digits around it is rejected.
func ToPaise(amount string) (int64, error) {
	whole, frac, dotted := strings.Cut(amount, ".")
	if whole == "" || strings.HasPrefix(whole, "-") || strings.HasPrefix(whole, "+") {
		return 0, ErrInvalid
	}

	rupees, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, ErrInvalid
	}

	if !dotted {
		return rupees * 100, nil
	}

	switch len(frac) {
	case 1:
		frac += "0"
	case 2:
	default:
		return 0, ErrInvalid
	}
	for _, r := range frac {
		if r < '0' || r > '9' {
			return 0, ErrInvalid
		}
	}

	paise, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, ErrInvalid
	}

	return rupees*100 + paise, nil
}

// FromPaise renders a minor-unit amount with two decimals, e.g. 125000 ->
// "1250.00".
func FromPaise(paise int64) string {
	return fmt.Sprintf("%d.%02d", paise/100, paise%100)
}

// Check reports whether amount parses as a non-negative decimal string.
func Check(amount string) error {
	_, err := ToPaise(amount)
	return err
}
