package extractor

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseMoney normalizes a Colombian-formatted amount such as "$1.234.567,89".
// The leading currency symbol is dropped, periods are thousands separators and
// the comma is the decimal separator.
func ParseMoney(value string) (float64, error) {
	cleaned := strings.TrimSpace(value)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	if cleaned == "" {
		return 0, fmt.Errorf("empty amount %q", value)
	}
	if !isPlainDecimal(cleaned) {
		return 0, fmt.Errorf("amount %q has characters outside digits and separators", value)
	}

	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("amount %q: %w", value, err)
	}
	return amount, nil
}

// isPlainDecimal reports whether s is digits with at most one '.', which keeps
// ParseFloat from accepting signs, exponents, hex floats, underscores, NaN or Inf.
func isPlainDecimal(s string) bool {
	digits, dots := 0, 0
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] >= '0' && s[i] <= '9':
			digits++
		case s[i] == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

// FormatMoney renders amount in the publisher's notation, the inverse of ParseMoney.
func FormatMoney(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	plain := strconv.FormatFloat(amount, 'f', -1, 64)
	whole, frac, hasFrac := strings.Cut(plain, ".")

	var grouped strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(digit)
	}

	if hasFrac {
		return sign + "$" + grouped.String() + "," + frac
	}
	return sign + "$" + grouped.String()
}
