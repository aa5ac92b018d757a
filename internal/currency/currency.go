package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Symbol is the fixed currency prefix used on every printed amount.
const Symbol = "₹"

// Format renders an amount in the display form used everywhere: fixed symbol
// prefix, thousands separators, exactly two decimal places.
// 5000 -> "₹5,000.00".
func Format(d decimal.Decimal) string {
	s := d.StringFixed(2)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}

	intPart := s[:len(s)-3]
	fracPart := s[len(s)-3:] // includes the dot

	return sign + Symbol + group(intPart) + fracPart
}

// group inserts a comma every three digits, right to left.
func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
