// Package phone formats stored phone numbers for display.
package phone

import (
	"strings"
	"unicode"
)

// Digits strips everything but ASCII digits.
func Digits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Format renders area-code numbers as (XX) XXXXX-XXXX for mobiles and
// (XX) XXXX-XXXX for landlines. Anything else is returned unchanged.
func Format(raw string) string {
	d := Digits(raw)
	switch len(d) {
	case 11:
		return "(" + d[:2] + ") " + d[2:7] + "-" + d[7:]
	case 10:
		return "(" + d[:2] + ") " + d[2:6] + "-" + d[6:]
	default:
		return raw
	}
}
