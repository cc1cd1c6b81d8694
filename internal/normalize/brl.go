// Package normalize converts Brazilian-Portuguese formatted values and
// labels into canonical forms.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	currencyMarker = regexp.MustCompile(`(?i)r\$`)
	plainDecimal   = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)$`)
)

// ParseBRL converts a pt-BR formatted number ("R$ 1.234,56", "420.000",
// "12,5%") to a float64. Unparseable input yields 0.
func ParseBRL(s string) float64 {
	v, _ := TryBRL(s)
	return v
}

// TryBRL is ParseBRL that also reports whether s held a number. A comma is
// always the decimal separator and periods are always thousands separators.
func TryBRL(s string) (float64, bool) {
	s = currencyMarker.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSuffix(s, "%")
	if s == "" {
		return 0, false
	}

	if i := strings.LastIndex(s, ","); i >= 0 {
		s = strings.ReplaceAll(s[:i], ".", "") + "." + s[i+1:]
	} else {
		s = strings.ReplaceAll(s, ".", "")
	}

	if !plainDecimal.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
