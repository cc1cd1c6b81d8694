package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s and strips diacritics so "Mão de Obra" and "mao de obra"
// compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// ContainsAny reports whether the folded form of s contains any of the
// folded needles.
func ContainsAny(s string, needles ...string) bool {
	f := Fold(s)
	for _, n := range needles {
		if strings.Contains(f, Fold(n)) {
			return true
		}
	}
	return false
}

// TitleCase title-cases a vendor token using pt-BR casing rules.
func TitleCase(s string) string {
	return cases.Title(language.BrazilianPortuguese).String(strings.TrimSpace(s))
}

// Money formats v as "R$ 1,234.56". Grouping is fixed so report text is
// byte-stable regardless of host locale.
func Money(v float64) string {
	return message.NewPrinter(language.English).Sprintf("R$ %.2f", v)
}
