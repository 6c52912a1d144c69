// Package slug turns job names into filesystem-safe file stems.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fallback is returned when nothing usable remains.
const Fallback = "export"

const maxLength = 80

// Make folds accents, lowercases, and joins runs of letters and digits with
// single dashes. "Sexy Move (R U R' U')" becomes "sexy-move-r-u-r-u".
func Make(value string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, value)
	if err != nil {
		folded = value
	}
	folded = cases.Lower(language.Und).String(folded)

	var b strings.Builder
	pendingDash := false
	for _, r := range folded {
		if (r <= unicode.MaxASCII) && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingDash = false
			continue
		}
		if r == '\'' || r == '’' {
			continue
		}
		pendingDash = true
	}

	out := b.String()
	if len(out) > maxLength {
		out = strings.TrimRight(out[:maxLength], "-")
	}
	if out == "" {
		return Fallback
	}
	return out
}
