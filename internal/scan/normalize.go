package scan

import (
	"strings"
	"unicode"
)

// foldDiacritics maps common accented characters to ASCII so "Tiësto" and
// "Tiesto" tag variants vote as the same candidate.
func foldDiacritics(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case 'ë', 'ê', 'è', 'é', 'ē', 'ė':
			b.WriteRune('e')
		case 'ï', 'î', 'ì', 'í', 'ī':
			b.WriteRune('i')
		case 'ö', 'ô', 'ò', 'ó', 'ō', 'ø':
			b.WriteRune('o')
		case 'ü', 'û', 'ù', 'ú', 'ū':
			b.WriteRune('u')
		case 'ä', 'â', 'à', 'á', 'ā', 'å':
			b.WriteRune('a')
		case 'ñ':
			b.WriteRune('n')
		case 'ß':
			b.WriteString("ss")
		case 'œ':
			b.WriteString("oe")
		case 'æ':
			b.WriteString("ae")
		default:
			if unicode.Is(unicode.Mn, r) {
				continue
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// consensusKey folds a tag value into the form used for majority-vote
// comparison: case-insensitive, diacritic-folded, punctuation-collapsed.
// The raw value is kept alongside it for display, so this never affects the
// string surfaced to the user, only which variants are counted together.
func consensusKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = foldDiacritics(s)
	s = strings.ReplaceAll(s, "&", "and")
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.Join(strings.Fields(s), " ")
	return s
}
