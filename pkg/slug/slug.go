package slug

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// folding maps accented Latin letters to their ASCII base letter.
var folding = strings.NewReplacer(
	"à", "a", "á", "a", "â", "a", "ä", "a", "ã", "a", "å", "a",
	"ç", "c", "è", "e", "é", "e", "ê", "e", "ë", "e",
	"ì", "i", "í", "i", "î", "i", "ï", "i", "ı", "i",
	"ñ", "n", "ò", "o", "ó", "o", "ô", "o", "ö", "o", "õ", "o",
	"ù", "u", "ú", "u", "û", "u", "ü", "u", "ğ", "g", "ş", "s",
	"ß", "ss", "æ", "ae", "œ", "oe",
)

// Generate creates a URL-friendly identifier from name. Letters outside the
// Latin alphabet are dropped, so a name written only in another script yields
// an empty slug.
//
//   - "Summer Dresses" → "summer-dresses"
//   - "Café Crème" → "cafe-creme"
//   - "فساتين" → ""
func Generate(name string) string {
	s := folding.Replace(strings.ToLower(strings.TrimSpace(name)))
	return strings.Trim(nonAlnum.ReplaceAllString(s, "-"), "-")
}

// WithFallback returns Generate(name), or fallback when that is empty.
func WithFallback(name, fallback string) string {
	if s := Generate(name); s != "" {
		return s
	}
	return fallback
}
