// Package slug turns free text into URL and HTML-id friendly slugs.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// letters that NFKD does not decompose into an ASCII base
var special = map[rune]string{
	'ß': "ss",
	'æ': "ae",
	'œ': "oe",
	'ø': "o",
	'đ': "d",
	'ð': "d",
	'ł': "l",
	'þ': "th",
	'ı': "i",
}

// Slugify lowercases s, transliterates diacritics to their closest ASCII
// form, collapses every run of whitespace or punctuation into a single
// hyphen and trims hyphens from both ends.
//
//	Slugify("Über Uns")      == "uber-uns"
//	Slugify("FAQ & Kontakt") == "faq-kontakt"
//	Slugify("")              == ""
func Slugify(s string) string {
	if s == "" {
		return ""
	}

	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	pendingSep := false
	emit := func(part string) {
		if pendingSep && b.Len() > 0 {
			b.WriteByte('-')
		}
		pendingSep = false
		b.WriteString(part)
	}

	for _, r := range folded {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			emit(string(r))
		case special[r] != "":
			emit(special[r])
		case unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r):
			pendingSep = true
		default:
			// any other non-ASCII rune has no ASCII form and is dropped
		}
	}

	return b.String()
}
