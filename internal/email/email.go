// Package email derives company e-mail handles from author display
// names.
package email

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Domain is the company mail domain handles are derived for.
const Domain = "xebia.com"

// deaccent transliterates to ASCII by decomposing and stripping
// combining marks.
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NameToEmail derives the e-mail address for a display name: first
// name, a dot, the remaining name segments joined, lowercased, with
// hyphens removed within segments and diacritics transliterated.
//
//	"Mark van Holsteijn"   -> "mark.vanholsteijn@xebia.com"
//	"Jan-Justin van Tonder" -> "janjustin.vantonder@xebia.com"
func NameToEmail(name string) string {
	return NameToEmailAt(name, Domain)
}

// NameToEmailAt is NameToEmail for an arbitrary mail domain.
func NameToEmailAt(name, domain string) string {
	parts := strings.Fields(strings.ReplaceAll(name, "-", ""))
	if len(parts) == 0 {
		return ""
	}

	local := parts[0]
	if len(parts) > 1 {
		local += "." + strings.Join(parts[1:], "")
	}

	address := strings.ToLower(local + "@" + domain)

	if ascii, _, err := transform.String(deaccent, address); err == nil {
		address = ascii
	}

	return address
}
