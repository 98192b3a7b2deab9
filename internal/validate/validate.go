// Package validate holds the pure input checks shared by submit-time and
// field-level validation.
package validate

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf16"
)

// MinPasswordLen is the minimum password length in UTF-16 code units, the
// unit a browser's String.length counts.
const MinPasswordLen = 6

// emailPattern is something@something.something without whitespace or an
// extra @.  Whitespace is the ECMAScript set: Go's \s plus \v, every Unicode
// space separator, the line and paragraph separators, and the BOM.
var emailPattern = regexp.MustCompile(`^[^\s\x0B\p{Z}\x{FEFF}@]+@[^\s\x0B\p{Z}\x{FEFF}@]+\.[^\s\x0B\p{Z}\x{FEFF}@]+$`)

func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IsValidPassword counts characters outside the basic multilingual plane as
// two, so "😀😀😀" is long enough.
func IsValidPassword(s string) bool {
	return len(utf16.Encode([]rune(s))) >= MinPasswordLen
}

// IsBlank reports whether s is empty after trimming ECMAScript whitespace.
func IsBlank(s string) bool {
	return strings.TrimFunc(s, IsSpace) == ""
}

// IsSpace matches the characters String.prototype.trim removes.
func IsSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', '\u2028', '\u2029', '\ufeff':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

// Trim is strings.TrimSpace with the ECMAScript whitespace set.
func Trim(s string) string {
	return strings.TrimFunc(s, IsSpace)
}
