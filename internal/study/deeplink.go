package study

import (
	"fmt"
	"strings"
)

// Greeting is the message pre-filled in the chat client.
func Greeting(userName, subject, sessionID string) string {
	return fmt.Sprintf("Hi! I'm %s and I want help studying %s. My session ID is %s", userName, subject, sessionID)
}

// DeepLink builds https://<host>/<bot>?text=<encoded text>.
func DeepLink(host, bot, text string) string {
	return "https://" + host + "/" + bot + "?text=" + EncodeURIComponent(text)
}

const upperhex = "0123456789ABCDEF"

// EncodeURIComponent percent-encodes s the way browsers do for a URI
// component: everything except A-Z a-z 0-9 - _ . ! ~ * ' ( ) is escaped as
// UTF-8 bytes, and spaces become %20 rather than +.
func EncodeURIComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
