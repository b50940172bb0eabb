package rison

import (
	"net/url"
	"strings"
)

const upperhex = "0123456789ABCDEF"

// Quote percent-escapes the bytes of an encoded value that are not safe
// inside a URL fragment, leaving the structural punctuation of the grammar
// alone. Spaces become '+'. The result never needs further escaping by the
// host URL mechanism.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ' ':
			b.WriteByte('+')
		case quoteSafe(c):
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&0xf])
		}
	}
	return b.String()
}

// Unquote reverses Quote: '+' folds back to space and percent sequences
// are decoded.
func Unquote(s string) (string, error) {
	return url.QueryUnescape(s)
}

func quoteSafe(c byte) bool {
	if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
		return true
	}
	switch c {
	case '-', '_', '.', '~', '!', '*', '(', ')', '\'', ',', ':', '@', '$', '/':
		return true
	}
	return false
}
