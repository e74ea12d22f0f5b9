// Package uri holds the percent-encoding helpers the HTTP layer needs for
// request targets and query strings.
package uri

import (
	"strings"

	"github.com/pkg/errors"
)

func unhex(h [2]byte) (c byte) {
	return (hexToNum(h[0]) << 4) | hexToNum(h[1])
}

func hexToNum(h byte) byte {
	switch {
	case '0' <= h && h <= '9':
		return h - '0'
	case 'a' <= h && h <= 'f':
		return h - 'a' + 10
	case 'A' <= h && h <= 'F':
		return h - 'A' + 10
	}
	return 0
}

func isHexDigit(h byte) bool {
	return ('0' <= h && h <= '9') ||
		('a' <= h && h <= 'f') ||
		('A' <= h && h <= 'F')
}

// Unescape reverses percent-encoding. Malformed escapes are an error.
func Unescape(s string) (string, error) {
	b := new(strings.Builder)
	b.Grow(len(s))

	for idx := 0; idx < len(s); idx++ {
		c := s[idx]
		if c == '%' {
			if idx+2 >= len(s) || !isHexDigit(s[idx+1]) || !isHexDigit(s[idx+2]) {
				bad := s[idx:min(len(s), idx+3)]
				return "", errors.Errorf("percent encoding not properly applied: %q", bad)
			}
			b.WriteByte(unhex([2]byte{s[idx+1], s[idx+2]}))
			idx += 2
			continue
		}
		b.WriteByte(c)
	}

	return b.String(), nil
}

// UnescapeForm unescapes a form-encoded component, where '+' encodes a
// space.
func UnescapeForm(s string) (string, error) {
	return Unescape(strings.ReplaceAll(s, "+", " "))
}
