// Package storage holds helpers shared by the result storages.
package storage

import (
	"errors"
	"path"
	"strings"
)

// ErrInvalidKey key outside of the storage path prefix or blacklisted
var ErrInvalidKey = errors.New("storage: invalid key")

const upperhex = "0123456789ABCDEF"

// SafeChars set of bytes left unescaped in addition to the defaults
type SafeChars map[byte]bool

// NewSafeChars creates SafeChars from chars
func NewSafeChars(chars string) SafeChars {
	s := SafeChars{}
	for i := 0; i < len(chars); i++ {
		s[chars[i]] = true
	}
	return s
}

// ShouldEscape reports whether c is escaped in a storage key
func (s SafeChars) ShouldEscape(c byte) bool {
	if 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' {
		return false
	}
	switch c {
	case '/', '-', '_', '.', '~':
		return false
	}
	return !s[c]
}

// Normalize cleans key into a slash separated relative path,
// percent escaping every byte that is not alphanumeric, unreserved or safe
func Normalize(key string, safe SafeChars) string {
	key = strings.Trim(path.Clean("/"+key), "/")
	n := 0
	for i := 0; i < len(key); i++ {
		if safe.ShouldEscape(key[i]) {
			n++
		}
	}
	if n == 0 {
		return key
	}
	t := make([]byte, 0, len(key)+2*n)
	for i := 0; i < len(key); i++ {
		c := key[i]
		if safe.ShouldEscape(c) {
			t = append(t, '%', upperhex[c>>4], upperhex[c&15])
		} else {
			t = append(t, c)
		}
	}
	return string(t)
}

// PathPrefix normalizes prefix into "/" or "/prefix/"
func PathPrefix(prefix string) string {
	prefix = "/" + strings.Trim(prefix, "/")
	if prefix != "/" {
		prefix += "/"
	}
	return prefix
}
