package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

// Hash computes a SHA-256 hex hash of a string for deduplication.
func Hash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// HashParts hashes several strings as one key. Parts are NUL separated so
// ("ab", "c") and ("a", "bc") differ.
func HashParts(parts ...string) string {
	return Hash(strings.Join(parts, "\x00"))
}

// Truncate shortens a string to at most maxLen runes, appending "..." if
// truncated. Newlines are flattened so the result fits on one log line.
func Truncate(s string, maxLen int) string {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}

// MessageHash identifies a message by its decoded domain and texts. Stores
// and the usage graph key messages by it so they can be joined with the
// catalog.
func MessageHash(domain string, texts []string) string {
	return HashParts(append([]string{domain}, texts...)...)
}
