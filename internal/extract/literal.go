package extract

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrNotLiteral is returned by Unquote for arguments that are not exactly
// one quoted literal.
var ErrNotLiteral = errors.New("not a string literal")

// IsLiteral reports whether raw is a single quoted literal, as opposed to an
// identifier, a concatenation or any other expression.
func IsLiteral(raw string) bool {
	return literalEnd(raw) == len(raw)
}

// literalEnd returns the offset just past the literal that opens raw, or -1.
func literalEnd(raw string) int {
	if len(raw) < 2 {
		return -1
	}
	q := raw[0]
	if q != '\'' && q != '"' && q != '`' {
		return -1
	}
	for i := 1; i < len(raw); i++ {
		switch raw[i] {
		case '\\':
			i++
		case q:
			return i + 1
		}
	}
	return -1
}

// Unquote decodes a raw literal argument into the text it denotes.
func Unquote(raw string) (string, error) {
	if !IsLiteral(raw) {
		return "", ErrNotLiteral
	}
	body := raw[1 : len(raw)-1]
	if !strings.ContainsRune(body, '\\') {
		return body, nil
	}

	var b strings.Builder
	b.Grow(len(body))

	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			b.WriteByte(c)
			continue
		}
		i++
		switch e := body[i]; e {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\r':
			// line continuation
			if i+1 < len(body) && body[i+1] == '\n' {
				i++
			}
		case '\n':
		case 'x':
			if r, n, ok := hexRune(body[i+1:], 2); ok {
				b.WriteRune(r)
				i += n
			} else {
				b.WriteByte(e)
			}
		case 'u':
			if r, n, ok := unicodeEscape(body[i+1:]); ok {
				b.WriteRune(r)
				i += n
			} else {
				b.WriteByte(e)
			}
		default:
			b.WriteByte(e)
		}
	}

	return b.String(), nil
}

func hexRune(s string, digits int) (rune, int, bool) {
	if len(s) < digits {
		return 0, 0, false
	}
	v, err := strconv.ParseUint(s[:digits], 16, 32)
	if err != nil {
		return 0, 0, false
	}
	return rune(v), digits, true
}

// unicodeEscape decodes the part after \u: either four hex digits or a
// braced code point. Surrogate pairs are joined.
func unicodeEscape(s string) (rune, int, bool) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 2 {
			return 0, 0, false
		}
		v, err := strconv.ParseUint(s[1:end], 16, 32)
		if err != nil || !utf8.ValidRune(rune(v)) {
			return 0, 0, false
		}
		return rune(v), end + 1, true
	}

	r, n, ok := hexRune(s, 4)
	if !ok {
		return 0, 0, false
	}
	if r >= 0xD800 && r < 0xDC00 && strings.HasPrefix(s[n:], `\u`) {
		if lo, m, ok := hexRune(s[n+2:], 4); ok && lo >= 0xDC00 && lo < 0xE000 {
			return (r-0xD800)<<10 + (lo - 0xDC00) + 0x10000, n + 2 + m, true
		}
	}
	return r, n, true
}
