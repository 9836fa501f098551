package format

import (
	"strings"
)

// NormalizeString rewrites a quoted string literal to use the preferred
// quote, unless the content holds more of the preferred quote than of the
// other one. Escapes are adjusted to the chosen quote and escapes of
// characters that need none are dropped.
func NormalizeString(raw string, preferSingle bool) string {
	if len(raw) < 2 {
		return raw
	}
	first := raw[0]
	if (first != '\'' && first != '"') || raw[len(raw)-1] != first {
		return raw
	}
	content := raw[1 : len(raw)-1]

	preferred, alternate := byte('"'), byte('\'')
	if preferSingle {
		preferred, alternate = alternate, preferred
	}
	enclosing := preferred
	if strings.Count(content, string(preferred)) > strings.Count(content, string(alternate)) {
		enclosing = alternate
	}
	other := byte('"')
	if enclosing == '"' {
		other = '\''
	}

	var sb strings.Builder
	sb.Grow(len(raw) + 2)
	sb.WriteByte(enclosing)
	for i := 0; i < len(content); i++ {
		c := content[i]
		switch {
		case c == '\\' && i+1 < len(content):
			next := content[i+1]
			i++
			switch {
			case next == other:
				sb.WriteByte(next)
			case needsEscape(next):
				sb.WriteByte('\\')
				sb.WriteByte(next)
			default:
				sb.WriteByte(next)
			}
		case c == enclosing:
			sb.WriteByte('\\')
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte(enclosing)
	return sb.String()
}

// needsEscape reports whether a backslash before c carries meaning: quotes,
// line terminators, octal digits, the backslash itself and the named
// escapes b f n r t u v x. Bytes of multi-byte characters keep their
// backslash, which also covers U+2028 and U+2029.
func needsEscape(c byte) bool {
	switch {
	case c == '\n', c == '\r', c == '"', c == '\'', c == '\\':
		return true
	case c >= '0' && c <= '7':
		return true
	case c == 'b', c == 'f', c == 'n', c == 'r', c == 't', c == 'u', c == 'v', c == 'x':
		return true
	case c >= 0x80:
		return true
	}
	return false
}
