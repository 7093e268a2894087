// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name, preserving case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// MUJid uppercases and trims an identifier so lookups are
// case-insensitive without a collation index.
func MUJid(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ValidMUJid reports whether s is a well-formed identifier after
// MUJid normalization: one or more characters from A-Z and 0-9.
func ValidMUJid(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// Phone strips spaces, dashes, and parentheses from a phone number,
// keeping a leading plus.
func Phone(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
