package links

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

const maxShortNameLen = 50

// NormalizeShortName validates a candidate short name and returns its
// canonical form (trimmed, lower-cased). Both the create and the
// update path go through this exact function so the token rules live
// in one place only.
//
// Rules, checked in order:
//   - empty after trimming surrounding whitespace
//   - longer than 50 characters before trimming
//   - anything left after removing '-' and '_' must be ASCII letters
//     or digits
func NormalizeShortName(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", &ValidationError{Detail: "short_name cannot be empty"}
	}
	if utf8.RuneCountInString(raw) > maxShortNameLen {
		return "", &ValidationError{Detail: "short_name cannot be longer than 50 ch."}
	}
	stripped := strings.Map(func(r rune) rune {
		if r == '-' || r == '_' {
			return -1
		}
		return r
	}, trimmed)
	if !isAlphanumeric(stripped) {
		return "", &ValidationError{Detail: "short_name can only contain a-z, 0-9, -, _"}
	}
	return strings.ToLower(trimmed), nil
}

// isAlphanumeric reports whether s is non-empty ASCII letters/digits.
// A name made solely of '-' and '_' strips down to "" and is rejected.
func isAlphanumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// ValidateOriginalURL checks that the destination is an absolute
// http(s) URL with a host.
func ValidateOriginalURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return &ValidationError{Detail: "original_url must be a valid absolute URL"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ValidationError{Detail: "original_url must use the http or https scheme"}
	}
	if strings.TrimSpace(u.Host) == "" {
		return &ValidationError{Detail: "original_url must be a valid absolute URL"}
	}
	return nil
}
