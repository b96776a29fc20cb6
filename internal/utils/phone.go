package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// ErrInvalidPhone is returned when a phone number cannot be normalized to
// a plausible dialable form.
var ErrInvalidPhone = errors.New("invalid phone number")

// NormalizePhone reduces a caller-supplied phone number to a canonical
// international form: a leading "+" followed by 7 to 15 digits.  Common
// formatting characters (spaces, dashes, dots, parentheses) are stripped.
// Ten-digit numbers without a country code are assumed to be NANP and
// prefixed with +1, matching how the voice platform reports caller IDs.
func NormalizePhone(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrInvalidPhone
	}
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			// leading plus is kept, any other position is invalid
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
			// formatting noise
		default:
			return "", ErrInvalidPhone
		}
	}
	s = b.String()
	digits := strings.TrimPrefix(s, "+")
	if len(digits) < 7 || len(digits) > 15 {
		return "", ErrInvalidPhone
	}
	if !strings.HasPrefix(s, "+") {
		if len(digits) == 10 {
			return "+1" + digits, nil
		}
		return "+" + digits, nil
	}
	return s, nil
}

// PhoneFingerprint returns the one-way lookup key for a normalized phone
// number: the SHA-256 digest encoded as lowercase hex.  The directory
// stores and matches only this value, so the number itself never appears
// in a searchable column.
func PhoneFingerprint(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
