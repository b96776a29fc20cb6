package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare nanp ten digits", "4155551234", "+14155551234"},
		{"formatted nanp", "(415) 555-1234", "+14155551234"},
		{"already international", "+14155551234", "+14155551234"},
		{"dots and spaces", "415.555 1234", "+14155551234"},
		{"uk number", "+44 20 7946 0958", "+442079460958"},
		{"eleven digits without plus", "14155551234", "+14155551234"},
		{"seven digit minimum", "5551234", "+5551234"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizePhone(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizePhoneRejects(t *testing.T) {
	bad := []string{
		"",
		"   ",
		"555-123",          // six digits
		"1234567890123456", // sixteen digits
		"415555x1234",      // letters
		"4155+551234",      // plus not leading
		"call me maybe",    // words
		"+",                // plus alone
	}
	for _, in := range bad {
		_, err := NormalizePhone(in)
		assert.ErrorIs(t, err, ErrInvalidPhone, "input %q", in)
	}
}

func TestPhoneFingerprint(t *testing.T) {
	a := PhoneFingerprint("+14155551234")
	b := PhoneFingerprint("+14155551234")
	c := PhoneFingerprint("+14155551235")

	assert.Equal(t, a, b, "same input must produce the same fingerprint")
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64, "sha-256 hex is 64 characters")
	assert.NotContains(t, a, "+", "fingerprint must not leak the number")
}

func TestFingerprintMatchesAcrossFormats(t *testing.T) {
	// The directory only works if different spellings of the same number
	// normalize to one fingerprint.
	n1, err := NormalizePhone("(415) 555-1234")
	require.NoError(t, err)
	n2, err := NormalizePhone("415.555.1234")
	require.NoError(t, err)
	assert.Equal(t, PhoneFingerprint(n1), PhoneFingerprint(n2))
}
