package utils

import "crypto/rand"

// codeAlphabet excludes characters that are easy to mishear or misread
// over the phone: I, L, O, 0 and 1.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// ConfirmationCodeLength is the fixed length of generated codes.
const ConfirmationCodeLength = 6

// NewConfirmationCode generates a random speakable confirmation code.
// Uniqueness is not guaranteed here; callers must check the generated
// code against the live reservation set and regenerate on collision.
func NewConfirmationCode() (string, error) {
	buf := make([]byte, ConfirmationCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, ConfirmationCodeLength)
	for i, b := range buf {
		out[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(out), nil
}
