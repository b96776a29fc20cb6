package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfirmationCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		code, err := NewConfirmationCode()
		require.NoError(t, err)
		assert.Len(t, code, ConfirmationCodeLength)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, r), "unexpected character %q in %s", r, code)
		}
		seen[code] = true
	}
	// 200 draws from a 31^6 space should essentially never collide.
	assert.Greater(t, len(seen), 195)
}

func TestCodeAlphabetExcludesAmbiguousCharacters(t *testing.T) {
	for _, r := range "ILO01" {
		assert.NotContains(t, codeAlphabet, string(r))
	}
}
