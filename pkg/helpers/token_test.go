package helpers

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	re := regexp.MustCompile(`^[A-Za-z0-9]{64}$`)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		tok, err := GenerateToken(ResetTokenLength)
		require.NoError(t, err)
		assert.Regexp(t, re, tok)
		assert.False(t, seen[tok])
		seen[tok] = true
	}
}

func TestGenerateNumericCode(t *testing.T) {
	re := regexp.MustCompile(`^[0-9]{6}$`)
	for i := 0; i < 50; i++ {
		code, err := GenerateNumericCode(VerifyCodeDigits)
		require.NoError(t, err)
		assert.Regexp(t, re, code)
	}

	code, err := GenerateNumericCode(0)
	require.NoError(t, err)
	assert.Empty(t, code)
}
