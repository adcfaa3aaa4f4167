package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storelane/internal/utils"
)

func TestRandomTokenLengthAndCharset(t *testing.T) {
	token, err := utils.RandomToken(utils.SecretTokenLength)
	require.NoError(t, err)
	require.Len(t, token, 60)

	for _, r := range token {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		assert.True(t, isAlnum, "unexpected character %q", r)
	}
}

func TestRandomTokenUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token, err := utils.RandomToken(utils.SecretTokenLength)
		require.NoError(t, err)
		require.False(t, seen[token])
		seen[token] = true
	}
}

func TestRandomTokenZeroLength(t *testing.T) {
	token, err := utils.RandomToken(0)
	require.NoError(t, err)
	assert.Empty(t, token)
}
