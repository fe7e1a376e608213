package util

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tok, err := GenerateToken(16)
	require.NoError(t, err)
	assert.Len(t, tok, 32)
	assert.Regexp(t, "^[0-9a-f]+$", tok)

	other, err := GenerateToken(16)
	require.NoError(t, err)
	assert.NotEqual(t, tok, other)
}

func TestRandStr(t *testing.T) {
	s := RandStr(10)
	assert.Len(t, s, 10)
	assert.Regexp(t, "^[a-zA-Z]+$", s)
}

func TestGravatarURL(t *testing.T) {
	url := GravatarURL("a@x.com")

	re := regexp.MustCompile(`^https://www\.gravatar\.com/avatar/[0-9a-f]{32}\?s=100&r=x&d=retro$`)
	assert.Regexp(t, re, url)

	// Derivation is case and whitespace insensitive, per the gravatar spec
	assert.Equal(t, url, GravatarURL("  A@X.COM  "))

	// But distinct addresses get distinct avatars
	assert.NotEqual(t, url, GravatarURL("b@x.com"))
}
