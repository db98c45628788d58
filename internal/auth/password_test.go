package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "secret", hash)

	// 相同明文每次加盐不同
	hash2, err := HashPassword("secret")
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash2)
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)

	assert.True(t, CheckPassword("secret", hash))
	assert.False(t, CheckPassword("wrong", hash))
	assert.False(t, CheckPassword("", hash))

	// 摘要非法时返回 false 而不是报错
	assert.False(t, CheckPassword("secret", "not-a-bcrypt-digest"))
	assert.False(t, CheckPassword("secret", ""))
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("bob@x.com"))
	assert.True(t, ValidateEmail("a@example.com"))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.False(t, ValidateEmail("missing@domain"))
	assert.False(t, ValidateEmail(""))
}
