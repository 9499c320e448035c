package utils

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=3,p=2$"))

	ok, err := VerifyPassword("correct horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong horse", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	other, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "salt must differ per hash")
}

func TestVerifyPassword_InvalidFormat(t *testing.T) {
	for _, h := range []string{"", "plaintext", "$bcrypt$v=19$m=1,t=1,p=1$a$b", "$argon2id$v=18$m=1,t=1,p=1$a$b"} {
		_, err := VerifyPassword("x", h)
		assert.ErrorIs(t, err, ErrInvalidHash, h)
	}
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("user@example.com"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("Name <user@example.com>"))
	assert.Equal(t, "user@example.com", NormalizeEmail("  User@Example.COM "))
}

func TestValidatePassword(t *testing.T) {
	assert.Error(t, ValidatePassword("12345"))
	assert.NoError(t, ValidatePassword("123456"))
	assert.Error(t, ValidatePassword(strings.Repeat("a", MaxPasswordLength+1)))

	var verr *ValidationError
	assert.ErrorAs(t, ValidatePassword(""), &verr)
	assert.Equal(t, "password", verr.Field)
}

func TestCipherRoundTrip(t *testing.T) {
	key := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", 32)))
	c, err := NewCipher(key)
	require.NoError(t, err)

	sealed, err := c.Encrypt("I felt anxious today")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "anxious")

	plain, err := c.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "I felt anxious today", plain)

	empty, err := c.Encrypt("")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestNewCipher_BadKey(t *testing.T) {
	_, err := NewCipher("")
	assert.Error(t, err)
	_, err = NewCipher("!!!")
	assert.Error(t, err)
	_, err = NewCipher(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.Error(t, err)
}
