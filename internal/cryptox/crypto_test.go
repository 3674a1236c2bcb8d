package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyPassword_Plain(t *testing.T) {
	assert.True(t, VerifyPassword("s3cret", []byte("s3cret")))
	assert.False(t, VerifyPassword("s3cret", []byte("S3cret")))
	assert.False(t, VerifyPassword("s3cret", []byte("")))
}

func TestVerifyPassword_EmptyStoredNeverMatches(t *testing.T) {
	assert.False(t, VerifyPassword("", []byte("")))
	assert.False(t, VerifyPassword("", []byte("x")))
}

func TestVerifyPassword_Bcrypt(t *testing.T) {
	h, err := HashPassword([]byte("hunter2"))
	require.NoError(t, err)
	require.True(t, IsBcryptHash(h))

	assert.True(t, VerifyPassword(h, []byte("hunter2")))
	assert.False(t, VerifyPassword(h, []byte("hunter3")))
	// the hash itself is not a valid password
	assert.False(t, VerifyPassword(h, []byte(h)))
}

func TestIsBcryptHash(t *testing.T) {
	assert.True(t, IsBcryptHash("$2b$10$abcdefghijklmnopqrstuv"))
	assert.True(t, IsBcryptHash("$2y$10$abcdefghijklmnopqrstuv"))
	assert.False(t, IsBcryptHash("$argon2id$v=19$"))
	assert.False(t, IsBcryptHash("plain"))
}
