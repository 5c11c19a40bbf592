package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt")

	key1 := DeriveKey(password, salt)
	key2 := DeriveKey(password, salt)
	assert.Equal(t, key1, key2)
	assert.Len(t, key1, 32)

	assert.NotEqual(t, key1, DeriveKey(password, []byte("other-salt")))
}

func TestHashAndVerify(t *testing.T) {
	h := HashPassword("1893ab19c30d2b4f")
	assert.True(t, strings.HasPrefix(h, "$argon2id$v=19$m=65536,t=1,p=4$"))
	assert.NotEqual(t, h, HashPassword("1893ab19c30d2b4f"), "salts differ")

	ok, err := VerifyPassword(h, "1893ab19c30d2b4f")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(h, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPassword_Malformed(t *testing.T) {
	for _, bad := range []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=18$m=1,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=1,t=1,p=1$!!$a2V5",
		"$argon2id$v=19$m=1,t=1,p=1$c2FsdA$",
	} {
		_, err := VerifyPassword(bad, "pw")
		assert.ErrorIs(t, err, ErrMalformedHash, bad)
	}
}
