package crypto

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndLoadSalt(t *testing.T) {
	path := filepath.Join(t.TempDir(), SaltFileName)

	salt, err := GenerateAndSaveSalt(path)
	require.NoError(t, err)
	assert.Len(t, salt, saltSize)

	loaded, err := LoadSalt(path)
	require.NoError(t, err)
	assert.Equal(t, salt, loaded)
}

func TestDeriveKey(t *testing.T) {
	salt := make([]byte, saltSize)

	key := DeriveKey("test-password", salt)
	assert.Len(t, key, keySize)
	assert.Equal(t, key, DeriveKey("test-password", salt))
	assert.NotEqual(t, key, DeriveKey("different-password", salt))
}

func TestSealOpen(t *testing.T) {
	s, err := NewSealer(DeriveKey("test-password", make([]byte, saltSize)))
	require.NoError(t, err)

	type doc struct {
		Name  string
		Token string
	}
	in := doc{Name: "me@example.com", Token: "refresh"}

	sealed, err := s.Seal(in)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "refresh")

	var out doc
	require.NoError(t, s.Open(sealed, &out))
	assert.Equal(t, in, out)
}

func TestWrongKeyFails(t *testing.T) {
	salt := make([]byte, saltSize)
	good, err := NewSealer(DeriveKey("right", salt))
	require.NoError(t, err)
	bad, err := NewSealer(DeriveKey("wrong", salt))
	require.NoError(t, err)

	sealed, err := good.Encrypt([]byte("secret"))
	require.NoError(t, err)

	_, err = bad.Decrypt(sealed)
	assert.Error(t, err)

	_, err = good.Decrypt([]byte("x"))
	assert.ErrorIs(t, err, ErrCiphertextTooShort)
}
