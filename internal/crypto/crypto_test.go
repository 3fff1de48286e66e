package crypto

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpen(t *testing.T) {
	key := bytes.Repeat([]byte{7}, 32)
	s, err := NewSealer(key)
	require.NoError(t, err)
	require.True(t, s.Enabled())

	sealed, err := s.Seal("dear diary")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, sealedPrefix))
	assert.NotContains(t, sealed, "diary")

	again, err := s.Seal("dear diary")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ per call")

	plain, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "dear diary", plain)
}

func TestOpenPlainValue(t *testing.T) {
	s, err := NewSealer(bytes.Repeat([]byte{1}, 32))
	require.NoError(t, err)

	plain, err := s.Open("written before the key existed")
	require.NoError(t, err)
	assert.Equal(t, "written before the key existed", plain)
}

func TestDisabledSealer(t *testing.T) {
	s, err := NewSealerFromBase64("")
	require.NoError(t, err)
	assert.False(t, s.Enabled())

	out, err := s.Seal("hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	_, err = s.Open(sealedPrefix + "AAAA")
	assert.Error(t, err)
}

func TestKeyValidation(t *testing.T) {
	_, err := NewSealer([]byte("short"))
	assert.ErrorIs(t, err, ErrKeySize)

	_, err = NewSealerFromBase64("not base64!")
	assert.Error(t, err)

	s, err := NewSealerFromBase64(base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{9}, 32)))
	require.NoError(t, err)
	assert.True(t, s.Enabled())
}

func TestOpenWithWrongKey(t *testing.T) {
	a, _ := NewSealer(bytes.Repeat([]byte{1}, 32))
	b, _ := NewSealer(bytes.Repeat([]byte{2}, 32))

	sealed, err := a.Seal("secret")
	require.NoError(t, err)
	_, err = b.Open(sealed)
	assert.Error(t, err)
}
