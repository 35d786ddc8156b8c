package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := "0123456789abcdef0123456789abcdef" // 32 bytes raw

	encrypted, err := Encrypt("turso-auth-token-value", key)
	require.NoError(t, err)
	assert.NotEqual(t, "turso-auth-token-value", encrypted)

	decrypted, err := Decrypt(encrypted, key)
	require.NoError(t, err)
	assert.Equal(t, "turso-auth-token-value", decrypted)
}

func TestEncryptRejectsEmptyKey(t *testing.T) {
	_, err := Encrypt("data", "")
	assert.Error(t, err)
}

func TestEncryptRejectsBadKeyLength(t *testing.T) {
	_, err := Encrypt("data", "short")
	assert.Error(t, err)
}

func TestDecryptRejectsWrongKey(t *testing.T) {
	key := "0123456789abcdef0123456789abcdef"
	other := "fedcba9876543210fedcba9876543210"

	encrypted, err := Encrypt("secret", key)
	require.NoError(t, err)

	_, err = Decrypt(encrypted, other)
	assert.Error(t, err)
}

func TestDecryptRejectsTamperedCiphertext(t *testing.T) {
	_, err := Decrypt("bm90LXJlYWwtY2lwaGVydGV4dA==", "0123456789abcdef0123456789abcdef")
	assert.Error(t, err)
}

func TestEncryptProducesFreshNonces(t *testing.T) {
	key := "0123456789abcdef0123456789abcdef"

	first, err := Encrypt("same-plaintext", key)
	require.NoError(t, err)
	second, err := Encrypt("same-plaintext", key)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
