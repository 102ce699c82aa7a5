// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package encryption

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringRoundTrip(t *testing.T) {
	token, err := EncryptString("s3cr3t value", "correct horse")
	require.NoError(t, err)

	again, err := EncryptString("s3cr3t value", "correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, token, again, "salt and nonce must differ between calls")

	plain, err := DecryptString(token+"\n", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t value", plain)
}

func TestDecryptFailures(t *testing.T) {
	token, err := EncryptString("data", "pw")
	require.NoError(t, err)

	_, err = DecryptString(token, "other")
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	_, err = DecryptString("not base64!", "pw")
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Decrypt([]byte{version1, 1, 2}, "pw")
	assert.ErrorIs(t, err, ErrMalformed)

	payload, err := Encrypt([]byte("data"), "pw")
	require.NoError(t, err)
	payload[0] = 9
	_, err = Decrypt(payload, "pw")
	assert.ErrorIs(t, err, ErrMalformed)

	payload[0] = version1
	payload[len(payload)-1] ^= 0xff
	_, err = Decrypt(payload, "pw")
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestEmptyPassword(t *testing.T) {
	_, err := EncryptString("data", "")
	assert.ErrorIs(t, err, ErrEmptyPassword)

	_, err = Decrypt(make([]byte, 64), "")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "plain.txt")
	enc := filepath.Join(dir, "plain.txt.enc")
	dec := filepath.Join(dir, "plain.out")

	require.NoError(t, os.WriteFile(src, []byte("line 1\nline 2\n"), 0o600))

	require.NoError(t, EncryptFile(src, enc, "pw", false))
	assert.ErrorIs(t, EncryptFile(src, enc, "pw", false), ErrDestinationExists)
	require.NoError(t, EncryptFile(src, enc, "pw", true))

	require.NoError(t, DecryptFile(enc, dec, "pw", false))
	data, err := os.ReadFile(dec)
	require.NoError(t, err)
	assert.Equal(t, "line 1\nline 2\n", string(data))
}
