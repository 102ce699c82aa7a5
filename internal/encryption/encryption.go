// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package encryption seals data with a key derived from a password.
//
// A sealed payload is laid out as version (1 byte), salt (16 bytes), nonce
// (24 bytes) followed by the XChaCha20-Poly1305 ciphertext. The key is derived
// with argon2id. Text tokens are the standard base64 encoding of the payload.
package encryption

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	version1 byte = 1

	saltSize = 16

	argonTime    = 3
	argonMemory  = 64 * 1024
	argonThreads = 4
)

var (
	ErrEmptyPassword     = errors.New("password must not be empty")
	ErrMalformed         = errors.New("malformed encrypted payload")
	ErrDecryptionFailed  = errors.New("decryption failed, wrong password or corrupted payload")
	ErrDestinationExists = errors.New("destination file exists")
)

func deriveKey(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, chacha20poly1305.KeySize)
}

// Encrypt seals plaintext. Each call uses a fresh salt and nonce.
func Encrypt(plaintext []byte, password string) ([]byte, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}

	header := make([]byte, 1+saltSize+chacha20poly1305.NonceSizeX)
	header[0] = version1
	if _, err := rand.Read(header[1:]); err != nil {
		return nil, err
	}
	salt := header[1 : 1+saltSize]
	nonce := header[1+saltSize:]

	aead, err := chacha20poly1305.NewX(deriveKey(password, salt))
	if err != nil {
		return nil, err
	}

	// the header is authenticated as additional data
	return aead.Seal(header, nonce, plaintext, header), nil
}

// Decrypt opens a payload produced by Encrypt.
func Decrypt(payload []byte, password string) ([]byte, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}

	headerSize := 1 + saltSize + chacha20poly1305.NonceSizeX
	if len(payload) < headerSize+chacha20poly1305.Overhead {
		return nil, ErrMalformed
	}
	if payload[0] != version1 {
		return nil, fmt.Errorf("%w: unknown version %d", ErrMalformed, payload[0])
	}

	header := payload[:headerSize]
	salt := header[1 : 1+saltSize]
	nonce := header[1+saltSize:]

	aead, err := chacha20poly1305.NewX(deriveKey(password, salt))
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, nonce, payload[headerSize:], header)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

func EncryptString(plaintext, password string) (string, error) {
	payload, err := Encrypt([]byte(plaintext), password)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(payload), nil
}

func DecryptString(token, password string) (string, error) {
	payload, err := base64.StdEncoding.DecodeString(string(bytes.TrimSpace([]byte(token))))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	plaintext, err := Decrypt(payload, password)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// EncryptFile writes the base64 token of src into dst.
func EncryptFile(src, dst, password string, overwrite bool) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	token, err := EncryptString(string(data), password)
	if err != nil {
		return err
	}
	return writeFile(dst, []byte(token+"\n"), overwrite)
}

// DecryptFile reverses EncryptFile.
func DecryptFile(src, dst, password string, overwrite bool) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	plaintext, err := DecryptString(string(data), password)
	if err != nil {
		return err
	}
	return writeFile(dst, []byte(plaintext), overwrite)
}

func writeFile(dst string, data []byte, overwrite bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}

	f, err := os.OpenFile(dst, flags, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrDestinationExists, dst)
		}
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
