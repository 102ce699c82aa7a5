// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package strutil holds small string helpers exposed by the CLI.
package strutil

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"math/big"
	"slices"
	"strings"
)

const (
	alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	symbols      = `!@#$%^&*()-=_+[]{};':",./<>?`
)

var ErrInvalidLength = errors.New("length must be positive")

// Random returns a string of length characters drawn from crypto/rand.
func Random(length int, alphanum bool) (string, error) {
	if length <= 0 {
		return "", ErrInvalidLength
	}

	charset := alphanumeric
	if !alphanum {
		charset += symbols
	}

	size := big.NewInt(int64(len(charset)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		out[i] = charset[n.Int64()]
	}
	return string(out), nil
}

// Unique drops repeated values, keeping first occurrences in order unless sorted is set.
func Unique(values []string, sorted bool) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if sorted {
		slices.Sort(out)
	}
	return out
}

const (
	maskMin     = 5
	maskMax     = 50
	maskVisible = 5
)

// Mask hides s behind a run of asterisks whose length depends on s, keeping
// only its tail visible. Short values keep a single character.
func Mask(s string) string {
	length := maskMin
	if s != "" {
		sum := sha256.Sum256([]byte(s))
		h := new(big.Int).SetBytes(sum[:])
		length += int(h.Mod(h, big.NewInt(maskMax-maskMin+1)).Int64())
	}

	visible := 1
	if len(s) > maskVisible {
		visible = maskVisible
	}
	tail := s[len(s)-min(visible, len(s)):]

	return strings.Repeat("*", length) + tail
}
