// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	dirName     = ".utill"
	envFileName = "env"
)

// DefaultDir returns ~/.utill.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

func EnvFilePath(dir string) string {
	return filepath.Join(dir, envFileName)
}

// LoadEnvFile exports the variables of path into the process environment
// without overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load env file %s: %w", path, err)
}

// ReadEnvFile returns the variables stored in path, empty when the file does not exist.
func ReadEnvFile(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return env, nil
}

// SetEnvVars merges vars into the env file at path, creating it when needed.
// Keys are upper-cased to match the names envconfig looks up.
func SetEnvVars(path string, vars map[string]string) error {
	env, err := ReadEnvFile(path)
	if err != nil {
		return err
	}

	for k, v := range vars {
		k = strings.ToUpper(strings.TrimSpace(k))
		if k == "" {
			return fmt.Errorf("empty variable name")
		}
		env[k] = v
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := godotenv.Write(env, path); err != nil {
		return fmt.Errorf("failed to write env file %s: %w", path, err)
	}

	return os.Chmod(path, 0o600)
}
