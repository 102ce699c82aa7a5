// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package config

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-playground/validator/v10"
)

//go:embed templates
var templates embed.FS

type Mode string

const (
	ModeGoogleCloud Mode = "google-cloud"
	ModePostgres    Mode = "postgresql"
	ModeMetabase    Mode = "metabase"
)

const (
	metabaseFileName = "mb.json"
	postgresFileName = "pg.json"
)

var (
	ErrFileExists      = errors.New("config file already exists")
	ErrProfileNotFound = errors.New("profile not found")
	ErrUnknownMode     = errors.New("unknown config mode")

	validate = validator.New(validator.WithRequiredStructEnabled())
)

// MetabaseProfile holds the BI server connection.
type MetabaseProfile struct {
	BaseURL string `json:"base_url" validate:"required,url"`
	APIKey  string `json:"api_key" validate:"required"`
}

// PostgresProfile holds a single named database connection, optionally behind an SSH bastion.
type PostgresProfile struct {
	Host     string `json:"host" validate:"required"`
	Port     int    `json:"port" validate:"required,min=1,max=65535"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password"`
	DB       string `json:"db" validate:"required"`

	TunnelHost     string `json:"tunnel_host"`
	TunnelPort     int    `json:"tunnel_port" validate:"omitempty,min=1,max=65535"`
	TunnelUsername string `json:"tunnel_username" validate:"required_with=TunnelHost"`
	TunnelKey      string `json:"tunnel_key" validate:"required_with=TunnelHost"`
	KnownHosts     string `json:"known_hosts,omitempty"`
}

func (p *PostgresProfile) UsesTunnel() bool {
	return p.TunnelHost != ""
}

func MetabaseFilePath(dir string) string {
	return filepath.Join(dir, metabaseFileName)
}

func PostgresFilePath(dir string) string {
	return filepath.Join(dir, postgresFileName)
}

// LoadMetabaseProfile reads and validates mb.json from dir.
func LoadMetabaseProfile(dir string) (*MetabaseProfile, error) {
	p := new(MetabaseProfile)
	if err := readJSON(MetabaseFilePath(dir), p); err != nil {
		return nil, err
	}
	if err := validate.Struct(p); err != nil {
		return nil, fmt.Errorf("invalid metabase config: %w", err)
	}
	return p, nil
}

// LoadPostgresProfiles reads every profile from pg.json in dir.
func LoadPostgresProfiles(dir string) (map[string]*PostgresProfile, error) {
	profiles := make(map[string]*PostgresProfile)
	if err := readJSON(PostgresFilePath(dir), &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// LoadPostgresProfile returns the validated profile called name.
func LoadPostgresProfile(dir, name string) (*PostgresProfile, error) {
	profiles, err := LoadPostgresProfiles(dir)
	if err != nil {
		return nil, err
	}

	p, ok := profiles[name]
	if !ok || p == nil {
		return nil, fmt.Errorf("%w: %q", ErrProfileNotFound, name)
	}
	if err := validate.Struct(p); err != nil {
		return nil, fmt.Errorf("invalid postgres profile %q: %w", name, err)
	}
	if p.UsesTunnel() && p.TunnelPort == 0 {
		p.TunnelPort = 22
	}
	return p, nil
}

// ProfileNames returns the sorted profile names.
func ProfileNames(profiles map[string]*PostgresProfile) []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Init writes the template for mode into dir and returns the written path.
// Existing files are only replaced when force is set.
func Init(dir string, mode Mode, force bool) (string, error) {
	var src, dst string
	switch mode {
	case ModeGoogleCloud:
		src, dst = "templates/env", EnvFilePath(dir)
	case ModePostgres:
		src, dst = "templates/pg.json", PostgresFilePath(dir)
	case ModeMetabase:
		src, dst = "templates/mb.json", MetabaseFilePath(dir)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	if _, err := os.Stat(dst); err == nil && !force {
		return "", fmt.Errorf("%w: %s", ErrFileExists, dst)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	content, err := templates.ReadFile(src)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(dst, content, 0o600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", dst, err)
	}

	return dst, nil
}

func readJSON(path string, v any) error {
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config file not found: %s, create one with 'utill conf init'", path)
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(content, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
