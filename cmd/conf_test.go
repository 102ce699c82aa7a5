// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/canonical/utill/internal/config"
)

func TestConfInit(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "--config-dir", dir, "conf", "init", "postgresql")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, filepath.Join(dir, "pg.json")) {
		t.Fatalf("unexpected output %q", out)
	}

	if _, err := execute(t, "--config-dir", dir, "conf", "init", "postgresql"); !errors.Is(err, config.ErrFileExists) {
		t.Fatalf("expected ErrFileExists, got %v", err)
	}
	if _, err := execute(t, "--config-dir", dir, "conf", "init", "postgresql", "--force"); err != nil {
		t.Fatalf("unexpected error with --force: %v", err)
	}
	if _, err := execute(t, "--config-dir", dir, "conf", "init", "oracle"); !errors.Is(err, config.ErrUnknownMode) {
		t.Fatalf("expected ErrUnknownMode, got %v", err)
	}
}

func TestConfSetAndList(t *testing.T) {
	dir := t.TempDir()

	if _, err := execute(t, "--config-dir", dir, "conf", "set", "-e", "gcs_bucket=staging", "-e", "GCS_HMAC_SECRET=supersecretvalue"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	env, err := config.ReadEnvFile(config.EnvFilePath(dir))
	if err != nil {
		t.Fatal(err)
	}
	if env["GCS_BUCKET"] != "staging" {
		t.Fatalf("unexpected env %v", env)
	}

	out, err := execute(t, "--config-dir", dir, "conf", "list")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "staging") {
		t.Errorf("expected plain values to be listed, got %q", out)
	}
	if strings.Contains(out, "supersecretvalue") || !strings.Contains(out, "value") {
		t.Errorf("expected the secret to be masked, got %q", out)
	}

	if _, err := execute(t, "--config-dir", dir, "conf", "set", "-e", "missing-separator"); err == nil {
		t.Fatal("expected error for an invalid assignment")
	}
}

func TestConfListModules(t *testing.T) {
	dir := t.TempDir()
	if _, err := config.Init(dir, config.ModePostgres, false); err != nil {
		t.Fatal(err)
	}
	content := `{"base_url": "https://mb.example.com", "api_key": "mb_abcdefghijkl"}`
	if err := os.WriteFile(config.MetabaseFilePath(dir), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "--config-dir", dir, "conf", "list", "-m", "postgresql")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "default") || !strings.Contains(out, "localhost") {
		t.Errorf("expected the default profile, got %q", out)
	}

	out, err = execute(t, "--config-dir", dir, "conf", "list", "-m", "metabase")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "https://mb.example.com") || strings.Contains(out, "mb_abcdefghijkl") {
		t.Errorf("expected url in clear and key masked, got %q", out)
	}

	if _, err := execute(t, "--config-dir", dir, "conf", "list", "-m", "oracle"); !errors.Is(err, config.ErrUnknownMode) {
		t.Fatalf("expected ErrUnknownMode, got %v", err)
	}
}
