// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package config

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/kelseyhightower/envconfig"
)

// EnvSpec is the environment configuration shared by every command.
type EnvSpec struct {
	OtelGRPCEndpoint string `envconfig:"otel_grpc_endpoint"`
	OtelHTTPEndpoint string `envconfig:"otel_http_endpoint"`
	TracingEnabled   bool   `envconfig:"tracing_enabled" default:"false"`

	LogLevel string `envconfig:"log_level" default:"info"`

	// MetricsTextfile receives the collected metrics when a command exits.
	MetricsTextfile string `envconfig:"metrics_textfile"`

	ConfigDir string `envconfig:"utill_config_dir" default:""`

	GCPProjectID string `envconfig:"gcp_project_id"`
	GCPRegion    string `envconfig:"gcp_region"`

	GCSBucket    string `envconfig:"gcs_bucket"`
	GCSEndpoint  string `envconfig:"gcs_endpoint" default:"storage.googleapis.com"`
	GCSAccessKey string `envconfig:"gcs_hmac_access_key"`
	GCSSecretKey string `envconfig:"gcs_hmac_secret"`

	StagingQueueSize int    `envconfig:"staging_queue_size" default:"2"`
	UploadChunkSize  string `envconfig:"upload_chunk_size" default:"3GB"`
}

// ChunkSizeBytes parses UploadChunkSize, accepting human readable sizes such as "512MiB".
func (s *EnvSpec) ChunkSizeBytes() (uint64, error) {
	n, err := humanize.ParseBytes(s.UploadChunkSize)
	if err != nil {
		return 0, fmt.Errorf("invalid upload chunk size %q: %w", s.UploadChunkSize, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("upload chunk size must be positive")
	}
	return n, nil
}

// Dir returns the configuration directory, defaulting to ~/.utill.
func (s *EnvSpec) Dir() (string, error) {
	if s.ConfigDir != "" {
		return s.ConfigDir, nil
	}
	return DefaultDir()
}

// LoadEnvSpec reads the env file in dir (if any) and then processes the environment.
// Variables already present in the process environment win over the file.
func LoadEnvSpec(dir string) (*EnvSpec, error) {
	if err := LoadEnvFile(EnvFilePath(dir)); err != nil {
		return nil, err
	}

	specs := new(EnvSpec)
	if err := envconfig.Process("", specs); err != nil {
		return nil, fmt.Errorf("issues with environment sourcing: %w", err)
	}

	return specs, nil
}
