// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zapcore.Level
	}{
		{input: "debug", want: zap.DebugLevel},
		{input: "DEBUG", want: zap.DebugLevel},
		{input: "warning", want: zap.WarnLevel},
		{input: "error", want: zap.ErrorLevel},
		{input: "info", want: zap.InfoLevel},
		{input: "nonsense", want: zap.InfoLevel},
		{input: "", want: zap.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := logLevel(tt.input); got != tt.want {
				t.Errorf("logLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewLoggerEnablesConfiguredLevel(t *testing.T) {
	l := NewLogger("warn")
	defer l.Sync()

	if l.Desugar().Core().Enabled(zap.InfoLevel) {
		t.Fatal("expected info to be disabled at warn level")
	}
	if !l.Desugar().Core().Enabled(zap.ErrorLevel) {
		t.Fatal("expected error to be enabled at warn level")
	}
}
