// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "utill",
	Short:         "utill bundles day to day data platform chores",
	Long:          `Operational helpers for Metabase, BigQuery, Google Cloud Storage and PostgreSQL.`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "log level, overrides LOG_LEVEL")
	rootCmd.PersistentFlags().String("config-dir", "", "configuration directory, defaults to UTILL_CONFIG_DIR or ~/.utill")
}

// Execute runs the command line, cancelling the running command on SIGINT or SIGTERM.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		os.Exit(1)
	}
}
