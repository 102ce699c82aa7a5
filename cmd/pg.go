// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/canonical/utill/internal/storage"
)

var pgCmd = &cobra.Command{
	Use:   "pg",
	Short: "PostgreSQL utility",
}

var pgToPgCmd = &cobra.Command{
	Use:   "pg-to-pg SRC_PROFILE SRC_TABLE DST_PROFILE DST_TABLE",
	Short: "Copy a table from one PostgreSQL instance to another",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close(cmd.Context())

		ctx := cmd.Context()
		columns, _ := cmd.Flags().GetString("columns")
		chunk, queue, err := a.stagingConfig()
		if err != nil {
			return err
		}

		src, closeSrc, err := openPostgres(ctx, a, args[0])
		if err != nil {
			return err
		}
		defer closeSrc()

		dst, closeDst, err := openPostgres(ctx, a, args[2])
		if err != nil {
			return err
		}
		defer closeDst()

		n, err := src.CopyTable(ctx, dst, args[1], args[3], storage.CopyOptions{
			Columns:   parseColumnList(columns),
			ChunkSize: chunk,
			QueueSize: queue,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Copied %d row(s) from %s:%s to %s:%s\n", n, args[0], args[1], args[2], args[3])
		return nil
	},
}

var pgUploadCSVCmd = &cobra.Command{
	Use:   "upload-csv PROFILE SRC TABLE",
	Short: "Load a CSV file into an existing table",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close(cmd.Context())

		s, closeFn, err := openPostgres(cmd.Context(), a, args[0])
		if err != nil {
			return err
		}
		defer closeFn()

		n, err := s.UploadCSV(cmd.Context(), args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d row(s) into %s\n", n, args[2])
		return nil
	},
}

var pgDownloadCSVCmd = &cobra.Command{
	Use:   "download-csv PROFILE QUERY DST",
	Short: "Export the result of a query to a CSV file",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close(cmd.Context())

		s, closeFn, err := openPostgres(cmd.Context(), a, args[0])
		if err != nil {
			return err
		}
		defer closeFn()

		n, err := s.DownloadCSV(cmd.Context(), args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d row(s) to %s\n", n, args[2])
		return nil
	},
}

func init() {
	pgToPgCmd.Flags().StringP("columns", "c", "*", "comma separated columns to copy")

	pgCmd.AddCommand(pgToPgCmd, pgUploadCSVCmd, pgDownloadCSVCmd)
	rootCmd.AddCommand(pgCmd)
}

// parseColumnList turns "a, b" into its names; "*" or an empty value selects every column.
func parseColumnList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return nil
	}
	columns := make([]string, 0)
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			columns = append(columns, c)
		}
	}
	return columns
}
