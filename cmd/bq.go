// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/canonical/utill/internal/bigquery"
)

var bqCmd = &cobra.Command{
	Use:   "bq",
	Short: "BigQuery utility",
}

var bqUploadCSVCmd = &cobra.Command{
	Use:   "upload-csv SRC TABLE -c NAME:TYPE...",
	Short: "Load a CSV file into a table through the staging bucket",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		specs, _ := cmd.Flags().GetStringArray("column")
		partition, _ := cmd.Flags().GetString("partition-col")
		cluster, _ := cmd.Flags().GetStringArray("cluster-col")
		overwrite, _ := cmd.Flags().GetBool("overwrite")

		columns, err := parseColumnSpecs(specs)
		if err != nil {
			return err
		}

		return withWarehouse(cmd, func(wh bigquery.ClientInterface) error {
			_, err := wh.UploadCSV(cmd.Context(), args[0], args[1], bigquery.UploadOptions{
				Columns:     columns,
				PartitionBy: partition,
				ClusterBy:   cluster,
				Overwrite:   overwrite,
			})
			return err
		})
	},
}

var bqDownloadTableCmd = &cobra.Command{
	Use:   "download-table TABLE DST",
	Short: "Download a table into a CSV file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWarehouse(cmd, func(wh bigquery.ClientInterface) error {
			return wh.DownloadTable(cmd.Context(), args[0], args[1])
		})
	},
}

var bqQueryCmd = &cobra.Command{
	Use:   "query [SQL...]",
	Short: "Run statements as a single script",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")

		statements := args
		if file != "" {
			content, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			statements = append(statements, string(content))
		}
		if len(statements) == 0 {
			return fmt.Errorf("no statement given")
		}

		return withWarehouse(cmd, func(wh bigquery.ClientInterface) error {
			_, err := wh.ExecuteQuery(cmd.Context(), statements, nil)
			return err
		})
	},
}

var bqDropTableCmd = &cobra.Command{
	Use:   "drop-table TABLE...",
	Short: "Drop tables, missing ones are ignored",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWarehouse(cmd, func(wh bigquery.ClientInterface) error {
			for _, table := range args {
				if err := wh.DropTable(cmd.Context(), table); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

func init() {
	bqUploadCSVCmd.Flags().StringArrayP("column", "c", nil, "column as NAME:TYPE, repeatable and ordered like the file")
	bqUploadCSVCmd.Flags().String("partition-col", "", "partition expression")
	bqUploadCSVCmd.Flags().StringArray("cluster-col", nil, "cluster column, repeatable")
	bqUploadCSVCmd.Flags().Bool("overwrite", false, "replace the table content")
	_ = bqUploadCSVCmd.MarkFlagRequired("column")

	bqQueryCmd.Flags().StringP("file", "f", "", "read the script from a file")

	bqCmd.PersistentFlags().String("project", "", "billing project, defaults to GCP_PROJECT_ID")
	bqCmd.AddCommand(bqUploadCSVCmd, bqDownloadTableCmd, bqQueryCmd, bqDropTableCmd)
	rootCmd.AddCommand(bqCmd)
}

func parseColumnSpecs(specs []string) ([]bigquery.Column, error) {
	pairs := make([]string, 0, len(specs)*2)
	for _, s := range specs {
		name, typ, ok := strings.Cut(s, ":")
		if !ok {
			return nil, fmt.Errorf("%w: %q, expected NAME:TYPE", bigquery.ErrInvalidColumn, s)
		}
		pairs = append(pairs, strings.TrimSpace(name), strings.TrimSpace(typ))
	}
	return bigquery.ParseColumns(pairs)
}

func withWarehouse(cmd *cobra.Command, fn func(bigquery.ClientInterface) error) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close(cmd.Context())

	project, _ := cmd.Flags().GetString("project")
	wh, err := newWarehouse(cmd.Context(), a, project)
	if err != nil {
		return err
	}
	defer wh.Close()

	return fn(wh)
}
