// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/canonical/utill/internal/strutil"
)

var randomCmd = &cobra.Command{
	Use:   "random",
	Short: "Generate a random string",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		length, _ := cmd.Flags().GetInt("length")
		alphanum, _ := cmd.Flags().GetBool("alphanum")

		s, err := strutil.Random(length, alphanum)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), s)
		return nil
	},
}

var uniqueCmd = &cobra.Command{
	Use:   "unique STRING...",
	Short: "Print unique values, one per line",
	RunE: func(cmd *cobra.Command, args []string) error {
		sorted, _ := cmd.Flags().GetBool("sort")

		for _, v := range strutil.Unique(args, sorted) {
			fmt.Fprintln(cmd.OutOrStdout(), v)
		}
		return nil
	},
}

func init() {
	randomCmd.Flags().IntP("length", "l", 32, "length of the string")
	randomCmd.Flags().BoolP("alphanum", "a", false, "only use letters and digits")
	uniqueCmd.Flags().BoolP("sort", "s", false, "sort the output")

	rootCmd.AddCommand(randomCmd, uniqueCmd)
}
