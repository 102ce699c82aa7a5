// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/canonical/utill/internal/config"
	"github.com/canonical/utill/internal/strutil"
)

var confCmd = &cobra.Command{
	Use:   "conf",
	Short: "Configure utill",
}

var confInitCmd = &cobra.Command{
	Use:       "init {google-cloud|postgresql|metabase}",
	Short:     "Write a configuration template",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(config.ModeGoogleCloud), string(config.ModePostgres), string(config.ModeMetabase)},
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := configDir(cmd)
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")

		path, err := config.Init(dir, config.Mode(args[0]), force)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s, edit it before use\n", path)
		return nil
	},
}

var confListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configuration values, secrets are masked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := configDir(cmd)
		if err != nil {
			return err
		}
		module, _ := cmd.Flags().GetString("module")
		return runConfList(cmd.OutOrStdout(), dir, module)
	},
}

var confSetCmd = &cobra.Command{
	Use:   "set -e KEY=VALUE...",
	Short: "Set variables in the env file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := configDir(cmd)
		if err != nil {
			return err
		}
		pairs, _ := cmd.Flags().GetStringArray("env")

		vars, err := parseAssignments(pairs)
		if err != nil {
			return err
		}
		if err := config.SetEnvVars(config.EnvFilePath(dir), vars); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %d variable(s) in %s\n", len(vars), config.EnvFilePath(dir))
		return nil
	},
}

func init() {
	confInitCmd.Flags().Bool("force", false, "overwrite an existing file")
	confListCmd.Flags().StringP("module", "m", "", "list a module config instead of the env file (postgresql, metabase)")
	confSetCmd.Flags().StringArrayP("env", "e", nil, "variable to set as KEY=VALUE, repeatable")
	_ = confSetCmd.MarkFlagRequired("env")

	confCmd.AddCommand(confInitCmd, confListCmd, confSetCmd)
	rootCmd.AddCommand(confCmd)
}

func parseAssignments(pairs []string) (map[string]string, error) {
	vars := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid assignment %q, expected KEY=VALUE", p)
		}
		vars[k] = v
	}
	return vars, nil
}

func isSecret(key string) bool {
	key = strings.ToLower(key)
	for _, marker := range []string{"secret", "password", "key", "token"} {
		if strings.Contains(key, marker) {
			return true
		}
	}
	return false
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	return table
}

func runConfList(w io.Writer, dir, module string) error {
	switch config.Mode(module) {
	case "":
		env, err := config.ReadEnvFile(config.EnvFilePath(dir))
		if err != nil {
			return err
		}
		table := newTable(w, "Variable", "Value")
		for _, k := range slices.Sorted(maps.Keys(env)) {
			v := env[k]
			if isSecret(k) {
				v = strutil.Mask(v)
			}
			table.Append([]string{k, v})
		}
		table.Render()

	case config.ModePostgres:
		profiles, err := config.LoadPostgresProfiles(dir)
		if err != nil {
			return err
		}
		table := newTable(w, "Profile", "Host", "Port", "DB", "Username", "Tunnel")
		for _, name := range config.ProfileNames(profiles) {
			p := profiles[name]
			tunnel := "-"
			if p.UsesTunnel() {
				tunnel = fmt.Sprintf("%s@%s:%d", p.TunnelUsername, p.TunnelHost, p.TunnelPort)
			}
			table.Append([]string{name, p.Host, strconv.Itoa(p.Port), p.DB, p.Username, tunnel})
		}
		table.Render()

	case config.ModeMetabase:
		p, err := config.LoadMetabaseProfile(dir)
		if err != nil {
			return err
		}
		table := newTable(w, "Setting", "Value")
		table.Append([]string{"base_url", p.BaseURL})
		table.Append([]string{"api_key", strutil.Mask(p.APIKey)})
		table.Render()

	default:
		return fmt.Errorf("%w: %q", config.ErrUnknownMode, module)
	}
	return nil
}
