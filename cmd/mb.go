// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/canonical/utill/pkg/access"
)

var mbCmd = &cobra.Command{
	Use:   "mb",
	Short: "Metabase utility commands",
}

var mbGrantCmd = &cobra.Command{
	Use:   "grant -u EMAIL... -l URL...",
	Short: "Grant read access to Metabase questions, dashboards or collections",
	Long: `Grant read access to the collection owning each object.

A group named after the collection path is created and given read access
when missing, then every user is added to it. With -c, unknown users are
created and deactivated users are reactivated.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		emails, _ := cmd.Flags().GetStringArray("email")
		urls, _ := cmd.Flags().GetStringArray("url")
		create, _ := cmd.Flags().GetBool("create")

		return withAccessService(cmd, func(ctx context.Context, svc access.ServiceInterface) error {
			for _, u := range urls {
				if err := svc.GrantAccess(ctx, u, emails, create); err != nil {
					return fmt.Errorf("grant on %s failed: %w", u, err)
				}
			}
			return nil
		})
	},
}

var mbCopyPermissionsCmd = &cobra.Command{
	Use:   "copy-permissions SRC_EMAIL DST_EMAIL...",
	Short: "Copy every group membership of a user to other users",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAccessService(cmd, func(ctx context.Context, svc access.ServiceInterface) error {
			return svc.MirrorPermissions(ctx, args[0], args[1:])
		})
	},
}

var mbResetPasswordCmd = &cobra.Command{
	Use:   "reset-password -u EMAIL...",
	Short: "Send a password reset email to users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		emails, _ := cmd.Flags().GetStringArray("email")
		return withAccessService(cmd, func(ctx context.Context, svc access.ServiceInterface) error {
			return svc.ResetPassword(ctx, emails)
		})
	},
}

var mbDisableUserCmd = &cobra.Command{
	Use:   "disable-user -u EMAIL...",
	Short: "Deactivate users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		emails, _ := cmd.Flags().GetStringArray("email")
		return withAccessService(cmd, func(ctx context.Context, svc access.ServiceInterface) error {
			return svc.DisableUsers(ctx, emails)
		})
	},
}

var mbDeleteGroupCmd = &cobra.Command{
	Use:   "delete-group NAME",
	Short: "Delete a permission group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAccessService(cmd, func(ctx context.Context, svc access.ServiceInterface) error {
			return svc.DeleteGroup(ctx, args[0])
		})
	},
}

var mbDownloadQuestionCmd = &cobra.Command{
	Use:   "download-question URL DST",
	Short: "Download the results of a question as CSV",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAccessService(cmd, func(ctx context.Context, svc access.ServiceInterface) (err error) {
			f, err := os.Create(args[1])
			if err != nil {
				return err
			}
			defer func() {
				err = errors.Join(err, f.Close())
				if err != nil {
					_ = os.Remove(args[1])
				}
			}()

			n, err := svc.DownloadQuestion(ctx, args[0], f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d bytes to %s\n", n, args[1])
			return nil
		})
	},
}

var mbArchiveQuestionCmd = &cobra.Command{
	Use:   "archive-question URL",
	Short: "Move a question to the trash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAccessService(cmd, func(ctx context.Context, svc access.ServiceInterface) error {
			return svc.ArchiveQuestion(ctx, args[0])
		})
	},
}

func init() {
	mbGrantCmd.Flags().StringArrayP("email", "u", nil, "user email, repeatable")
	mbGrantCmd.Flags().StringArrayP("url", "l", nil, "question, dashboard or collection url, repeatable")
	mbGrantCmd.Flags().BoolP("create", "c", false, "create missing users and reactivate deactivated ones")
	_ = mbGrantCmd.MarkFlagRequired("email")
	_ = mbGrantCmd.MarkFlagRequired("url")

	for _, c := range []*cobra.Command{mbResetPasswordCmd, mbDisableUserCmd} {
		c.Flags().StringArrayP("email", "u", nil, "user email, repeatable")
		_ = c.MarkFlagRequired("email")
	}

	mbCmd.AddCommand(
		mbGrantCmd,
		mbCopyPermissionsCmd,
		mbResetPasswordCmd,
		mbDisableUserCmd,
		mbDeleteGroupCmd,
		mbDownloadQuestionCmd,
		mbArchiveQuestionCmd,
	)
	rootCmd.AddCommand(mbCmd)
}

func withAccessService(cmd *cobra.Command, fn func(context.Context, access.ServiceInterface) error) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close(cmd.Context())

	svc, err := newAccessService(cmd.Context(), a)
	if err != nil {
		return err
	}

	if err := fn(cmd.Context(), svc); err != nil {
		var ae *access.AccessError
		if errors.As(err, &ae) && len(ae.Emails()) > 0 {
			a.logger.Errorf("Unknown users: %v", ae.Emails())
		}
		return err
	}
	return nil
}
