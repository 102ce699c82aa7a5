// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/canonical/utill/internal/encryption"
)

var encCmd = &cobra.Command{
	Use:   "enc",
	Short: "Encryption utility",
}

var encEncryptCmd = &cobra.Command{
	Use:   "encrypt SRC -p PASSWORD",
	Short: "Encrypt a file, or SRC itself when it is not a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEnc(cmd, args[0], true)
	},
}

var encDecryptCmd = &cobra.Command{
	Use:   "decrypt SRC -p PASSWORD",
	Short: "Decrypt a file, or SRC itself when it is not a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEnc(cmd, args[0], false)
	},
}

func init() {
	for _, c := range []*cobra.Command{encEncryptCmd, encDecryptCmd} {
		c.Flags().StringP("password", "p", "", "password, or a file holding it")
		c.Flags().StringP("output", "o", "", "write into this file instead of stdout")
		c.Flags().BoolP("force", "f", false, "overwrite the output file")
		_ = c.MarkFlagRequired("password")
	}

	encCmd.AddCommand(encEncryptCmd, encDecryptCmd)
	rootCmd.AddCommand(encCmd)
}

// readSecret returns the content of value when it names a file, value otherwise.
func readSecret(value string) (string, bool, error) {
	info, err := os.Stat(value)
	if err != nil {
		// tokens are not valid paths, often too long to be one
		return value, false, nil
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("%s is a directory", value)
	}
	content, err := os.ReadFile(value)
	if err != nil {
		return "", false, err
	}
	return string(content), true, nil
}

func runEnc(cmd *cobra.Command, src string, encrypt bool) error {
	passwordFlag, _ := cmd.Flags().GetString("password")
	output, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")

	password, _, err := readSecret(passwordFlag)
	if err != nil {
		return err
	}
	password = strings.TrimSpace(password)

	input, isFile, err := readSecret(src)
	if err != nil {
		return err
	}

	if isFile && output != "" {
		if encrypt {
			err = encryption.EncryptFile(src, output, password, force)
		} else {
			err = encryption.DecryptFile(src, output, password, force)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", output)
		return nil
	}

	var result string
	if encrypt {
		result, err = encryption.EncryptString(input, password)
	} else {
		result, err = encryption.DecryptString(input, password)
	}
	if err != nil {
		return err
	}

	if output != "" {
		flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		if !force {
			flags |= os.O_EXCL
		}
		f, err := os.OpenFile(output, flags, 0o600)
		if err != nil {
			if errors.Is(err, fs.ErrExist) {
				return fmt.Errorf("%w: %s", encryption.ErrDestinationExists, output)
			}
			return err
		}
		_, err = fmt.Fprintln(f, result)
		return errors.Join(err, f.Close())
	}

	fmt.Fprintln(cmd.OutOrStdout(), result)
	return nil
}
