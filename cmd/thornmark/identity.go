// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"thornmark/client"
	"thornmark/identity"
)

var (
	identityPassword    string
	identityThumbprint  string
	identityBackupInput string
)

var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Generate, load, and back up identities",
}

var identityGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new identity and store it",
	Example: `  # Generate an identity in the configured store
  thornmark identity generate --password hunter2`,
	RunE: runIdentityGenerate,
}

var identityBackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Re-wrap an identity under its passphrase and print a signed backup",
	RunE:  runIdentityBackup,
}

var identityRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore an identity from a signed backup and print its thumbprint",
	RunE:  runIdentityRestore,
}

func init() {
	rootCmd.AddCommand(identityCmd)
	identityCmd.AddCommand(identityGenerateCmd)
	identityCmd.AddCommand(identityBackupCmd)
	identityCmd.AddCommand(identityRestoreCmd)

	identityCmd.PersistentFlags().StringVarP(&identityPassword, "password", "p", "", "identity passphrase (default: from configured env var)")
	identityBackupCmd.Flags().StringVarP(&identityThumbprint, "thumbprint", "t", "", "identity thumbprint to back up (required)")
	identityRestoreCmd.Flags().StringVarP(&identityBackupInput, "backup", "b", "", "signed backup JWS (required)")
}

func runIdentityGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pw, err := passphrase(cfg, identityPassword)
	if err != nil {
		return err
	}

	c, err := client.FromConfig(context.Background(), cfg, "", pw)
	if err != nil {
		return fmt.Errorf("generate identity: %w", err)
	}
	defer c.Close()

	fmt.Printf("Identity generated:\n  Thumbprint: %s\n", c.Thumbprint())
	return nil
}

func runIdentityBackup(cmd *cobra.Command, args []string) error {
	if identityThumbprint == "" {
		return fmt.Errorf("--thumbprint is required")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pw, err := passphrase(cfg, identityPassword)
	if err != nil {
		return err
	}

	c, err := client.FromConfig(context.Background(), cfg, identityThumbprint, pw)
	if err != nil {
		return fmt.Errorf("load identity: %w", err)
	}
	defer c.Close()

	backup, err := c.MakeBackup(pw)
	if err != nil {
		return fmt.Errorf("make backup: %w", err)
	}
	fmt.Println(backup)
	return nil
}

func runIdentityRestore(cmd *cobra.Command, args []string) error {
	if identityBackupInput == "" {
		return fmt.Errorf("--backup is required")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pw, err := passphrase(cfg, identityPassword)
	if err != nil {
		return err
	}

	mgr, err := identity.RestoreBackup(identityBackupInput, pw)
	if err != nil {
		return fmt.Errorf("restore backup: %w", err)
	}
	defer mgr.Close()

	fmt.Printf("Identity restored:\n  Thumbprint: %s\n", mgr.Thumbprint)
	return nil
}
