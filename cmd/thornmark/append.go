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
)

var (
	appendThumbprint string
	appendPassword   string
	appendJWS        string
	appendThread     string
)

var appendCmd = &cobra.Command{
	Use:   "append",
	Short: "Ingest a received message into its thread",
	Long: `append decrypts and verifies a received JWS and appends it to
its thread's message log. --thread disambiguates a subsequent message
that carries no embedded key; the first reply to an invitation
resolves its own thread and --thread may be omitted.`,
	Example: `  thornmark append --thumbprint <thumbprint> --jws <jws>`,
	RunE: runAppend,
}

func init() {
	rootCmd.AddCommand(appendCmd)

	appendCmd.Flags().StringVarP(&appendThumbprint, "thumbprint", "t", "", "identity thumbprint (required)")
	appendCmd.Flags().StringVarP(&appendPassword, "password", "p", "", "identity passphrase (default: from configured env var)")
	appendCmd.Flags().StringVar(&appendJWS, "jws", "", "received signed message (required)")
	appendCmd.Flags().StringVar(&appendThread, "thread", "", "thread thumbprint, required for messages without an embedded key")
}

func runAppend(cmd *cobra.Command, args []string) error {
	if appendThumbprint == "" {
		return fmt.Errorf("--thumbprint is required")
	}
	if appendJWS == "" {
		return fmt.Errorf("--jws is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pw, err := passphrase(cfg, appendPassword)
	if err != nil {
		return err
	}

	c, err := client.FromConfig(context.Background(), cfg, appendThumbprint, pw)
	if err != nil {
		return fmt.Errorf("load identity: %w", err)
	}
	defer c.Close()

	var threadPtr *string
	if appendThread != "" {
		threadPtr = &appendThread
	}

	result, err := c.AppendThread(context.Background(), appendJWS, threadPtr)
	if err != nil {
		return fmt.Errorf("append: %w", err)
	}

	fmt.Printf("Thread: %s\nMessage: %s\n", result.ThreadThumbprint, result.Message)
	return nil
}
