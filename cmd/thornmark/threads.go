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
	threadsThumbprint string
	threadsPassword   string
)

var threadsCmd = &cobra.Command{
	Use:   "threads",
	Short: "List the threads an identity has registered",
	RunE:  runThreads,
}

func init() {
	rootCmd.AddCommand(threadsCmd)

	threadsCmd.Flags().StringVarP(&threadsThumbprint, "thumbprint", "t", "", "identity thumbprint (required)")
	threadsCmd.Flags().StringVarP(&threadsPassword, "password", "p", "", "identity passphrase (default: from configured env var)")
}

func runThreads(cmd *cobra.Command, args []string) error {
	if threadsThumbprint == "" {
		return fmt.Errorf("--thumbprint is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pw, err := passphrase(cfg, threadsPassword)
	if err != nil {
		return err
	}

	c, err := client.FromConfig(context.Background(), cfg, threadsThumbprint, pw)
	if err != nil {
		return fmt.Errorf("load identity: %w", err)
	}
	defer c.Close()

	threads, err := c.Threads(context.Background())
	if err != nil {
		return fmt.Errorf("list threads: %w", err)
	}

	if len(threads) == 0 {
		fmt.Println("no threads")
		return nil
	}
	for _, thumbprint := range threads {
		fmt.Println(thumbprint)
	}
	return nil
}
