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
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "thornmark",
	Short: "thornmark CLI - identity, invitation, and thread operations",
	Long: `thornmark CLI provides tools for generating identities and
exchanging invitation-based message threads against a bbolt or
in-memory store, for manual testing and as a demonstration harness.

This tool supports:
- Identity generation, backup, and restore
- Invitation creation and reply
- Thread message append and reading
- Prometheus metrics serving`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: built-in defaults)")

	// Note: commands are registered in their respective files
	// - identity.go: identityCmd and its subcommands
	// - invite.go: inviteCmd
	// - reply.go: replyCmd
	// - append.go: appendCmd
	// - threads.go: threadsCmd
	// - serve.go: serveCmd
}
