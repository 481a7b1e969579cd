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
	"thornmark/thread"
)

var (
	inviteThumbprint string
	invitePassword   string
	inviteNote       string
	inviteNickname   string
)

var inviteCmd = &cobra.Command{
	Use:   "invite",
	Short: "Create a signed invitation for an identity",
	Example: `  thornmark invite --thumbprint <thumbprint> --nickname alice`,
	RunE: runInvite,
}

func init() {
	rootCmd.AddCommand(inviteCmd)

	inviteCmd.Flags().StringVarP(&inviteThumbprint, "thumbprint", "t", "", "identity thumbprint (required)")
	inviteCmd.Flags().StringVarP(&invitePassword, "password", "p", "", "identity passphrase (default: from configured env var)")
	inviteCmd.Flags().StringVar(&inviteNote, "note", "", "optional note to attach to the invitation")
	inviteCmd.Flags().StringVar(&inviteNickname, "nickname", "", "optional nickname to attach to the invitation")
}

func runInvite(cmd *cobra.Command, args []string) error {
	if inviteThumbprint == "" {
		return fmt.Errorf("--thumbprint is required")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pw, err := passphrase(cfg, invitePassword)
	if err != nil {
		return err
	}

	c, err := client.FromConfig(context.Background(), cfg, inviteThumbprint, pw)
	if err != nil {
		return fmt.Errorf("load identity: %w", err)
	}
	defer c.Close()

	compact, err := c.CreateInvitation(context.Background(), thread.InvitationOptions{
		Note:     inviteNote,
		Nickname: inviteNickname,
	})
	if err != nil {
		return fmt.Errorf("create invitation: %w", err)
	}

	fmt.Println(compact)
	return nil
}
