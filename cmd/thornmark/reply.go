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
	replyThumbprint string
	replyPassword   string
	replyInvite     string
	replyThread     string
	replyMessage    string
	replySelfSign   bool
)

var replyCmd = &cobra.Command{
	Use:   "reply",
	Short: "Reply to an invitation or continue an established thread",
	Long: `reply sends a message. With --invite, it replies to a
counterparty's invitation and starts a new thread. With --thread, it
sends a subsequent message on an already-established thread.`,
	Example: `  # Reply to an invitation, starting a new thread
  thornmark reply --thumbprint <thumbprint> --invite <jws> --message "hi"

  # Send a follow-up message on an existing thread
  thornmark reply --thumbprint <thumbprint> --thread <threadThumbprint> --message "hello again"`,
	RunE: runReply,
}

func init() {
	rootCmd.AddCommand(replyCmd)

	replyCmd.Flags().StringVarP(&replyThumbprint, "thumbprint", "t", "", "identity thumbprint (required)")
	replyCmd.Flags().StringVarP(&replyPassword, "password", "p", "", "identity passphrase (default: from configured env var)")
	replyCmd.Flags().StringVar(&replyInvite, "invite", "", "signed invitation JWS to reply to")
	replyCmd.Flags().StringVar(&replyThread, "thread", "", "thread thumbprint to send a follow-up message on")
	replyCmd.Flags().StringVarP(&replyMessage, "message", "m", "", "plaintext message to send (required)")
	replyCmd.Flags().BoolVar(&replySelfSign, "self-sign", false, "embed the sender's public key in this reply")
}

func runReply(cmd *cobra.Command, args []string) error {
	if replyThumbprint == "" {
		return fmt.Errorf("--thumbprint is required")
	}
	if replyMessage == "" {
		return fmt.Errorf("--message is required")
	}
	if (replyInvite == "") == (replyThread == "") {
		return fmt.Errorf("exactly one of --invite or --thread is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pw, err := passphrase(cfg, replyPassword)
	if err != nil {
		return err
	}

	c, err := client.FromConfig(context.Background(), cfg, replyThumbprint, pw)
	if err != nil {
		return fmt.Errorf("load identity: %w", err)
	}
	defer c.Close()

	ctx := context.Background()
	var compact string
	if replyInvite != "" {
		compact, err = c.ReplyToInvitation(ctx, replyInvite, []byte(replyMessage))
	} else {
		compact, err = c.ReplyToThread(ctx, replyThread, []byte(replyMessage), replySelfSign)
	}
	if err != nil {
		return fmt.Errorf("reply: %w", err)
	}

	fmt.Println(compact)
	return nil
}
