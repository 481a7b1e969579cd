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
	"net/http"

	"github.com/spf13/cobra"

	"thornmark/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve Prometheus metrics over HTTP",
	Long:  `serve starts an HTTP server exposing thornmark's Prometheus metrics at the configured address and path, blocking until the process exits.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Metrics.Enabled {
		fmt.Println("metrics disabled in config; nothing to serve")
		return nil
	}
	fmt.Printf("serving metrics on %s%s\n", cfg.Metrics.Addr, cfg.Metrics.Path)
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, telemetry.Handler())
	return http.ListenAndServe(cfg.Metrics.Addr, mux)
}
