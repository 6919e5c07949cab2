// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rush Platform Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/rushplatform/rush/internal/xdg"
)

// Global flags available to all subcommands.
var configFile string

// resolveConfigFile returns the --config value, falling back to the
// XDG default config file when the flag was not given.
func resolveConfigFile() string {
	if configFile != "" {
		return configFile
	}
	return xdg.DefaultConfigFile()
}

// NewRootCmd creates the root command for the rushd CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rushd",
		Short: "Rush - a multi-tenant application platform",
		Long: `Rushd is the control plane of the Rush platform. It provisions
accounts, confirms email addresses, issues sessions, and manages
named instances in the control-plane namespace.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
