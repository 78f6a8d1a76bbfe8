// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the sqlbind command-line interface: the book service,
// ad-hoc queries and inserts through the binding layer, and management of
// named connection settings.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sqlbind/internal/config"
	"sqlbind/internal/keychain"
	"sqlbind/internal/logging"
	"sqlbind/internal/settings"
)

var (
	cfgFile     string
	showVersion bool

	appCfg *config.Config
	logger = logging.Discard()
)

var rootCmd = &cobra.Command{
	Use:   "sqlbind",
	Short: "Bind database tables to functions as inputs and outputs",
	Long: `sqlbind runs SQL input bindings (query results as tables or JSON text) and
output bindings (bulk inserts from tables or JSON text) against PostgreSQL,
MySQL and SQLite. Connection strings are named settings resolved from the
environment, the config file or the OS keychain.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		appCfg = cfg
		logger = logging.New(os.Stderr, cfg.LogLevel)
		if cfg.File != "" {
			logger.Debug("config loaded", "file", cfg.File)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("sqlbind %s\n", Version)
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, logging.Mask(err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $XDG_CONFIG_HOME/sqlbind/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show version information")
}

// settingsChain resolves settings from the environment, the config file and,
// when available, the OS keychain.
func settingsChain() settings.Chain {
	chain := settings.Chain{settings.Env{}, settings.Map(appCfg.Settings)}
	store, err := keychain.Open()
	if err != nil {
		logger.Debug("keychain unavailable", "err", err)
		return chain
	}
	return append(chain, store)
}

