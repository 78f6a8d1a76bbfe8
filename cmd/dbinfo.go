// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sqlbind/internal/binding"
	"sqlbind/internal/dsn"
	"sqlbind/internal/settings"
)

var dbinfoName string

// dbinfoCmd shows which connection string a setting resolves to, with the
// password masked.
var dbinfoCmd = &cobra.Command{
	Use:   "dbinfo",
	Short: "Show the connection string a setting resolves to",
	Long: `dbinfo resolves --name through the environment, the config file and the OS
keychain, and shows the first match with its password replaced by ***.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		value, src, err := settingsChain().ResolveFrom(dbinfoName)
		if errors.Is(err, settings.ErrNotFound) {
			pterm.Printf("⚠️  No connection configured for %s\n", dbinfoName)
			pterm.Printf("   Run: sqlbind connect --name %s\n", dbinfoName)
			return nil
		}
		if err != nil {
			return err
		}

		pterm.Printf("Using %s from the %v\n", dbinfoName, src)
		pterm.Println()
		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Database Connection")).
			WithPadding(1).
			Println(fmt.Sprintf("%s\n\ntype: %s", dsn.Redact(value), dsn.Detect(value)))
		pterm.Println()
		pterm.Println("To update this connection, run: sqlbind connect")
		pterm.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbinfoCmd)
	dbinfoCmd.Flags().StringVar(&dbinfoName, "name", binding.DefaultConnection, "setting name to resolve")
}
