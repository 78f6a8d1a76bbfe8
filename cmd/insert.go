// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sqlbind/internal/binding"
	"sqlbind/internal/convert"
	"sqlbind/internal/dbconn"
	apperrors "sqlbind/internal/errors"
	"sqlbind/internal/logging"
)

var (
	insertConnection string
	insertTable      string
	insertFile       string
)

var insertCmd = &cobra.Command{
	Use:   "insert",
	Short: "Bulk insert JSON rows through an output binding",
	Long: `insert reads a JSON array of flat objects from --file (or stdin with -) and
copies every row into --table in one bulk operation. Object keys are column
names; keys missing from an object insert NULL.`,
	Example: `  echo '[{"Title":"Emma","Author":"Jane Austen"}]' | sqlbind insert --table Book`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd.InOrStdin(), insertFile)
		if err != nil {
			return err
		}

		router := dbconn.NewRouter(settingsChain(), dbconn.WithLogger(logger))
		bindings := binding.NewResolver(router, convert.Default(), logger)
		c, err := bindings.TextCollector(binding.Descriptor{Connection: insertConnection, Table: insertTable})
		if err != nil {
			return err
		}

		stopSpinner := startInlineSpinner("inserting rows into " + insertTable)
		err = c.Add(cmd.Context(), text)
		stopSpinner()
		if err != nil {
			if apperrors.Is(err, apperrors.DecodeFailed) {
				pterm.Println("❌ The input is not a JSON array of flat objects.")
				return errors.New(logging.PresentError("decode input", err))
			}
			return reportBindingError("inserting rows", err)
		}
		if err := c.Flush(cmd.Context()); err != nil {
			return err
		}
		pterm.Printf("✅ Rows inserted into %s\n", insertTable)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(insertCmd)
	insertCmd.Flags().StringVar(&insertConnection, "connection", binding.DefaultConnection, "setting holding the connection string")
	insertCmd.Flags().StringVar(&insertTable, "table", "", "destination table (required)")
	insertCmd.Flags().StringVar(&insertFile, "file", "-", "JSON file to read, - for stdin")
	_ = insertCmd.MarkFlagRequired("table")
}

func readInput(stdin io.Reader, path string) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == "" || path == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(b), nil
}
