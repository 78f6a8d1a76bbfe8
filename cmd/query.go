// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sqlbind/internal/autoresolve"
	"sqlbind/internal/binding"
	"sqlbind/internal/convert"
	"sqlbind/internal/dbconn"
	apperrors "sqlbind/internal/errors"
	"sqlbind/internal/logging"
	"sqlbind/internal/settings"
	"sqlbind/internal/table"
)

var (
	queryConnection string
	querySQL        string
	queryParams     []string
	queryJSON       bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run a query through an input binding",
	Long: `query expands {name} placeholders from --param values and %name% from
settings, runs the result against the named connection and prints the rows.

A literal percent sign must be written as a character-code call, for example
char(37) on SQLite or chr(37) on PostgreSQL.`,
	Example: `  sqlbind query --sql "SELECT * FROM Book WHERE Author LIKE char(37) || '{a}' || char(37)" --param a=Sheffield`,
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := parseParams(queryParams)
		if err != nil {
			return err
		}
		chain := settingsChain()
		sqlText, err := autoresolve.Expand(querySQL, params, settingLookup(chain))
		if err != nil {
			return fmt.Errorf("expand query: %w", err)
		}

		router := dbconn.NewRouter(chain, dbconn.WithLogger(logger))
		bindings := binding.NewResolver(router, convert.Default(), logger)
		d := binding.Descriptor{Connection: queryConnection, Query: sqlText}

		stopSpinner := startInlineSpinner("running query")
		if queryJSON {
			text, err := bindings.Text(cmd.Context(), d)
			stopSpinner()
			if err != nil {
				return reportBindingError("running query", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		}

		t, err := bindings.Table(cmd.Context(), d)
		stopSpinner()
		if err != nil {
			return reportBindingError("running query", err)
		}
		if t.Len() == 0 {
			pterm.Println("No rows.")
			return nil
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(tableData(t)).Render(); err != nil {
			return err
		}
		pterm.Printf("%d row(s)\n", t.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVar(&queryConnection, "connection", binding.DefaultConnection, "setting holding the connection string")
	queryCmd.Flags().StringVar(&querySQL, "sql", "", "query text (required)")
	queryCmd.Flags().StringArrayVar(&queryParams, "param", nil, "placeholder value as name=value (repeatable)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "print the result as JSON text")
	_ = queryCmd.MarkFlagRequired("sql")
}

func parseParams(pairs []string) (map[string]string, error) {
	params := make(map[string]string, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid --param %q, want name=value", p)
		}
		params[strings.TrimSpace(name)] = value
	}
	return params, nil
}

func settingLookup(r settings.Resolver) autoresolve.Settings {
	return func(name string) (string, bool) {
		v, err := r.Resolve(name)
		return v, err == nil
	}
}

// tableData renders t as header + rows for pterm. Nulls show as NULL.
func tableData(t *table.Table) pterm.TableData {
	data := pterm.TableData{t.Columns()}
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		cells := make([]string, len(row))
		for c, v := range row {
			cells[c] = v.String()
		}
		data = append(data, cells)
	}
	return data
}

// reportBindingError prints connection failures with a hint and returns a
// masked error for the exit status.
func reportBindingError(context string, err error) error {
	if apperrors.Is(err, apperrors.ConnectionFailed) {
		logging.ShowConnectionError(context, err)
	}
	return errors.New(logging.PresentError(context, err))
}
