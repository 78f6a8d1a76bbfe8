// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sqlbind/internal/binding"
	"sqlbind/internal/books"
	"sqlbind/internal/convert"
	"sqlbind/internal/dbconn"
	"sqlbind/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the book service",
	Long: `serve starts the HTTP book API (/api/addbook, /api/addbooks, /api/author,
/api/title) and a gRPC health endpoint. Every request is served through the
binding layer against the connection named by books.connection.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		chain := settingsChain()
		router := dbconn.NewRouter(chain, dbconn.WithLogger(logger))
		bindings := binding.NewResolver(router, convert.Default(), logger)
		svc := books.New(bindings, chain, appCfg.Books, logger)
		locator := binding.Descriptor{Connection: appCfg.Books.Connection}.Locator()

		srv := server.New(server.Config{
			HTTPAddr: appCfg.HTTPAddr,
			GRPCAddr: appCfg.GRPCAddr,
			Routes:   svc,
			Probe: func(ctx context.Context) error {
				ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
				defer cancel()
				return router.Ping(ctx, locator)
			},
			Logger: logger,
		})

		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("sqlbind serve")).
			WithPadding(1).
			Println(fmt.Sprintf("HTTP    %s\ngRPC    %s\nTable   %s\nSetting %s",
				appCfg.HTTPAddr, orDash(appCfg.GRPCAddr), appCfg.Books.Table, locator))

		return srv.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("http-addr", ":8080", "HTTP listen address")
	serveCmd.Flags().String("grpc-addr", ":9090", "gRPC health listen address; empty disables it")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
