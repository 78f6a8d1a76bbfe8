// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package sqlexec runs the query of an input binding.
//
// Each Execute opens one connection, sends the query text exactly as given,
// materializes the complete result and closes the connection before
// returning. The query text is never rewritten: placeholder expansion and
// percent escaping are settled before it arrives here.
package sqlexec

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"sqlbind/internal/dbconn"
	apperrors "sqlbind/internal/errors"
	"sqlbind/internal/logging"
	"sqlbind/internal/table"
)

// Executor executes input-binding queries.
type Executor struct {
	dialer dbconn.Dialer
	logger *slog.Logger
}

// New creates an Executor. A nil logger discards.
func New(dialer dbconn.Dialer, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Executor{dialer: dialer, logger: logger}
}

// Execute runs query against the database named by locator. The returned
// table is never nil; a query matching nothing yields zero rows.
func (e *Executor) Execute(ctx context.Context, locator, query string) (*table.Table, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperrors.New(apperrors.QueryFailed, "query text is empty")
	}

	conn, err := e.dialer.Dial(ctx, locator)
	if err != nil {
		return nil, apperrors.Ensure(apperrors.ConnectionFailed, "open connection", err)
	}
	defer func() {
		if err := conn.Close(context.WithoutCancel(ctx)); err != nil {
			e.logger.Warn("close connection", "err", err)
		}
	}()

	start := time.Now()
	t, err := conn.Query(ctx, query)
	if err != nil {
		e.logger.Debug("query failed", "locator", locator, "err", err)
		return nil, apperrors.Wrap(apperrors.QueryFailed, "execute query", err)
	}
	if t == nil {
		t, _ = table.New()
	}
	e.logger.Debug("query complete", "locator", locator, "rows", t.Len(), "elapsed", time.Since(start))
	return t, nil
}
