// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package collector implements the output side of a binding. A collector is
// handed to a bound function, which stages rows through Add. Every Add that
// carries rows is an immediate, independent bulk copy: one connection, one
// round trip, closed before Add returns. Nothing is buffered across calls,
// so Flush has no I/O to do.
package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"sqlbind/internal/convert"
	"sqlbind/internal/dbconn"
	apperrors "sqlbind/internal/errors"
	"sqlbind/internal/logging"
	"sqlbind/internal/table"
)

// ErrCompleted is returned by Add after Flush.
var ErrCompleted = errors.New("collector: already completed")

// Collector stages values of type T into a target table.
type Collector[T any] interface {
	Add(ctx context.Context, item T) error
	Flush(ctx context.Context) error
}

// Table stages *table.Table values.
type Table struct {
	dialer  dbconn.Dialer
	locator string
	target  string
	logger  *slog.Logger
	done    atomic.Bool
}

var _ Collector[*table.Table] = (*Table)(nil)

// NewTable returns a collector copying into target on the database named by
// locator.
func NewTable(dialer dbconn.Dialer, locator, target string, logger *slog.Logger) *Table {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Table{dialer: dialer, locator: locator, target: target, logger: logger}
}

// Target returns the destination table name.
func (c *Table) Target() string { return c.target }

// Add copies every row of t to the target table. A nil or empty table is a
// no-op that never opens a connection. Cancellation of ctx is honored while
// connecting; once the copy has been sent it runs to completion.
func (c *Table) Add(ctx context.Context, t *table.Table) error {
	if c.done.Load() {
		return ErrCompleted
	}
	if t.Len() == 0 {
		return nil
	}

	conn, err := c.dialer.Dial(ctx, c.locator)
	if err != nil {
		return apperrors.Ensure(apperrors.ConnectionFailed, "open connection", err)
	}
	uncancelled := context.WithoutCancel(ctx)
	defer func() {
		if err := conn.Close(uncancelled); err != nil {
			c.logger.Warn("close connection", "err", err)
		}
	}()

	n, err := conn.CopyFrom(uncancelled, c.target, t)
	if err != nil {
		c.logger.Debug("bulk copy failed", "target", c.target, "rows", t.Len(), "err", err)
		return apperrors.Wrap(apperrors.BulkInsertFailed, fmt.Sprintf("copy %d rows into %s", t.Len(), c.target), err)
	}
	c.logger.Debug("bulk copy complete", "target", c.target, "rows", n)
	return nil
}

// Flush marks the collector complete. Rows were already committed by Add.
func (c *Table) Flush(context.Context) error {
	c.done.Store(true)
	return nil
}

// Text stages JSON row arrays. Each Add decodes its text and then behaves
// like Table.Add.
type Text struct {
	rows       *Table
	converters *convert.Registry
}

var _ Collector[string] = (*Text)(nil)

// NewText returns a collector decoding through converters.
func NewText(dialer dbconn.Dialer, converters *convert.Registry, locator, target string, logger *slog.Logger) *Text {
	return &Text{rows: NewTable(dialer, locator, target, logger), converters: converters}
}

// Target returns the destination table name.
func (c *Text) Target() string { return c.rows.target }

// Add decodes text into a table and copies it. Text that does not decode
// fails without opening a connection; an empty array is a no-op.
func (c *Text) Add(ctx context.Context, text string) error {
	if c.rows.done.Load() {
		return ErrCompleted
	}
	t, err := c.converters.TextToTable(text)
	if err != nil {
		return err
	}
	t.Name = c.rows.target
	return c.rows.Add(ctx, t)
}

// Flush marks the collector complete.
func (c *Text) Flush(ctx context.Context) error {
	return c.rows.Flush(ctx)
}
