// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package dbconn opens single database connections for the binding layer.
// Each Conn serves one query or one bulk copy and is closed by its caller;
// pooling is left to the drivers.
package dbconn

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"sqlbind/internal/dsn"
	apperrors "sqlbind/internal/errors"
	"sqlbind/internal/logging"
	"sqlbind/internal/settings"
	"sqlbind/internal/table"
)

// Conn is one open database connection.
type Conn interface {
	// Query runs query in a single round trip and materializes every row.
	Query(ctx context.Context, query string) (*table.Table, error)
	// CopyFrom sends every row of t to target in one set-oriented operation.
	// Rows map to target columns by name.
	CopyFrom(ctx context.Context, target string, t *table.Table) (int64, error)
	Close(ctx context.Context) error
}

// Driver connects to one database type.
type Driver interface {
	Connect(ctx context.Context, connString string) (Conn, error)
}

// Dialer opens a connection for a connection locator.
type Dialer interface {
	Dial(ctx context.Context, locator string) (Conn, error)
}

// UnsupportedError reports a connection string whose scheme no driver serves.
type UnsupportedError struct {
	Type      dsn.DBType
	Available []string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("no driver for database type %q (available: %s)", e.Type, strings.Join(e.Available, ", "))
}

// Router resolves locators through settings and picks a driver by scheme.
type Router struct {
	settings settings.Resolver
	drivers  map[dsn.DBType]Driver
	logger   *slog.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithDriver replaces the driver serving t.
func WithDriver(t dsn.DBType, d Driver) Option {
	return func(r *Router) { r.drivers[t] = d }
}

// WithLogger sets the router logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) { r.logger = l }
}

// NewRouter builds a router with the Postgres, MySQL and SQLite drivers.
func NewRouter(resolver settings.Resolver, opts ...Option) *Router {
	r := &Router{
		settings: resolver,
		drivers: map[dsn.DBType]Driver{
			dsn.DBTypePostgreSQL: NewPostgres(),
			dsn.DBTypeMySQL:      NewMySQL(),
			dsn.DBTypeSQLite:     NewSQLite(),
		},
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dial resolves locator to a connection string and opens it.
func (r *Router) Dial(ctx context.Context, locator string) (Conn, error) {
	connString, err := r.settings.Resolve(locator)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ConnectionFailed,
			fmt.Sprintf("resolve connection setting %q", locator), err)
	}
	return r.Open(ctx, connString)
}

// Open connects using a literal connection string.
func (r *Router) Open(ctx context.Context, connString string) (Conn, error) {
	t := dsn.Detect(connString)
	d, ok := r.drivers[t]
	if !ok {
		avail := make([]string, 0, len(r.drivers))
		for k := range r.drivers {
			avail = append(avail, string(k))
		}
		sort.Strings(avail)
		return nil, apperrors.Wrap(apperrors.ConnectionFailed, "select driver",
			&UnsupportedError{Type: t, Available: avail})
	}

	conn, err := d.Connect(ctx, connString)
	if err != nil {
		r.logger.Debug("connect failed", "type", string(t), "err", err)
		return nil, apperrors.Wrap(apperrors.ConnectionFailed, "connect to "+string(t), err)
	}
	r.logger.Debug("connection opened", "type", string(t))
	return conn, nil
}

// Ping opens and closes a connection for locator.
func (r *Router) Ping(ctx context.Context, locator string) error {
	conn, err := r.Dial(ctx, locator)
	if err != nil {
		return err
	}
	return conn.Close(ctx)
}

// uniqueColumns renames repeated result columns to name1, name2, ... and
// fills blank names with ColumnN.
func uniqueColumns(names []string) []string {
	out := make([]string, len(names))
	seen := make(map[string]bool, len(names))
	for i, n := range names {
		if n == "" {
			n = fmt.Sprintf("Column%d", i+1)
		}
		candidate := n
		for k := 1; seen[candidate]; k++ {
			candidate = fmt.Sprintf("%s%d", n, k)
		}
		seen[candidate] = true
		out[i] = candidate
	}
	return out
}

// quoteTable quotes each dot-separated part of a table name, so schema
// qualified targets keep their qualification.
func quoteTable(name string, quote byte) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = quoteIdent(p, quote)
	}
	return strings.Join(parts, ".")
}

// quoteIdent quotes a single identifier unless it is plain, so unquoted
// names keep the database's case folding. Dots are part of the name.
func quoteIdent(name string, quote byte) string {
	if isPlainIdent(name) {
		return name
	}
	q := string(quote)
	return q + strings.ReplaceAll(name, q, q+q) + q
}

func isPlainIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}
