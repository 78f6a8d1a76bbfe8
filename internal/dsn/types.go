// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package dsn detects, parses and normalizes database connection strings.
// The scheme decides which driver serves a connection: postgres:// and
// postgresql:// go to pgx, mysql:// to go-sql-driver, sqlite:// and file:
// to the pure-Go SQLite driver.
package dsn

import "fmt"

// DBType represents the type of database
type DBType string

const (
	DBTypePostgreSQL DBType = "postgresql"
	DBTypeMySQL      DBType = "mysql"
	DBTypeSQLite     DBType = "sqlite"
	DBTypeUnknown    DBType = "unknown"
)

// Info contains parsed information from a DSN string.
// For SQLite only Database (the file path) and Params are set.
type Info struct {
	Type     DBType
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Params   map[string]string
	Original string
}

// Resolver parses and normalizes DSNs of one database type.
type Resolver interface {
	// Parse parses a DSN string into its parts.
	Parse(dsn string) (*Info, error)

	// Normalize renders info as a canonical, properly escaped DSN.
	Normalize(info *Info) (string, error)

	// Validate checks if the DSN is valid for the database type.
	Validate(dsn string) error
}

// ParseError represents an error that occurred during DSN parsing.
// The DSN itself is kept for callers but never printed by Error.
type ParseError struct {
	DSN    string
	Reason string
	Hint   string
}

func (e *ParseError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("invalid DSN format: %s\nHint: %s", e.Reason, e.Hint)
	}
	return fmt.Sprintf("invalid DSN format: %s", e.Reason)
}

// NewParseError creates a new ParseError
func NewParseError(dsn, reason, hint string) *ParseError {
	return &ParseError{
		DSN:    dsn,
		Reason: reason,
		Hint:   hint,
	}
}
