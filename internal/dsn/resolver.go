// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"strings"
)

// Detect detects the database type from a DSN string.
func Detect(dsn string) DBType {
	lower := strings.ToLower(strings.TrimSpace(dsn))

	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DBTypePostgreSQL
	case strings.HasPrefix(lower, "mysql://"):
		return DBTypeMySQL
	case strings.HasPrefix(lower, "sqlite://"), strings.HasPrefix(lower, "sqlite:"), strings.HasPrefix(lower, "file:"):
		return DBTypeSQLite
	}
	return DBTypeUnknown
}

// ResolverFor returns the resolver serving t.
func ResolverFor(t DBType) (Resolver, bool) {
	switch t {
	case DBTypePostgreSQL:
		return NewPostgreSQLResolver(), true
	case DBTypeMySQL:
		return NewMySQLResolver(), true
	case DBTypeSQLite:
		return NewSQLiteResolver(), true
	}
	return nil, false
}

func resolve(dsn string) (Resolver, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, NewParseError(dsn, "empty DSN", "provide a valid database connection string")
	}
	r, ok := ResolverFor(Detect(dsn))
	if !ok {
		return nil, NewParseError(dsn, "unknown database type", "use postgres://, mysql://, or sqlite://")
	}
	return r, nil
}

// Parse parses a DSN string and returns the normalized connection string.
// This is the main entry point for DSN parsing.
func Parse(dsn string) (string, error) {
	r, err := resolve(dsn)
	if err != nil {
		return "", err
	}
	info, err := r.Parse(strings.TrimSpace(dsn))
	if err != nil {
		return "", err
	}
	return r.Normalize(info)
}

// Validate validates a DSN string without normalizing it.
func Validate(dsn string) error {
	r, err := resolve(dsn)
	if err != nil {
		return err
	}
	return r.Validate(strings.TrimSpace(dsn))
}

// ParseInfo parses a DSN string and returns detailed DSN info.
func ParseInfo(dsn string) (*Info, error) {
	r, err := resolve(dsn)
	if err != nil {
		return nil, err
	}
	return r.Parse(strings.TrimSpace(dsn))
}

// Redact returns dsn with its password replaced by ***. Strings that do not
// parse are returned with everything between the scheme and the last @ masked.
func Redact(dsn string) string {
	info, err := ParseInfo(dsn)
	if err != nil || info.Type == DBTypeSQLite {
		return redactSimple(dsn)
	}
	if info.Password == "" {
		return dsn
	}
	r, _ := ResolverFor(info.Type)
	masked := *info
	masked.Password = "***"
	out, err := r.Normalize(&masked)
	if err != nil {
		return redactSimple(dsn)
	}
	return strings.Replace(out, "%2A%2A%2A", "***", 1)
}

func redactSimple(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	if at == -1 {
		return dsn
	}
	start := 0
	if i := strings.Index(dsn, "://"); i != -1 && i < at {
		start = i + 3
	}
	colon := strings.Index(dsn[start:at], ":")
	if colon == -1 {
		return dsn
	}
	return dsn[:start+colon+1] + "***" + dsn[at:]
}
