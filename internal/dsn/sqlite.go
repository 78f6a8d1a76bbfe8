// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"net/url"
	"strings"
)

type sqliteResolver struct{}

// NewSQLiteResolver creates a resolver for sqlite://path, sqlite:path and
// file:path DSNs.
func NewSQLiteResolver() Resolver { return sqliteResolver{} }

func (sqliteResolver) Parse(dsn string) (*Info, error) {
	rest := ""
	lower := strings.ToLower(dsn)
	switch {
	case strings.HasPrefix(lower, "sqlite://"):
		rest = dsn[len("sqlite://"):]
	case strings.HasPrefix(lower, "sqlite:"):
		rest = dsn[len("sqlite:"):]
	case strings.HasPrefix(lower, "file:"):
		rest = dsn[len("file:"):]
	default:
		return nil, NewParseError(dsn, "missing or invalid scheme", "use sqlite:///path/to/file.db")
	}

	path, params, _ := strings.Cut(rest, "?")
	if strings.TrimSpace(path) == "" {
		return nil, NewParseError(dsn, "missing database path", "use sqlite:///path/to/file.db or sqlite://:memory:")
	}
	info := &Info{
		Type:     DBTypeSQLite,
		Database: path,
		Params:   make(map[string]string),
		Original: dsn,
	}
	if params != "" {
		q, err := url.ParseQuery(params)
		if err != nil {
			return nil, NewParseError(dsn, "invalid query parameters", "")
		}
		for k, v := range q {
			if len(v) > 0 {
				info.Params[k] = v[0]
			}
		}
	}
	return info, nil
}

func (sqliteResolver) Normalize(info *Info) (string, error) {
	if info == nil {
		return "", NewParseError("", "nil DSN info", "")
	}
	out := "sqlite://" + info.Database
	if len(info.Params) > 0 {
		q := url.Values{}
		for k, v := range info.Params {
			q.Set(k, v)
		}
		out += "?" + q.Encode()
	}
	return out, nil
}

func (r sqliteResolver) Validate(dsn string) error {
	_, err := r.Parse(dsn)
	return err
}

// SQLiteDriverDSN converts a sqlite DSN into the name accepted by
// modernc.org/sqlite. Parameters turn the path into a file: URI.
func SQLiteDriverDSN(dsn string) (string, error) {
	info, err := NewSQLiteResolver().Parse(dsn)
	if err != nil {
		return "", err
	}
	if len(info.Params) == 0 {
		return info.Database, nil
	}
	q := url.Values{}
	for k, v := range info.Params {
		q.Set(k, v)
	}
	return "file:" + info.Database + "?" + q.Encode(), nil
}
