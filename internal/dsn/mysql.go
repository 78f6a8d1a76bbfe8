// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"net"
	"net/url"

	"github.com/go-sql-driver/mysql"
)

// NewMySQLResolver creates a resolver for mysql:// DSNs.
func NewMySQLResolver() Resolver {
	return &networkResolver{
		typ:         DBTypeMySQL,
		schemes:     []string{"mysql"},
		canonical:   "mysql",
		defaultPort: "3306",
	}
}

// MySQLDriverDSN converts a mysql:// URL into the go-sql-driver format
// (user:pass@tcp(host:port)/db?params). URL parameters go through the
// driver's own DSN parser, so malformed option values fail here.
func MySQLDriverDSN(dsn string) (string, error) {
	info, err := NewMySQLResolver().Parse(dsn)
	if err != nil {
		return "", err
	}

	cfg := mysql.NewConfig()
	cfg.User = info.User
	cfg.Passwd = info.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(info.Host, info.Port)
	cfg.DBName = info.Database
	base := cfg.FormatDSN()
	if len(info.Params) == 0 {
		return base, nil
	}

	q := url.Values{}
	for k, v := range info.Params {
		q.Set(k, v)
	}
	full, err := mysql.ParseDSN(base + "?" + q.Encode())
	if err != nil {
		return "", NewParseError(dsn, err.Error(), "check the MySQL driver parameters")
	}
	return full.FormatDSN(), nil
}
