// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dbconn

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	// Drivers registered with database/sql.
	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"sqlbind/internal/dsn"
	"sqlbind/internal/table"
)

// SQLDB serves databases reached through database/sql. Bulk copies are a
// single multi-row INSERT executed once.
type SQLDB struct {
	driverName string
	quote      byte
	maxParams  int
	driverDSN  func(string) (string, error)
	open       func(driverName, dataSource string) (*sql.DB, error)
}

// NewSQLite returns the modernc.org/sqlite driver.
func NewSQLite() *SQLDB {
	return &SQLDB{
		driverName: "sqlite",
		quote:      '"',
		maxParams:  32766,
		driverDSN:  dsn.SQLiteDriverDSN,
		open:       sql.Open,
	}
}

// NewMySQL returns the go-sql-driver/mysql driver.
func NewMySQL() *SQLDB {
	return &SQLDB{
		driverName: "mysql",
		quote:      '`',
		maxParams:  65535,
		driverDSN:  dsn.MySQLDriverDSN,
		open:       sql.Open,
	}
}

// WithOpener returns a copy of d that opens databases with open.
func (d *SQLDB) WithOpener(open func(driverName, dataSource string) (*sql.DB, error)) *SQLDB {
	cp := *d
	cp.open = open
	return &cp
}

func (d *SQLDB) Connect(ctx context.Context, connString string) (Conn, error) {
	source, err := d.driverDSN(connString)
	if err != nil {
		return nil, err
	}
	db, err := d.open(d.driverName, source)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.driverName, err)
	}
	db.SetMaxOpenConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &sqlConn{db: db, conn: conn, d: d}, nil
}

type sqlConn struct {
	db   *sql.DB
	conn *sql.Conn
	d    *SQLDB
}

func (c *sqlConn) Query(ctx context.Context, query string) (*table.Table, error) {
	rows, err := c.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	t, err := table.New(uniqueColumns(cols)...)
	if err != nil {
		return nil, err
	}

	dest := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range dest {
		ptrs[i] = &dest[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		vals := make([]table.Value, len(dest))
		for i, v := range dest {
			vals[i] = formatValue(v)
		}
		if err := t.Append(vals...); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

func (c *sqlConn) CopyFrom(ctx context.Context, target string, t *table.Table) (int64, error) {
	if t.Len() == 0 {
		return 0, nil
	}
	stmt, args, err := c.d.insertStatement(target, t)
	if err != nil {
		return 0, err
	}
	res, err := c.conn.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return int64(t.Len()), nil
	}
	return n, nil
}

func (c *sqlConn) Close(context.Context) error {
	cerr := c.conn.Close()
	if err := c.db.Close(); err != nil {
		return err
	}
	return cerr
}

// insertStatement builds INSERT INTO target (cols) VALUES (?, ...), (...).
func (d *SQLDB) insertStatement(target string, t *table.Table) (string, []any, error) {
	cols := t.Columns()
	if len(cols) == 0 {
		return "", nil, fmt.Errorf("table has no columns")
	}
	if n := len(cols) * t.Len(); n > d.maxParams {
		return "", nil, fmt.Errorf("bulk copy needs %d placeholders, %s allows %d", n, d.driverName, d.maxParams)
	}

	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c, d.quote)
	}
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + ")"

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", quoteTable(target, d.quote), strings.Join(quoted, ", "))
	args := make([]any, 0, len(cols)*t.Len())
	for i := 0; i < t.Len(); i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(tuple)
		for _, v := range t.Row(i) {
			args = append(args, v.Any())
		}
	}
	return b.String(), args, nil
}

// formatValue renders a driver value as cell text.
func formatValue(v any) table.Value {
	switch val := v.(type) {
	case nil:
		return table.Null
	case []byte:
		return table.Text(string(val))
	case string:
		return table.Text(val)
	case int64:
		return table.Text(strconv.FormatInt(val, 10))
	case float64:
		return table.Text(strconv.FormatFloat(val, 'f', -1, 64))
	case bool:
		return table.Text(strconv.FormatBool(val))
	case time.Time:
		return table.Text(val.Format(time.RFC3339Nano))
	default:
		return table.Text(fmt.Sprint(val))
	}
}
