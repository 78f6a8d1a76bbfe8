// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dbconn

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"sqlbind/internal/table"
)

// Postgres connects through a single pgx connection.
type Postgres struct{}

// NewPostgres returns the Postgres driver.
func NewPostgres() *Postgres { return &Postgres{} }

func (*Postgres) Connect(ctx context.Context, connString string) (Conn, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, err
	}
	return &pgConn{conn: conn}, nil
}

type pgConn struct {
	conn *pgx.Conn
}

// Query uses the simple protocol: one round trip, and every value arrives in
// its text form, which becomes the cell text unchanged.
func (c *pgConn) Query(ctx context.Context, query string) (*table.Table, error) {
	rows, err := c.conn.Query(ctx, query, pgx.QueryExecModeSimpleProtocol)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	names := make([]string, len(fds))
	for i, fd := range fds {
		names[i] = fd.Name
	}
	t, err := table.New(uniqueColumns(names)...)
	if err != nil {
		return nil, err
	}

	for rows.Next() {
		raw := rows.RawValues()
		vals := make([]table.Value, len(raw))
		for i, b := range raw {
			if b != nil {
				vals[i] = table.Text(string(b))
			}
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

// CopyFrom streams t as text-format COPY, letting the server parse each
// value into its column type.
func (c *pgConn) CopyFrom(ctx context.Context, target string, t *table.Table) (int64, error) {
	if t.Len() == 0 {
		return 0, nil
	}
	tag, err := c.conn.PgConn().CopyFrom(ctx, bytes.NewReader(encodeCopyText(t)), copyStatement(target, t.Columns()))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (c *pgConn) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

func copyStatement(target string, columns []string) string {
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = quoteIdent(col, '"')
	}
	return fmt.Sprintf("COPY %s (%s) FROM STDIN", quoteTable(target, '"'), strings.Join(quoted, ", "))
}

var copyEscaper = strings.NewReplacer(`\`, `\\`, "\t", `\t`, "\n", `\n`, "\r", `\r`)

// encodeCopyText renders rows in COPY text format: tab separated fields,
// newline terminated rows and \N for null.
func encodeCopyText(t *table.Table) []byte {
	var buf bytes.Buffer
	for i := 0; i < t.Len(); i++ {
		for j, v := range t.Row(i) {
			if j > 0 {
				buf.WriteByte('\t')
			}
			if !v.Valid {
				buf.WriteString(`\N`)
				continue
			}
			copyEscaper.WriteString(&buf, v.Text)
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
