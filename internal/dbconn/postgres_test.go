// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dbconn

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlbind/internal/table"
)

func TestCopyStatement(t *testing.T) {
	assert.Equal(t,
		`COPY public.Book (Title, "Publication Year") FROM STDIN`,
		copyStatement("public.Book", []string{"Title", "Publication Year"}))
	assert.Equal(t,
		`COPY Book ("meta.source", Title) FROM STDIN`,
		copyStatement("Book", []string{"meta.source", "Title"}))
}

func TestEncodeCopyText(t *testing.T) {
	tbl, err := table.New("a", "b")
	require.NoError(t, err)
	require.NoError(t, tbl.Append(table.Text("tab\there"), table.Null))
	require.NoError(t, tbl.Append(table.Text(`back\slash`), table.Text("line\nbreak")))

	assert.Equal(t, "tab\\there\t\\N\nback\\\\slash\tline\\nbreak\n", string(encodeCopyText(tbl)))
}

// Runs against a real server when SQLBIND_TEST_POSTGRES_DSN is set.
func TestPostgresRoundTrip(t *testing.T) {
	connString := os.Getenv("SQLBIND_TEST_POSTGRES_DSN")
	if connString == "" {
		t.Skip("SQLBIND_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	conn, err := NewPostgres().Connect(ctx, connString)
	require.NoError(t, err)
	defer conn.Close(ctx)

	_, err = conn.Query(ctx, `CREATE TEMP TABLE book (title text, author text, yr int, genre text)`)
	require.NoError(t, err)

	tbl, err := table.New("title", "author", "yr")
	require.NoError(t, err)
	require.NoError(t, tbl.Append(table.Text("Sheffield Tales"), table.Text("Tom Sheffield"), table.Text("2001")))
	require.NoError(t, tbl.Append(table.Text("Emma"), table.Text("Jane Austen"), table.Null))

	n, err := conn.CopyFrom(ctx, "book", tbl)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := conn.Query(ctx, `SELECT title, yr, genre FROM book WHERE author ILIKE chr(37) || 'sheffield' || chr(37)`)
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())
	assert.Equal(t, table.Row{table.Text("Sheffield Tales"), table.Text("2001"), table.Null}, got.Row(0))
}
