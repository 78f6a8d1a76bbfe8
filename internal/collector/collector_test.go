// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlbind/internal/convert"
	"sqlbind/internal/dbconn/dbconntest"
	apperrors "sqlbind/internal/errors"
	"sqlbind/internal/table"
	"sqlbind/internal/testutil"
)

func books(t *testing.T, titles ...string) *table.Table {
	t.Helper()
	tbl, err := table.New("Title", "Author")
	require.NoError(t, err)
	for _, title := range titles {
		require.NoError(t, tbl.Append(table.Text(title), table.Null))
	}
	return tbl
}

func TestTableAddZeroRowsOpensNoConnection(t *testing.T) {
	stub := &dbconntest.Stub{}
	c := NewTable(stub, "ConnectionString", "Book", testutil.NewTestLogger(t))
	ctx := context.Background()

	require.NoError(t, c.Add(ctx, books(t)))
	require.NoError(t, c.Add(ctx, nil))

	assert.Zero(t, stub.Connects())
	assert.Empty(t, stub.Copies())
}

func TestTableAddIsOneRoundTripPerCall(t *testing.T) {
	stub := &dbconntest.Stub{}
	c := NewTable(stub, "ConnectionString", "Book", nil)
	ctx := context.Background()

	require.NoError(t, c.Add(ctx, books(t, "Dune", "Emma")))
	require.NoError(t, c.Add(ctx, books(t, "Dune")))
	require.NoError(t, c.Add(ctx, books(t, "Hyperion", "Ubik", "Solaris")))

	copies := stub.Copies()
	require.Len(t, copies, 3)
	assert.Equal(t, []int{2, 1, 3}, []int{copies[0].Rows, copies[1].Rows, copies[2].Rows})
	assert.Equal(t, 3, stub.Connects())
	assert.Equal(t, 3, stub.Closes())
	assert.Equal(t, 6, stub.CopiedRows())
	for _, cp := range copies {
		assert.Equal(t, "Book", cp.Target)
		assert.Equal(t, "ConnectionString", cp.Locator)
	}
}

func TestTableAddRepeatsAreNotDeduplicated(t *testing.T) {
	stub := &dbconntest.Stub{}
	c := NewTable(stub, "ConnectionString", "Book", nil)
	same := books(t, "Dune")

	require.NoError(t, c.Add(context.Background(), same))
	require.NoError(t, c.Add(context.Background(), same))
	assert.Equal(t, 2, stub.CopiedRows())
}

func TestTableAddCopyError(t *testing.T) {
	driverErr := errors.New(`ERROR: null value in column "title" violates not-null constraint (SQLSTATE 23502)`)
	stub := &dbconntest.Stub{CopyErr: driverErr}
	c := NewTable(stub, "ConnectionString", "Book", nil)

	err := c.Add(context.Background(), books(t, "Dune"))
	require.Error(t, err)
	assert.Equal(t, apperrors.BulkInsertFailed, apperrors.KindOf(err))
	assert.True(t, errors.Is(err, driverErr))
	assert.Contains(t, err.Error(), driverErr.Error())
	assert.Equal(t, 1, stub.Closes())
}

func TestTableAddConnectError(t *testing.T) {
	stub := &dbconntest.Stub{ConnectErr: errors.New("no such host")}
	c := NewTable(stub, "ConnectionString", "Book", nil)

	err := c.Add(context.Background(), books(t, "Dune"))
	require.Error(t, err)
	assert.Equal(t, apperrors.ConnectionFailed, apperrors.KindOf(err))
	assert.Empty(t, stub.Copies())
}

func TestTableAddCopyIgnoresLaterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stub := &dbconntest.Stub{OnConnect: cancel}
	c := NewTable(stub, "ConnectionString", "Book", nil)

	require.NoError(t, c.Add(ctx, books(t, "Dune")))
	copies := stub.Copies()
	require.Len(t, copies, 1)
	assert.NoError(t, copies[0].CtxErr)
	assert.Error(t, ctx.Err())
}

func TestFlushDoesNoIOAndCompletes(t *testing.T) {
	stub := &dbconntest.Stub{}
	c := NewTable(stub, "ConnectionString", "Book", nil)
	ctx := context.Background()

	require.NoError(t, c.Flush(ctx))
	assert.Zero(t, stub.Connects())
	assert.ErrorIs(t, c.Add(ctx, books(t, "Dune")), ErrCompleted)
}

func TestTextAddDecodesThenCopies(t *testing.T) {
	stub := &dbconntest.Stub{}
	c := NewText(stub, convert.Default(), "ConnectionString", "Book", nil)

	err := c.Add(context.Background(), `[{"Title": "Dune", "Author": "Herbert"}, {"Title": "Emma"}]`)
	require.NoError(t, err)

	copies := stub.Copies()
	require.Len(t, copies, 1)
	assert.Equal(t, []string{"Title", "Author"}, copies[0].Columns)
	assert.Equal(t, 2, copies[0].Rows)
	author, _ := copies[0].Table.Get(1, "Author")
	assert.False(t, author.Valid)
}

func TestTextAddEmptyArrayOpensNoConnection(t *testing.T) {
	stub := &dbconntest.Stub{}
	c := NewText(stub, convert.Default(), "ConnectionString", "Book", nil)

	require.NoError(t, c.Add(context.Background(), `[]`))
	assert.Zero(t, stub.Connects())
}

func TestTextAddDecodeErrorOpensNoConnection(t *testing.T) {
	stub := &dbconntest.Stub{}
	c := NewText(stub, convert.Default(), "ConnectionString", "Book", nil)

	err := c.Add(context.Background(), `{"Title": "Dune"}`)
	require.Error(t, err)
	assert.Equal(t, apperrors.DecodeFailed, apperrors.KindOf(err))
	assert.Zero(t, stub.Connects())
}

func TestTextFlush(t *testing.T) {
	c := NewText(&dbconntest.Stub{}, convert.Default(), "ConnectionString", "Book", nil)
	require.NoError(t, c.Flush(context.Background()))
	assert.ErrorIs(t, c.Add(context.Background(), `[]`), ErrCompleted)
}
