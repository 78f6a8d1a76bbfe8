// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

package binding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlbind/internal/collector"
	"sqlbind/internal/convert"
	"sqlbind/internal/dbconn/dbconntest"
	apperrors "sqlbind/internal/errors"
	"sqlbind/internal/table"
	"sqlbind/internal/testutil"
)

func bookResult(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New("Title", "Author", "Genre")
	require.NoError(t, err)
	require.NoError(t, tbl.Append(table.Text("Sheffield Tales"), table.Text("Tom Sheffield"), table.Null))
	return tbl
}

func TestInputTable(t *testing.T) {
	stub := &dbconntest.Stub{Result: bookResult(t)}
	r := NewResolver(stub, nil, testutil.NewTestLogger(t))

	got, err := r.Table(context.Background(), Descriptor{Query: "SELECT * FROM Book"})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())
	assert.Equal(t, []string{"SELECT * FROM Book"}, stub.Queries())
}

func TestInputTextOmitsNulls(t *testing.T) {
	stub := &dbconntest.Stub{Result: bookResult(t)}
	r := NewResolver(stub, convert.Default(), nil)

	got, err := r.Text(context.Background(), Descriptor{Query: "SELECT * FROM Book"})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"Title": "Sheffield Tales", "Author": "Tom Sheffield"}]`, got)
}

func TestInputTextUsesRegisteredConverter(t *testing.T) {
	reg := convert.Default()
	reg.Register(convert.ShapeTable, convert.ShapeText, convert.Typed(func(t *table.Table) (string, error) {
		return "custom", nil
	}))
	r := NewResolver(&dbconntest.Stub{}, reg, nil)

	got, err := r.Text(context.Background(), Descriptor{Query: "SELECT 1"})
	require.NoError(t, err)
	assert.Equal(t, "custom", got)
}

func TestInputQueryErrorPropagates(t *testing.T) {
	stub := &dbconntest.Stub{QueryErr: errors.New("syntax error")}
	r := NewResolver(stub, nil, nil)

	_, err := r.Text(context.Background(), Descriptor{Query: "SELEC 1"})
	require.Error(t, err)
	assert.Equal(t, apperrors.QueryFailed, apperrors.KindOf(err))
}

func TestDefaultLocator(t *testing.T) {
	stub := &dbconntest.Stub{}
	r := NewResolver(stub, nil, nil)

	c, err := r.TableCollector(Descriptor{Table: "Book"})
	require.NoError(t, err)
	tbl, err := table.New("Title")
	require.NoError(t, err)
	require.NoError(t, tbl.Append(table.Text("Dune")))
	require.NoError(t, c.Add(context.Background(), tbl))

	require.Len(t, stub.Copies(), 1)
	assert.Equal(t, DefaultConnection, stub.Copies()[0].Locator)

	named, err := r.TextCollector(Descriptor{Connection: "Reporting", Table: "Book"})
	require.NoError(t, err)
	require.NoError(t, named.Add(context.Background(), `[{"Title": "Emma"}]`))
	assert.Equal(t, "Reporting", stub.Copies()[1].Locator)
}

func TestOutputCollectorsPerShape(t *testing.T) {
	r := NewResolver(&dbconntest.Stub{}, nil, nil)
	d := Descriptor{Table: "Book"}

	v, err := r.Output(d, convert.ShapeTable)
	require.NoError(t, err)
	assert.IsType(t, &collector.Table{}, v)

	v, err = r.Output(d, convert.ShapeText)
	require.NoError(t, err)
	assert.IsType(t, &collector.Text{}, v)
}

func TestOutputRequiresTable(t *testing.T) {
	stub := &dbconntest.Stub{}
	r := NewResolver(stub, nil, nil)

	_, err := r.TableCollector(Descriptor{})
	require.Error(t, err)
	assert.Equal(t, apperrors.BindingInvalid, apperrors.KindOf(err))
	assert.Zero(t, stub.Connects())
}

func TestUnknownShape(t *testing.T) {
	r := NewResolver(&dbconntest.Stub{}, nil, nil)

	_, err := r.Input(context.Background(), Descriptor{Query: "SELECT 1"}, convert.Shape("xml"))
	assert.Equal(t, apperrors.BindingInvalid, apperrors.KindOf(err))

	_, err = r.Output(Descriptor{Table: "Book"}, convert.Shape("xml"))
	assert.Equal(t, apperrors.BindingInvalid, apperrors.KindOf(err))
}
