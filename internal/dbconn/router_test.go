// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dbconn

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlbind/internal/dsn"
	apperrors "sqlbind/internal/errors"
	"sqlbind/internal/settings"
	"sqlbind/internal/table"
)

type fakeDriver struct {
	got []string
	err error
}

func (f *fakeDriver) Connect(_ context.Context, connString string) (Conn, error) {
	f.got = append(f.got, connString)
	if f.err != nil {
		return nil, f.err
	}
	return nopConn{}, nil
}

type nopConn struct{}

func (nopConn) Query(context.Context, string) (*table.Table, error)             { return table.New() }
func (nopConn) CopyFrom(context.Context, string, *table.Table) (int64, error) { return 0, nil }
func (nopConn) Close(context.Context) error                                   { return nil }

func TestRouterDialResolvesSettingAndScheme(t *testing.T) {
	pg, lite := &fakeDriver{}, &fakeDriver{}
	r := NewRouter(settings.Chain{settings.Map{
		"ConnectionString": "postgres://app@db/library",
		"Local":            "sqlite:///tmp/books.db",
	}}, WithDriver(dsn.DBTypePostgreSQL, pg), WithDriver(dsn.DBTypeSQLite, lite))

	_, err := r.Dial(context.Background(), "ConnectionString")
	require.NoError(t, err)
	_, err = r.Dial(context.Background(), "Local")
	require.NoError(t, err)

	assert.Equal(t, []string{"postgres://app@db/library"}, pg.got)
	assert.Equal(t, []string{"sqlite:///tmp/books.db"}, lite.got)
}

func TestRouterDialMissingSetting(t *testing.T) {
	r := NewRouter(settings.Chain{settings.Map{}})
	_, err := r.Dial(context.Background(), "ConnectionString")
	require.Error(t, err)
	assert.Equal(t, apperrors.ConnectionFailed, apperrors.KindOf(err))
	assert.True(t, errors.Is(err, settings.ErrNotFound))
}

func TestRouterOpenUnsupportedScheme(t *testing.T) {
	r := NewRouter(settings.Chain{settings.Map{}})
	_, err := r.Open(context.Background(), "mongodb://localhost/db")
	require.Error(t, err)
	assert.Equal(t, apperrors.ConnectionFailed, apperrors.KindOf(err))

	var unsupported *UnsupportedError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, dsn.DBTypeUnknown, unsupported.Type)
	assert.Equal(t, []string{"mysql", "postgresql", "sqlite"}, unsupported.Available)
}

func TestRouterConnectErrorKeepsDriverText(t *testing.T) {
	driverErr := errors.New(`FATAL: database "library" does not exist (SQLSTATE 3D000)`)
	r := NewRouter(settings.Chain{settings.Map{"ConnectionString": "postgres://app@db/library"}},
		WithDriver(dsn.DBTypePostgreSQL, &fakeDriver{err: driverErr}))

	err := r.Ping(context.Background(), "ConnectionString")
	require.Error(t, err)
	assert.Equal(t, apperrors.ConnectionFailed, apperrors.KindOf(err))
	assert.True(t, errors.Is(err, driverErr))
	assert.Contains(t, err.Error(), driverErr.Error())
}

func TestUniqueColumns(t *testing.T) {
	assert.Equal(t,
		[]string{"a", "a1", "b", "a2", "Column5"},
		uniqueColumns([]string{"a", "a", "b", "a", ""}))
}

func TestQuoteIdent(t *testing.T) {
	tests := []struct {
		name  string
		quote byte
		want  string
	}{
		{"Book", '"', "Book"},
		{"a.b", '"', `"a.b"`},
		{"Book Club", '"', `"Book Club"`},
		{`we"ird`, '"', `"we""ird"`},
		{"order-items", '`', "`order-items`"},
		{"2024_sales", '"', `"2024_sales"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, quoteIdent(tt.name, tt.quote))
		})
	}
}

func TestQuoteTableSplitsQualifiedNames(t *testing.T) {
	assert.Equal(t, "dbo.Book", quoteTable("dbo.Book", '"'))
	assert.Equal(t, `sales."Book Club"`, quoteTable("sales.Book Club", '"'))
	assert.Equal(t, "`my-db`.Book", quoteTable("my-db.Book", '`'))
}
