// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package dbconntest provides an instrumented in-memory database for tests.
// It records every connection, query and bulk copy so tests can assert on
// round trips without a real server.
package dbconntest

import (
	"context"
	"sync"

	"sqlbind/internal/dbconn"
	apperrors "sqlbind/internal/errors"
	"sqlbind/internal/table"
)

// Copy records one bulk copy.
type Copy struct {
	Locator string
	Target  string
	Columns []string
	Rows    int
	// CtxErr is the context error observed when the copy ran.
	CtxErr error
	Table  *table.Table
}

// Stub implements dbconn.Dialer and dbconn.Driver.
type Stub struct {
	// Result is returned by every query; nil yields an empty table.
	Result *table.Table
	// ConnectErr, QueryErr and CopyErr are returned by the matching call.
	ConnectErr error
	QueryErr   error
	CopyErr    error
	// OnConnect runs after a successful connect.
	OnConnect func()

	mu       sync.Mutex
	connects int
	closes   int
	queries  []string
	copies   []Copy
}

var (
	_ dbconn.Dialer = (*Stub)(nil)
	_ dbconn.Driver = (*Stub)(nil)
)

// Dial records a connection for locator. Connect failures are classified
// the way dbconn.Router classifies them.
func (s *Stub) Dial(ctx context.Context, locator string) (dbconn.Conn, error) {
	s.mu.Lock()
	s.connects++
	err := s.ConnectErr
	hook := s.OnConnect
	s.mu.Unlock()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ConnectionFailed, "connect to stub", err)
	}
	if hook != nil {
		hook()
	}
	return &conn{stub: s, locator: locator}, nil
}

// Connect is Dial for a literal connection string, unclassified.
func (s *Stub) Connect(ctx context.Context, connString string) (dbconn.Conn, error) {
	s.mu.Lock()
	s.connects++
	err := s.ConnectErr
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &conn{stub: s, locator: connString}, nil
}

// Connects returns the number of connections opened.
func (s *Stub) Connects() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connects
}

// Closes returns the number of connections closed.
func (s *Stub) Closes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

// Queries returns the query texts received, in order.
func (s *Stub) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

// Copies returns the bulk copies received, in order.
func (s *Stub) Copies() []Copy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Copy(nil), s.copies...)
}

// CopiedRows returns the total rows copied.
func (s *Stub) CopiedRows() int {
	n := 0
	for _, c := range s.Copies() {
		n += c.Rows
	}
	return n
}

type conn struct {
	stub    *Stub
	locator string
}

func (c *conn) Query(ctx context.Context, query string) (*table.Table, error) {
	s := c.stub
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	if s.QueryErr != nil {
		return nil, s.QueryErr
	}
	if s.Result == nil {
		return table.New()
	}
	return s.Result, nil
}

func (c *conn) CopyFrom(ctx context.Context, target string, t *table.Table) (int64, error) {
	s := c.stub
	s.mu.Lock()
	defer s.mu.Unlock()
	s.copies = append(s.copies, Copy{
		Locator: c.locator,
		Target:  target,
		Columns: t.Columns(),
		Rows:    t.Len(),
		CtxErr:  ctx.Err(),
		Table:   t,
	})
	if s.CopyErr != nil {
		return 0, s.CopyErr
	}
	return int64(t.Len()), nil
}

func (c *conn) Close(context.Context) error {
	c.stub.mu.Lock()
	defer c.stub.mu.Unlock()
	c.stub.closes++
	return nil
}
