// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"sqlbind/internal/logging"
	"sqlbind/internal/testutil"
)

type routes struct{}

func (routes) Routes(r chi.Router) {
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(middleware.GetReqID(r.Context())))
	})
	r.Get("/panic", func(http.ResponseWriter, *http.Request) { panic("boom") })
}

func TestHandlerMiddleware(t *testing.T) {
	s := New(Config{Routes: routes{}, Logger: testutil.NewTestLogger(t)})
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Body.String(), "request id is set")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequestLogsAreMasked(t *testing.T) {
	var buf bytes.Buffer
	s := New(Config{Routes: routes{}, Logger: logging.New(&buf, "info")})
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping?token=abc123", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	out := buf.String()
	assert.Contains(t, out, "msg=request")
	assert.Contains(t, out, "status=200")
	assert.Contains(t, out, "request_id=")
	assert.Contains(t, out, "token=***")
	assert.NotContains(t, out, "abc123")

	buf.Reset()
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Contains(t, buf.String(), "request panic")
}

func TestCheckReadiness(t *testing.T) {
	ctx := context.Background()

	ok := New(Config{Probe: func(context.Context) error { return nil }})
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, ok.CheckReadiness(ctx))

	down := New(Config{Probe: func(context.Context) error { return errors.New("refused") }})
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, down.CheckReadiness(ctx))

	resp, err := down.Health().Check(ctx, &healthpb.HealthCheckRequest{Service: HealthService})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New(Config{HTTPAddr: "127.0.0.1:0", GRPCAddr: "127.0.0.1:0", Logger: testutil.NewTestLogger(t)})

	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()
	cancel()
	assert.NoError(t, <-done)
}
