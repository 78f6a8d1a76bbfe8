// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package server runs the HTTP API and the gRPC health endpoint together.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"sqlbind/internal/logging"
)

// HealthService is the service name reported by the health endpoint.
const HealthService = "sqlbind.books"

const shutdownTimeout = 5 * time.Second

// Mounter registers routes on a router.
type Mounter interface {
	Routes(r chi.Router)
}

// Config holds what Serve needs.
type Config struct {
	HTTPAddr string
	// GRPCAddr is optional; empty disables the health endpoint.
	GRPCAddr string
	Routes   Mounter
	// Probe checks the database at startup. A failure marks the health
	// status NOT_SERVING but does not stop the server.
	Probe  func(ctx context.Context) error
	Logger *slog.Logger
}

// Server is the sqlbind service process.
type Server struct {
	cfg    Config
	health *health.Server
	logger *slog.Logger
}

// New returns a Server for cfg.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{cfg: cfg, health: health.NewServer(), logger: logger}
}

// Handler returns the HTTP handler with the standard middleware stack.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.RequestLogger(slogFormatter{logger: s.logger}),
		middleware.Recoverer,
	)
	if s.cfg.Routes != nil {
		s.cfg.Routes.Routes(r)
	}
	return r
}

// Health returns the health server so callers can update statuses.
func (s *Server) Health() *health.Server { return s.health }

// CheckReadiness runs the probe and records the result.
func (s *Server) CheckReadiness(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if s.cfg.Probe != nil {
		if err := s.cfg.Probe(ctx); err != nil {
			s.logger.Warn("database probe failed", "err", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus(HealthService, status)
	s.health.SetServingStatus("", status)
	return status
}

// Serve blocks until ctx is cancelled or a listener fails.
func (s *Server) Serve(ctx context.Context) error {
	var (
		gs  *grpc.Server
		lis net.Listener
	)
	if s.cfg.GRPCAddr != "" {
		var err error
		lis, err = net.Listen("tcp", s.cfg.GRPCAddr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", s.cfg.GRPCAddr, err)
		}
		gs = grpc.NewServer()
		healthpb.RegisterHealthServer(gs, s.health)
	}

	eg, egctx := errgroup.WithContext(ctx)

	s.CheckReadiness(egctx)

	srv := &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("starting http server", "addr", s.cfg.HTTPAddr)

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if gs != nil {
		s.logger.Info("starting grpc health server", "addr", lis.Addr().String())
		eg.Go(func() error {
			if err := gs.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
	}

	eg.Go(func() error {
		<-egctx.Done()
		s.logger.Debug("shutting down")
		s.health.Shutdown()
		if gs != nil {
			gs.GracefulStop()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
