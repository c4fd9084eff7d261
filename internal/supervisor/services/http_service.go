// Storelens - E-Commerce Analytics and Forecasting
// Copyright 2026 The Storelens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storelens/storelens

// Package services adapts the application's long-running components to
// suture's Serve pattern so the supervision tree can restart them.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/storelens/storelens/internal/logging"
)

// HTTPServer matches *http.Server's lifecycle methods, letting tests
// substitute a mock.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerService runs an HTTP server under supervision. A watcher
// goroutine triggers graceful shutdown when the serve context is
// canceled; the shutdown timeout bounds how long open connections get
// to drain.
type HTTPServerService struct {
	server  HTTPServer
	timeout time.Duration
}

// NewHTTPServerService wraps the given server. Non-positive
// shutdownTimeout defaults to 10s.
func NewHTTPServerService(server HTTPServer, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPServerService{server: server, timeout: shutdownTimeout}
}

// Serve implements suture.Service. Returns ctx.Err() after a graceful
// shutdown so the supervisor knows the stop was requested.
func (s *HTTPServerService) Serve(ctx context.Context) error {
	stopped := make(chan struct{})
	defer close(stopped)

	go func() {
		select {
		case <-ctx.Done():
			// The serve context is already canceled; shutdown needs its own.
			drainCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
			defer cancel()
			if err := s.server.Shutdown(drainCtx); err != nil {
				logging.Warn().Err(err).Msg("HTTP server shutdown incomplete")
			}
		case <-stopped:
		}
	}()

	err := s.server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	// Stopped without being asked; let the supervisor restart it.
	return err
}

// String implements fmt.Stringer; suture uses it in event logs.
func (s *HTTPServerService) String() string {
	return "http-server"
}
