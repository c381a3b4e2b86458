// Copyright 2016-2025 Fraunhofer AISEC
//
// SPDX-License-Identifier: Apache-2.0
//
//                                 /$$$$$$  /$$                                     /$$
//                               /$$__  $$|__/                                    | $$
//   /$$$$$$$  /$$$$$$  /$$$$$$$ | $$  \__/ /$$  /$$$$$$  /$$$$$$/$$$$   /$$$$$$  /$$$$$$    /$$$$$$
//  /$$_____/ /$$__  $$| $$__  $$| $$$$    | $$ /$$__  $$| $$_  $$_  $$ |____  $$|_  $$_/   /$$__  $$
// | $$      | $$  \ $$| $$  \ $$| $$_/    | $$| $$  \__/| $$ \ $$ \ $$  /$$$$$$$  | $$    | $$$$$$$$
// | $$      | $$  | $$| $$  | $$| $$      | $$| $$      | $$ | $$ | $$ /$$__  $$  | $$ /$$| $$_____/
// |  $$$$$$$|  $$$$$$/| $$  | $$| $$      | $$| $$      | $$ | $$ | $$|  $$$$$$$  |  $$$$/|  $$$$$$$
// \_______/ \______/ |__/  |__/|__/      |__/|__/      |__/ |__/ |__/ \_______/   \___/   \_______/
//
// This file is part of Confirmate Posture.

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"strings"
	"time"

	"confirmate.io/posture/log"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// shutdownTimeout is the time in-flight requests get to finish once the server is stopped.
const shutdownTimeout = 10 * time.Second

// Server is a Connect server. Its embedded [http.Server] serves all configured handlers as well as
// health and metrics endpoints.
type Server struct {
	http.Server

	cfg Config
}

// Option configures a [Server].
type Option func(srv *Server)

// WithConfig sets the configuration of the server. Handlers added before by [WithHandler] are kept.
func WithConfig(cfg Config) Option {
	return func(srv *Server) {
		handlers := srv.cfg.Handlers

		srv.cfg = cfg
		srv.cfg.Handlers = make(map[string]http.Handler, len(handlers)+len(cfg.Handlers))
		maps.Copy(srv.cfg.Handlers, handlers)
		maps.Copy(srv.cfg.Handlers, cfg.Handlers)
	}
}

// WithHandler adds a handler at path. It can directly take the result of the generated
// New...Handler functions.
func WithHandler(path string, handler http.Handler) Option {
	return func(srv *Server) {
		if srv.cfg.Handlers == nil {
			srv.cfg.Handlers = make(map[string]http.Handler)
		}
		srv.cfg.Handlers[path] = handler
	}
}

// NewConnectServer creates a new [Server]. It uses [golang.org/x/net/http2/h2c] to serve HTTP/2
// without TLS.
func NewConnectServer(opts []Option) (srv *Server, err error) {
	var (
		mux *http.ServeMux
		h   http.Handler
	)

	srv = &Server{
		cfg: DefaultConfig,
	}

	for _, o := range opts {
		o(srv)
	}

	if srv.cfg.LogLevel != "" {
		if err = log.Configure(srv.cfg.LogLevel); err != nil {
			return nil, fmt.Errorf("could not configure logging: %w", err)
		}
	}

	mux = http.NewServeMux()
	for path, handler := range srv.cfg.Handlers {
		mux.Handle(path, handler)
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	})

	if srv.cfg.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(srv.cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	h = mux
	if prefix := strings.TrimSuffix(srv.cfg.Path, "/"); prefix != "" {
		h = http.StripPrefix(prefix, h)
	}

	srv.Addr = fmt.Sprintf(":%d", srv.cfg.Port)
	srv.Handler = h2c.NewHandler(srv.handleCORS(h), &http2.Server{})
	srv.ReadHeaderTimeout = 10 * time.Second

	return srv, nil
}

// Run listens on the configured port until ctx is done. It then shuts the server down gracefully.
func (srv *Server) Run(ctx context.Context) (err error) {
	var done = make(chan error, 1)

	slog.Info("Starting Connect server",
		slog.String("address", srv.Addr),
		slog.String("path", srv.cfg.Path),
		slog.Int("handlers", len(srv.cfg.Handlers)),
	)

	go func() {
		done <- srv.ListenAndServe()
	}()

	select {
	case err = <-done:
	case <-ctx.Done():
		slog.Info("Stopping Connect server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err = srv.Shutdown(shutdownCtx)
		<-done
	}

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

// RunConnectServer creates a new [Server] and serves it until the process ends.
func RunConnectServer(opts ...Option) (err error) {
	srv, err := NewConnectServer(opts)
	if err != nil {
		return err
	}

	return srv.Run(context.Background())
}
