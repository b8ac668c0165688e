package mcpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/isdmx/labhub/metrics"
	"github.com/isdmx/labhub/sandbox"
)

const (
	// MCPPath is the streamable MCP endpoint.
	MCPPath = "/mcp"
	// MetricsPath serves Prometheus metrics.
	MetricsPath = "/metrics"
	// HealthPath reports liveness.
	HealthPath = "/healthz"

	readHeaderTimeout = 10 * time.Second
)

type httpTransport struct {
	streamable *server.StreamableHTTPServer
	server     *http.Server
}

// Handler returns the HTTP routes: the MCP endpoint, rendered frames,
// metrics and the health check.
func (s *MCPServer) Handler() http.Handler {
	return s.transport().server.Handler
}

func (s *MCPServer) transport() *httpTransport {
	if s.http != nil {
		return s.http
	}

	streamable := server.NewStreamableHTTPServer(s.mcpServer, server.WithEndpointPath(MCPPath))

	router := chi.NewRouter()
	router.Use(s.logRequests)
	router.Handle(MCPPath, streamable)
	router.Handle(sandbox.FramePrefix+"*", s.frames.Handler())
	router.Handle(MetricsPath, metrics.Handler())
	router.Get(HealthPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	s.http = &httpTransport{
		streamable: streamable,
		server: &http.Server{
			Addr:              s.config.HTTPAddress(),
			Handler:           router,
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}
	return s.http
}

func (s *MCPServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("dur", time.Since(start)),
			zap.String("remote", r.RemoteAddr))
	})
}

// ServeHTTP starts the server on HTTP and blocks until it is shut down.
func (s *MCPServer) ServeHTTP() error {
	t := s.transport()
	s.logger.Info("starting MCP server on HTTP",
		zap.String("addr", t.server.Addr),
		zap.String("mcp_path", MCPPath),
		zap.String("frames_path", sandbox.FramePrefix))

	if err := t.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP transport. It is a no-op for stdio.
func (s *MCPServer) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	s.logger.Info("stopping MCP server on HTTP")
	if err := s.http.streamable.Shutdown(ctx); err != nil {
		return err
	}
	return s.http.server.Shutdown(ctx)
}
