// Package main is the entry point for the LabHub MCP server.
//
// The LabHub server publishes a catalog of lab programs grouped by subject
// over the Model Context Protocol (MCP). Clients browse and search programs,
// keep an edited copy of each one, and run them: JavaScript executes in an
// isolated interpreter, HTML/CSS/JS snippets are composed into a document
// served from a sandboxed frame, and other languages are view-only. The
// server supports both stdio and HTTP transports.
//
// The application uses Uber's fx framework for dependency injection and lifecycle
// management, with zap for structured logging and viper for configuration.
package main

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/isdmx/labhub/config"
	"github.com/isdmx/labhub/hub"
	"github.com/isdmx/labhub/logger"
	"github.com/isdmx/labhub/mcpserver"
	"github.com/isdmx/labhub/metrics"
	"github.com/isdmx/labhub/sandbox"
	"github.com/isdmx/labhub/usercopy"
)

func main() {
	app := fx.New(
		// Provide dependencies
		fx.Provide(
			// Config
			config.New,

			// Logger with configuration
			logger.NewFromConfig,

			// User copy store based on config
			usercopy.NewFromConfig,

			// Rendering frames and the sandbox executor
			sandbox.NewFrameStoreFromConfig,
			sandbox.NewExecutorFromConfig,

			// Catalog and hub operations
			hub.NewFromConfig,

			// MCP Server
			mcpserver.New,
		),

		// Start the appropriate transport based on config
		fx.Invoke(serve),

		// Use the application logger for fx logs
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)

	// Start the application
	app.Run()
}

func serve(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	log *zap.Logger,
	server *mcpserver.MCPServer,
) {
	metrics.Register()

	var run func() error
	switch cfg.Server.Transport {
	case config.TransportStdio:
		run = server.ServeStdio
	case config.TransportHTTP:
		run = server.ServeHTTP
	default:
		panic("unsupported transport: " + cfg.Server.Transport)
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				err := run()
				if err != nil {
					log.Error("transport stopped", zap.String("transport", cfg.Server.Transport), zap.Error(err))
				} else if cfg.Server.Transport != config.TransportStdio {
					return
				}
				// Stdio ends when the client closes stdin; take the process down with it.
				if shutdownErr := shutdowner.Shutdown(); shutdownErr != nil {
					log.Warn("shutdown request failed", zap.Error(shutdownErr))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	})
}
