// Package logger provides structured logging capabilities.
//
// The logger package sets up and configures the application's logging
// system using zap. All output goes to stderr because stdout carries the
// MCP stdio transport.
//
// Usage:
//
//	log, err := logger.New("production", "info")
//	if err != nil {
//	    panic(err)
//	}
//	storeLog := logger.Component(log, "usercopy")
//	storeLog.Info("store opened", zap.String("backend", "sqlite"))
package logger
