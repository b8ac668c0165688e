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
