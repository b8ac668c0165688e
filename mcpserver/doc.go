// Package mcpserver provides the Model Context Protocol (MCP) server implementation.
//
// The mcpserver package exposes the lab hub as MCP tools: browsing subjects
// and programs, opening and composing programs, saving user copies, global
// search and running programs in the execution sandbox. It uses the
// mark3labs/mcp-go library to handle the protocol details.
//
// Every tool answers with a JSON text result. Unknown subject or program
// identifiers yield {"found":false}; storage failures yield an error result.
//
// The server supports both stdio and HTTP transports as configured by the
// application configuration. Over HTTP it also serves rendered frames under
// /frames/, Prometheus metrics under /metrics and a /healthz probe.
//
// Usage:
//
//	server, err := mcpserver.New(config, logger, hubService, frameStore)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = server.ServeStdio() // or server.ServeHTTP()
package mcpserver
