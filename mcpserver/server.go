package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/isdmx/labhub/config"
	"github.com/isdmx/labhub/hub"
	"github.com/isdmx/labhub/logger"
	"github.com/isdmx/labhub/sandbox"
)

// ServerName is the name announced to MCP clients.
const ServerName = "labhub"

// ServerVersion is the version announced to MCP clients.
const ServerVersion = "1.0.0"

// notFound is returned for unknown subject or program identifiers.
var notFound = map[string]any{"found": false}

// MCPServer represents the MCP server
type MCPServer struct {
	config    *config.Config
	logger    *zap.Logger
	hub       *hub.Service
	frames    *sandbox.FrameStore
	mcpServer *server.MCPServer
	http      *httpTransport
}

// New creates a new MCPServer
func New(cfg *config.Config, log *zap.Logger, svc *hub.Service, frames *sandbox.FrameStore) (*MCPServer, error) {
	s := &MCPServer{
		config: cfg,
		logger: logger.Component(log, "mcp"),
		hub:    svc,
		frames: frames,
	}

	// Log configuration parameters on startup
	s.logger.Info("configuration loaded",
		zap.String("server.transport", cfg.Server.Transport),
		zap.Int("server.http_port", cfg.Server.HTTPPort),
		zap.String("server.public_url", cfg.Server.PublicURL),
		zap.String("catalog.source", cfg.Catalog.Source),
		zap.String("store.backend", cfg.Store.Backend),
		zap.String("store.key_prefix", cfg.Store.KeyPrefix),
		zap.String("sandbox.frame_policy", cfg.Sandbox.FramePolicy),
	)
	if notice := svc.Notice(); notice != "" {
		s.logger.Warn("serving with a degraded catalog", zap.String("notice", notice))
	}

	s.mcpServer = server.NewMCPServer(ServerName, ServerVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Browse lab programs by subject, read and edit their code, "+
			"and run JavaScript or HTML/CSS/JS snippets."),
	)
	s.registerTools()

	return s, nil
}

func subjectArg() map[string]any {
	return map[string]any{"type": "string", "description": "Subject identifier"}
}

func programArg() map[string]any {
	return map[string]any{"type": "string", "description": "Program identifier within the subject"}
}

func (s *MCPServer) registerTools() {
	tools := []struct {
		tool    mcp.Tool
		handler server.ToolHandlerFunc
	}{
		{
			tool: mcp.Tool{
				Name:        "list_subjects",
				Description: "List every subject with its program count",
				InputSchema: mcp.ToolInputSchema{Type: "object", Properties: map[string]any{}},
			},
			handler: s.handleListSubjects,
		},
		{
			tool: mcp.Tool{
				Name:        "open_subject",
				Description: "Open a subject: its programs and the tag and language filter options",
				InputSchema: mcp.ToolInputSchema{
					Type:       "object",
					Properties: map[string]any{"subject_id": subjectArg()},
					Required:   []string{"subject_id"},
				},
			},
			handler: s.handleOpenSubject,
		},
		{
			tool: mcp.Tool{
				Name:        "list_programs",
				Description: "List a subject's programs, optionally filtered by exact tag and language label",
				InputSchema: mcp.ToolInputSchema{
					Type: "object",
					Properties: map[string]any{
						"subject_id": subjectArg(),
						"tag": map[string]any{
							"type":        "string",
							"description": "Only programs carrying this tag",
						},
						"language": map[string]any{
							"type":        "string",
							"description": "Only programs with this language label",
						},
					},
					Required: []string{"subject_id"},
				},
			},
			handler: s.handleListPrograms,
		},
		{
			tool: mcp.Tool{
				Name:        "open_program",
				Description: "Open a program: problem statement, composed code and the user's saved copy",
				InputSchema: mcp.ToolInputSchema{
					Type:       "object",
					Properties: map[string]any{"subject_id": subjectArg(), "program_id": programArg()},
					Required:   []string{"subject_id", "program_id"},
				},
			},
			handler: s.handleOpenProgram,
		},
		{
			tool: mcp.Tool{
				Name:        "compose_program",
				Description: "Return the single document composed from a program's source",
				InputSchema: mcp.ToolInputSchema{
					Type:       "object",
					Properties: map[string]any{"subject_id": subjectArg(), "program_id": programArg()},
					Required:   []string{"subject_id", "program_id"},
				},
			},
			handler: s.handleComposeProgram,
		},
		{
			tool: mcp.Tool{
				Name: "run_program",
				Description: "Run a program. JavaScript runs in an isolated interpreter, HTML/CSS/JS " +
					"snippets are rendered into a sandboxed frame, other languages are view-only",
				InputSchema: mcp.ToolInputSchema{
					Type: "object",
					Properties: map[string]any{
						"subject_id": subjectArg(),
						"program_id": programArg(),
						"code": map[string]any{
							"type":        "string",
							"description": "Edited code to run instead of the saved copy (optional)",
						},
					},
					Required: []string{"subject_id", "program_id"},
				},
			},
			handler: s.handleRunProgram,
		},
		{
			tool: mcp.Tool{
				Name:        "save_user_code",
				Description: "Save code as the user's copy of a program",
				InputSchema: mcp.ToolInputSchema{
					Type: "object",
					Properties: map[string]any{
						"subject_id": subjectArg(),
						"program_id": programArg(),
						"code": map[string]any{
							"type":        "string",
							"description": "Code to save",
						},
					},
					Required: []string{"subject_id", "program_id", "code"},
				},
			},
			handler: s.handleSaveUserCode,
		},
		{
			tool: mcp.Tool{
				Name:        "search_programs",
				Description: "Case-insensitive search over titles, problems, tags, subjects and languages",
				InputSchema: mcp.ToolInputSchema{
					Type: "object",
					Properties: map[string]any{
						"query": map[string]any{
							"type":        "string",
							"description": "Search text; blank lists every program",
						},
					},
				},
			},
			handler: s.handleSearchPrograms,
		},
		{
			tool: mcp.Tool{
				Name:        "list_notes",
				Description: "List reference notes and links",
				InputSchema: mcp.ToolInputSchema{Type: "object", Properties: map[string]any{}},
			},
			handler: s.handleListNotes,
		},
	}

	for _, t := range tools {
		s.mcpServer.AddTool(t.tool, t.handler)
	}
}

func (s *MCPServer) handleListSubjects(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]any{
		"notice":   s.hub.Notice(),
		"subjects": s.hub.Subjects(),
	})
}

func (s *MCPServer) handleOpenSubject(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	subjectID, err := request.RequireString("subject_id")
	if err != nil {
		return nil, fmt.Errorf("subject_id parameter is required: %w", err)
	}

	view, ok := s.hub.OpenSubject(subjectID)
	if !ok {
		return jsonResult(notFound)
	}
	return jsonResult(view)
}

func (s *MCPServer) handleListPrograms(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	subjectID, err := request.RequireString("subject_id")
	if err != nil {
		return nil, fmt.Errorf("subject_id parameter is required: %w", err)
	}

	cards, ok := s.hub.Programs(subjectID, request.GetString("tag", ""), request.GetString("language", ""))
	if !ok {
		return jsonResult(notFound)
	}
	return jsonResult(map[string]any{"subject_id": subjectID, "programs": cards})
}

func (s *MCPServer) handleOpenProgram(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	subjectID, programID, err := requireProgram(request)
	if err != nil {
		return nil, err
	}

	detail, ok, err := s.hub.OpenProgram(ctx, subjectID, programID)
	if err != nil {
		return s.failure("open program", subjectID, programID, err), nil
	}
	if !ok {
		return jsonResult(notFound)
	}
	return jsonResult(detail)
}

func (s *MCPServer) handleComposeProgram(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	subjectID, programID, err := requireProgram(request)
	if err != nil {
		return nil, err
	}

	doc, ok := s.hub.Compose(subjectID, programID)
	if !ok {
		return jsonResult(notFound)
	}
	return jsonResult(map[string]any{"subject_id": subjectID, "program_id": programID, "document": doc})
}

func (s *MCPServer) handleRunProgram(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	subjectID, programID, err := requireProgram(request)
	if err != nil {
		return nil, err
	}
	code := request.GetString("code", "")

	s.logger.Info("program run requested",
		zap.String("subject_id", subjectID),
		zap.String("program_id", programID),
		zap.Bool("edited", code != ""))

	view, ok, err := s.hub.Run(ctx, subjectID, programID, code)
	if err != nil {
		return s.failure("run program", subjectID, programID, err), nil
	}
	if !ok {
		return jsonResult(notFound)
	}
	return jsonResult(view)
}

func (s *MCPServer) handleSaveUserCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	subjectID, programID, err := requireProgram(request)
	if err != nil {
		return nil, err
	}
	code, err := request.RequireString("code")
	if err != nil {
		return nil, fmt.Errorf("code parameter is required: %w", err)
	}

	view, ok, err := s.hub.SaveUserCopy(ctx, subjectID, programID, code)
	if err != nil {
		return s.failure("save user code", subjectID, programID, err), nil
	}
	if !ok {
		return jsonResult(notFound)
	}
	return jsonResult(view)
}

func (s *MCPServer) handleSearchPrograms(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.hub.Search(request.GetString("query", "")))
}

func (s *MCPServer) handleListNotes(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]any{"notes": s.hub.Notes()})
}

func requireProgram(request mcp.CallToolRequest) (subjectID, programID string, err error) {
	subjectID, err = request.RequireString("subject_id")
	if err != nil {
		return "", "", fmt.Errorf("subject_id parameter is required: %w", err)
	}
	programID, err = request.RequireString("program_id")
	if err != nil {
		return "", "", fmt.Errorf("program_id parameter is required: %w", err)
	}
	return subjectID, programID, nil
}

func (s *MCPServer) failure(action, subjectID, programID string, err error) *mcp.CallToolResult {
	s.logger.Error(action+" failed",
		zap.Error(err),
		zap.String("subject_id", subjectID),
		zap.String("program_id", programID))
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: fmt.Sprintf("Failed to %s: %v", action, err),
			},
		},
		IsError: true,
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: string(data),
			},
		},
	}, nil
}

// ServeStdio starts the server on stdio
func (s *MCPServer) ServeStdio() error {
	s.logger.Info("starting MCP server on stdio")
	return server.ServeStdio(s.mcpServer)
}

// GetMCPServer returns the underlying MCP server for fx
func (s *MCPServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}
