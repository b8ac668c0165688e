package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/isdmx/labhub/config"
	"github.com/isdmx/labhub/hub"
	"github.com/isdmx/labhub/sandbox"
	"github.com/isdmx/labhub/usercopy"
)

// MockSandboxExecutor implements sandbox.SandboxExecutor for testing
type MockSandboxExecutor struct {
	executeResult sandbox.Outcome
	executeError  error
}

func (m *MockSandboxExecutor) Execute(_ context.Context, _ sandbox.Request) (sandbox.Outcome, error) {
	return m.executeResult, m.executeError
}

type brokenStore struct{}

func (brokenStore) Load(context.Context, string, string) (string, bool, error) {
	return "", false, errors.New("connection refused")
}

func (brokenStore) Save(context.Context, string, string, string) error {
	return errors.New("connection refused")
}

func (brokenStore) Backend() string { return "broken" }

func (brokenStore) Close() error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Transport: config.TransportHTTP, HTTPPort: 8080},
		Catalog: config.CatalogConfig{Source: filepath.Join("..", "testdata", "programs.json")},
		Store:   config.StoreConfig{Backend: config.StoreMemory, KeyPrefix: usercopy.DefaultKeyPrefix},
		Sandbox: config.SandboxConfig{FramePolicy: "sandbox allow-scripts allow-modals"},
		Logging: config.LoggingConfig{Mode: "development", Level: "debug"},
	}
}

func newTestServer(t *testing.T, store usercopy.Store, executor sandbox.SandboxExecutor) *MCPServer {
	t.Helper()
	logger := zaptest.NewLogger(t)
	cfg := testConfig()
	frames := sandbox.NewFrameStoreFromConfig(cfg)
	if store == nil {
		store = usercopy.NewMemoryStore(cfg.Store.KeyPrefix)
	}
	if executor == nil {
		executor = sandbox.NewExecutorFromConfig(logger, frames)
	}

	svc := hub.NewFromConfig(cfg, logger, store, executor, frames)
	server, err := New(cfg, logger, svc, frames)
	require.NoError(t, err)
	return server
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultJSON(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	require.NotNil(t, res)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func TestNewMCPServer(t *testing.T) {
	server := newTestServer(t, nil, nil)
	assert.NotNil(t, server.GetMCPServer())
	assert.NotNil(t, server.hub)
	assert.Equal(t, config.TransportHTTP, server.config.Server.Transport)
}

func TestBrowseTools(t *testing.T) {
	server := newTestServer(t, nil, nil)
	ctx := context.Background()

	res, err := server.handleListSubjects(ctx, callRequest(nil))
	require.NoError(t, err)
	out := resultJSON(t, res)
	assert.Empty(t, out["notice"])
	assert.Len(t, out["subjects"], 2)

	res, err = server.handleOpenSubject(ctx, callRequest(map[string]any{"subject_id": "web"}))
	require.NoError(t, err)
	out = resultJSON(t, res)
	assert.Equal(t, []any{"basics", "dom", "loops"}, out["tags"])
	assert.Equal(t, []any{"HTML/CSS/JS", "JavaScript"}, out["languages"])

	res, err = server.handleListPrograms(ctx, callRequest(map[string]any{"subject_id": "web", "tag": "dom"}))
	require.NoError(t, err)
	out = resultJSON(t, res)
	programs, ok := out["programs"].([]any)
	require.True(t, ok)
	require.Len(t, programs, 1)
	assert.Equal(t, "greeting", programs[0].(map[string]any)["id"])

	res, err = server.handleSearchPrograms(ctx, callRequest(map[string]any{"query": "fizz"}))
	require.NoError(t, err)
	out = resultJSON(t, res)
	assert.Equal(t, `Found 1 program(s) for "fizz".`, out["summary"])

	res, err = server.handleListNotes(ctx, callRequest(nil))
	require.NoError(t, err)
	out = resultJSON(t, res)
	assert.Len(t, out["notes"], 1)
}

func TestUnknownIdentifiers(t *testing.T) {
	server := newTestServer(t, nil, nil)
	ctx := context.Background()
	unknown := map[string]any{"subject_id": "web", "program_id": "nope", "code": "x"}

	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"open_subject":    server.handleOpenSubject,
		"list_programs":   server.handleListPrograms,
		"open_program":    server.handleOpenProgram,
		"compose_program": server.handleComposeProgram,
		"run_program":     server.handleRunProgram,
		"save_user_code":  server.handleSaveUserCode,
	}
	for name, handler := range handlers {
		t.Run(name, func(t *testing.T) {
			args := unknown
			if name == "open_subject" || name == "list_programs" {
				args = map[string]any{"subject_id": "nope"}
			}
			res, err := handler(ctx, callRequest(args))
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"found": false}, resultJSON(t, res))
		})
	}
}

func TestMissingArguments(t *testing.T) {
	server := newTestServer(t, nil, nil)
	ctx := context.Background()

	_, err := server.handleOpenSubject(ctx, callRequest(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "subject_id parameter is required")

	_, err = server.handleRunProgram(ctx, callRequest(map[string]any{"subject_id": "web"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "program_id parameter is required")

	_, err = server.handleSaveUserCode(ctx, callRequest(map[string]any{"subject_id": "web", "program_id": "fizzbuzz"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code parameter is required")
}

func TestProgramTools(t *testing.T) {
	server := newTestServer(t, nil, nil)
	ctx := context.Background()
	fizz := map[string]any{"subject_id": "web", "program_id": "fizzbuzz"}

	res, err := server.handleComposeProgram(ctx, callRequest(fizz))
	require.NoError(t, err)
	out := resultJSON(t, res)
	assert.Equal(t, "for (let i = 1; i <= 15; i++) { console.log(i); }", out["document"])

	res, err = server.handleSaveUserCode(ctx, callRequest(map[string]any{
		"subject_id": "web",
		"program_id": "fizzbuzz",
		"code":       "console.log('saved'); 'done'",
	}))
	require.NoError(t, err)
	out = resultJSON(t, res)
	assert.Equal(t, hub.StatusSaved, out["status"])

	res, err = server.handleOpenProgram(ctx, callRequest(fizz))
	require.NoError(t, err)
	out = resultJSON(t, res)
	assert.Equal(t, "console.log('saved'); 'done'", out["user_code"])
	assert.Equal(t, true, out["has_user_copy"])
	assert.Equal(t, "Web Technologies • JavaScript", out["meta"])

	// Without edited code the saved copy runs.
	res, err = server.handleRunProgram(ctx, callRequest(fizz))
	require.NoError(t, err)
	out = resultJSON(t, res)
	assert.Equal(t, "run_script", out["mode"])
	assert.Equal(t, "Console output:\nsaved\n\nReturn value:\ndone", out["output"])

	res, err = server.handleRunProgram(ctx, callRequest(map[string]any{
		"subject_id": "web",
		"program_id": "fizzbuzz",
		"code":       "throw new TypeError('bad input')",
	}))
	require.NoError(t, err)
	out = resultJSON(t, res)
	assert.Equal(t, true, out["failed"])
	assert.Equal(t, "Error while executing JavaScript:\nTypeError: bad input", out["output"])
}

func TestInfrastructureErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("Store", func(t *testing.T) {
		server := newTestServer(t, brokenStore{}, nil)
		res, err := server.handleSaveUserCode(ctx, callRequest(map[string]any{
			"subject_id": "web", "program_id": "fizzbuzz", "code": "1",
		}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "Failed to save user code")
	})

	t.Run("Executor", func(t *testing.T) {
		server := newTestServer(t, nil, &MockSandboxExecutor{executeError: context.DeadlineExceeded})
		res, err := server.handleRunProgram(ctx, callRequest(map[string]any{
			"subject_id": "web", "program_id": "fizzbuzz",
		}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "Failed to run program")
	})
}

func TestHTTPRoutes(t *testing.T) {
	server := newTestServer(t, nil, nil)
	srv := httptest.NewServer(server.Handler())
	defer srv.Close()

	get := func(path string) (*http.Response, string) {
		t.Helper()
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp, string(body)
	}

	resp, body := get(HealthPath)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body)

	// Frames are empty until the program is rendered.
	resp, body = get("/frames/web/greeting")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body)

	res, err := server.handleRunProgram(context.Background(), callRequest(map[string]any{
		"subject_id": "web", "program_id": "greeting",
	}))
	require.NoError(t, err)
	out := resultJSON(t, res)
	assert.Equal(t, "/frames/web/greeting", out["frame_url"])

	resp, body = get("/frames/web/greeting")
	assert.Equal(t, "sandbox allow-scripts allow-modals", resp.Header.Get("Content-Security-Policy"))
	assert.Contains(t, body, "<style>\np { color: teal; }\n</style>")

	resp, body = get(MetricsPath)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "labhub_runs_total")

	require.NoError(t, server.Shutdown(context.Background()))
}

func TestShutdownWithoutHTTP(t *testing.T) {
	server := newTestServer(t, nil, nil)
	require.NoError(t, server.Shutdown(context.Background()))
}
