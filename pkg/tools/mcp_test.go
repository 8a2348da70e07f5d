package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jmuk/convo/pkg/config"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type queryInput struct {
	SQL string `json:"sql"`
}

// inMemoryFactory connects every new transport to the same server.
type inMemoryFactory struct {
	server *mcp.Server
}

func (f *inMemoryFactory) newTransport(ctx context.Context) (mcp.Transport, error) {
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	if _, err := f.server.Connect(ctx, serverTransport, nil); err != nil {
		return nil, err
	}
	return clientTransport, nil
}

func newSQLiteLikeServer() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "sqlite", Version: "v0.0.1"}, nil)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "read_query",
		Description: "Execute a SELECT query",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in queryInput) (*mcp.CallToolResult, any, error) {
		if !strings.HasPrefix(strings.ToUpper(in.SQL), "SELECT") {
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{&mcp.TextContent{Text: "only SELECT queries are allowed"}},
			}, nil, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("[] rows for %s", in.SQL)}},
		}, nil, nil
	})
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_tables",
		Description: "List the tables",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in struct{}) (*mcp.CallToolResult, any, error) {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: "students"}},
		}, nil, nil
	})
	return server
}

func TestMCPTool(t *testing.T) {
	ctx := context.Background()
	mt := newMCPTool("sqlite", &inMemoryFactory{server: newSQLiteLikeServer()}, nil)
	defer mt.Close()

	r, err := Collect(ctx, nil, []Manager{mt}, nil)
	if err != nil {
		t.Fatal(err)
	}
	names := map[string]string{}
	for _, d := range r.Defs() {
		names[d.Name()] = d.Description()
		if d.RequestSchema() == nil {
			t.Errorf("%s has no request schema", d.Name())
		}
	}
	if names["read_query"] != "Execute a SELECT query" || names["list_tables"] != "List the tables" {
		t.Errorf("unexpected tools %v", names)
	}

	result, err := r.Run(ctx, "read_query", map[string]any{"sql": "SELECT * FROM students"})
	if err != nil {
		t.Fatal(err)
	}
	if got := result.String(); got != "[] rows for SELECT * FROM students" {
		t.Errorf("result = %q", got)
	}

	_, err = r.Run(ctx, "read_query", map[string]any{"sql": "DROP TABLE students"})
	var toolErr *ToolError
	if !errors.As(err, &toolErr) || !strings.Contains(err.Error(), "only SELECT") {
		t.Errorf("got %v, want a tool error", err)
	}
}

func TestNewMCP(t *testing.T) {
	t.Setenv("TEST_TOKEN", "secret")
	cmdTool := NewMCP(config.MCPConfig{
		Name:    "tavily-mcp",
		Command: "npx",
		Args:    []string{"-y", "tavily-mcp@0.1.2"},
		Env:     map[string]string{"TAVILY_API_KEY": "${TEST_TOKEN}"},
	}, nil)
	cf, ok := cmdTool.factory.(*commandFactory)
	if !ok {
		t.Fatalf("factory = %T, want a command factory", cmdTool.factory)
	}
	if cf.command != "npx" || len(cf.args) != 2 || cf.env[0] != "TAVILY_API_KEY=secret" {
		t.Errorf("unexpected command factory %+v", cf)
	}

	httpTool := NewMCP(config.MCPConfig{
		Name:           "remote",
		Endpoint:       "https://example.com/sse",
		RequestHeaders: map[string]string{"Authorization": "Bearer ${TEST_TOKEN}"},
	}, nil)
	hf, ok := httpTool.factory.(*httpFactory)
	if !ok {
		t.Fatalf("factory = %T, want an http factory", httpTool.factory)
	}
	if got := hf.headers.Get("Authorization"); got != "Bearer secret" {
		t.Errorf("Authorization header = %q", got)
	}
}
