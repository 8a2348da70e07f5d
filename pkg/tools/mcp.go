package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/jmuk/convo/pkg/config"
	"github.com/jmuk/convo/pkg/session"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type transportFactory interface {
	newTransport(ctx context.Context) (mcp.Transport, error)
}

type commandFactory struct {
	command string
	args    []string
	env     []string
}

func (cf *commandFactory) newTransport(ctx context.Context) (mcp.Transport, error) {
	cmd := exec.Command(cf.command, cf.args...)
	if len(cf.env) > 0 {
		cmd.Env = append(os.Environ(), cf.env...)
	}
	return &mcp.CommandTransport{Command: cmd}, nil
}

type httpFactory struct {
	endpoint string
	headers  http.Header
}

type headerAddingRoundTripper struct {
	headers      http.Header
	roundTripper http.RoundTripper
}

func (rt *headerAddingRoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	for k, v := range rt.headers {
		if _, ok := r.Header[k]; !ok {
			r.Header[k] = v
		}
	}
	return rt.roundTripper.RoundTrip(r)
}

func (hsf *httpFactory) newTransport(ctx context.Context) (mcp.Transport, error) {
	transport := &mcp.SSEClientTransport{
		Endpoint: hsf.endpoint,
	}
	if len(hsf.headers) > 0 {
		transport.HTTPClient = &http.Client{
			Transport: &headerAddingRoundTripper{
				headers:      hsf.headers,
				roundTripper: http.DefaultTransport,
			},
		}
	}
	return transport, nil
}

// MCPTool is a connection to one MCP server. The session used for tool
// calls is opened on the first call and kept until Close.
type MCPTool struct {
	name    string
	client  *mcp.Client
	factory transportFactory
	logger  *slog.Logger
	trace   io.Writer

	clientSession *mcp.ClientSession
}

func newMCPTool(name string, factory transportFactory, s *session.Session) *MCPTool {
	mt := &MCPTool{
		name:    name,
		factory: factory,
		logger:  slog.New(slog.DiscardHandler),
	}
	if s != nil {
		logname := strings.ReplaceAll(name, "/", "_")
		if len(logname) > 64 {
			logname = logname[:64]
		}
		if l, err := s.GetLogger("mcp-" + logname); err == nil {
			mt.logger = l
		}
		if f, err := s.GetLogFile(fmt.Sprintf("mcp-%s-log.txt", logname)); err == nil {
			mt.trace = f
		}
	}
	mt.client = mcp.NewClient(
		&mcp.Implementation{
			Name:    "convo",
			Version: "v0.1.0",
		},
		&mcp.ClientOptions{
			LoggingMessageHandler: mt.logMessage,
		},
	)
	return mt
}

// NewMCP creates the tool for a configured MCP server. s may be nil.
func NewMCP(c config.MCPConfig, s *session.Session) *MCPTool {
	if c.Endpoint != "" {
		var h http.Header
		if headers := c.ExpandedHeaders(); len(headers) > 0 {
			h = http.Header{}
			for k, v := range headers {
				h.Add(k, v)
			}
		}
		return newMCPTool(c.Name, &httpFactory{endpoint: c.Endpoint, headers: h}, s)
	}
	return newMCPTool(c.Name, &commandFactory{
		command: c.Command,
		args:    c.Args,
		env:     c.ExpandedEnv(),
	}, s)
}

type mcpToolDefinition struct {
	name        string
	description string
	inSchema    *jsonschema.Schema

	mt *MCPTool
}

func (mtd *mcpToolDefinition) Name() string {
	return mtd.name
}

func (mtd *mcpToolDefinition) Description() string {
	return mtd.description
}

func (mtd *mcpToolDefinition) RequestSchema() *jsonschema.Schema {
	return mtd.inSchema
}

func (mtd *mcpToolDefinition) process(ctx context.Context, in map[string]any) (*Result, error) {
	return mtd.mt.process(ctx, mtd.name, in)
}

func (mt *MCPTool) Name() string {
	return mt.name
}

func (mt *MCPTool) Close() error {
	var err error
	if mt.clientSession != nil {
		err = mt.clientSession.Close()
		mt.clientSession = nil
	}
	return err
}

func (mt *MCPTool) logMessage(ctx context.Context, msg *mcp.LoggingMessageRequest) {
	p := msg.Params
	lvl := slog.LevelInfo
	switch p.Level {
	case "debug":
		lvl = slog.LevelDebug
	case "warning":
		lvl = slog.LevelWarn
	case "error", "critical", "alert", "emergency":
		lvl = slog.LevelError
	}
	mt.logger.Log(ctx, lvl, "log request", "logger", p.Logger, "data", p.Data)
}

func (mt *MCPTool) newSession(ctx context.Context) (*mcp.ClientSession, error) {
	transport, err := mt.factory.newTransport(ctx)
	if err != nil {
		return nil, err
	}
	if mt.trace != nil {
		transport = &mcp.LoggingTransport{
			Transport: transport,
			Writer:    mt.trace,
		}
	}
	cs, err := mt.client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mcp server %s: %w", mt.name, err)
	}
	return cs, nil
}

func (mt *MCPTool) getSession(ctx context.Context) (*mcp.ClientSession, error) {
	if mt.clientSession != nil {
		return mt.clientSession, nil
	}
	cs, err := mt.newSession(ctx)
	if err != nil {
		return nil, err
	}
	mt.clientSession = cs
	return cs, nil
}

func (mt *MCPTool) process(ctx context.Context, name string, in map[string]any) (*Result, error) {
	sess, err := mt.getSession(ctx)
	if err != nil {
		return nil, err
	}
	result, err := sess.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: in,
	})
	if err != nil {
		return nil, err
	}
	var texts []string
	for _, content := range result.Content {
		tc, ok := content.(*mcp.TextContent)
		if !ok {
			mt.logger.Warn("unsupported content", "tool", name, "content", content)
			continue
		}
		texts = append(texts, tc.Text)
	}
	if result.IsError {
		return nil, NewToolError(errors.New(strings.Join(texts, "\n")))
	}
	return &Result{
		Texts:      texts,
		Structured: result.StructuredContent,
	}, nil
}

func convertSchema(s any) (*jsonschema.Schema, error) {
	if s == nil {
		return &jsonschema.Schema{Type: "object"}, nil
	}
	encoded, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	schema := &jsonschema.Schema{}
	if err := json.Unmarshal(encoded, schema); err != nil {
		return nil, err
	}
	return schema, nil
}

// ToolDefs lists the tools of the server.
func (mt *MCPTool) ToolDefs(ctx context.Context) ([]ToolDefinition, error) {
	session, err := mt.getSession(ctx)
	if err != nil {
		return nil, err
	}
	var cursor string
	var results []ToolDefinition
	for {
		tools, err := session.ListTools(ctx, &mcp.ListToolsParams{
			Cursor: cursor,
		})
		if err != nil {
			return nil, err
		}
		for _, t := range tools.Tools {
			inSchema, err := convertSchema(t.InputSchema)
			if err != nil {
				return nil, fmt.Errorf("input schema of %s: %w", t.Name, err)
			}
			results = append(results, &mcpToolDefinition{
				name:        t.Name,
				description: t.Description,
				inSchema:    inSchema,
				mt:          mt,
			})
		}
		if tools.NextCursor == "" {
			break
		}
		cursor = tools.NextCursor
	}
	mt.logger.Info("Listed tools", "server", mt.name, "count", len(results))
	return results, nil
}
