package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmuk/convo/pkg/config"
	"github.com/jmuk/convo/pkg/session"
)

type Manager interface {
	ToolDefs(ctx context.Context) ([]ToolDefinition, error)
	Close() error
}

// NewManagers creates one manager per MCP server, in configuration order.
func NewManagers(servers []config.MCPConfig, s *session.Session) []Manager {
	mgrs := make([]Manager, 0, len(servers))
	for _, c := range servers {
		mgrs = append(mgrs, NewMCP(c, s))
	}
	return mgrs
}

// Collect lists the tools of every manager and builds the runner. The
// builtin tools come first.
func Collect(ctx context.Context, builtin []ToolDefinition, mgrs []Manager, logger *slog.Logger) (*ToolRunner, error) {
	defs := append([]ToolDefinition(nil), builtin...)
	for i, m := range mgrs {
		tds, err := m.ToolDefs(ctx)
		if err != nil {
			name := fmt.Sprintf("%d-th tool server", i)
			if mt, ok := m.(*MCPTool); ok {
				name = mt.Name()
			}
			return nil, fmt.Errorf("failed to list tools of %s: %w", name, err)
		}
		defs = append(defs, tds...)
	}
	return NewToolRunner(defs, logger)
}

func CloseAll(mgrs []Manager) error {
	var errs []error
	for _, m := range mgrs {
		errs = append(errs, m.Close())
	}
	return errors.Join(errs...)
}
