package tools

import (
	"context"
	"fmt"
	"log/slog"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ToolRunner dispatches tool calls by name. Definitions keep the order in
// which they were registered.
type ToolRunner struct {
	defs   *orderedmap.OrderedMap[string, ToolDefinition]
	logger *slog.Logger
}

func NewToolRunner(defs []ToolDefinition, logger *slog.Logger) (*ToolRunner, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := orderedmap.New[string, ToolDefinition](len(defs))
	for _, d := range defs {
		if _, ok := m.Get(d.Name()); ok {
			return nil, fmt.Errorf("duplicated tool name %s", d.Name())
		}
		m.Set(d.Name(), d)
	}
	return &ToolRunner{defs: m, logger: logger}, nil
}

// Defs returns the definitions in registration order.
func (r *ToolRunner) Defs() []ToolDefinition {
	defs := make([]ToolDefinition, 0, r.defs.Len())
	for pair := r.defs.Oldest(); pair != nil; pair = pair.Next() {
		defs = append(defs, pair.Value)
	}
	return defs
}

func (r *ToolRunner) Run(ctx context.Context, name string, in map[string]any) (*Result, error) {
	d, ok := r.defs.Get(name)
	if !ok {
		return nil, NewToolError(fmt.Errorf("unknown tool %s", name))
	}
	r.logger.Debug("Running tool", "name", name, "args", in)
	result, err := d.process(ctx, in)
	if err != nil {
		r.logger.Warn("Tool failed", "name", name, "error", err)
		return nil, err
	}
	r.logger.Debug("Tool finished", "name", name, "result", result.String())
	return result, nil
}
