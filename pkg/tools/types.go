package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/invopop/jsonschema"
)

type ToolDefinition interface {
	Name() string
	Description() string
	RequestSchema() *jsonschema.Schema
	process(ctx context.Context, in map[string]any) (*Result, error)
}

// Result is the outcome of a tool call.
type Result struct {
	// Texts are the text contents in the order the tool returned them.
	Texts []string `json:"texts,omitempty"`
	// Structured is the structured output of the tool, if any.
	Structured any `json:"structured,omitempty"`
}

func (r *Result) String() string {
	if r == nil {
		return ""
	}
	return strings.Join(r.Texts, "\n")
}

// ToolError is an error reported by the tool itself, as opposed to a
// failure to reach it. It should be passed back to the model.
type ToolError struct {
	err error
}

func NewToolError(err error) *ToolError {
	return &ToolError{err: err}
}

func (e *ToolError) Error() string {
	return e.err.Error()
}

func (e *ToolError) Unwrap() error {
	return e.err
}

type toolDefinition[Req any, Resp any] struct {
	name        string
	description string
	proc        func(ctx context.Context, req Req) (Resp, error)
}

// NewTool defines an in-process tool. The request schema is derived from
// the Req type.
func NewTool[Req any, Resp any](name, description string, proc func(ctx context.Context, req Req) (Resp, error)) ToolDefinition {
	return &toolDefinition[Req, Resp]{
		name:        name,
		description: description,
		proc:        proc,
	}
}

func (d *toolDefinition[Req, Resp]) Name() string {
	return d.name
}

func (d *toolDefinition[Req, Resp]) Description() string {
	return d.description
}

func (d *toolDefinition[Req, Resp]) RequestSchema() *jsonschema.Schema {
	var t Req
	return (&jsonschema.Reflector{
		DoNotReference: true,
	}).Reflect(&t)
}

func (d *toolDefinition[Req, Resp]) process(ctx context.Context, in map[string]any) (*Result, error) {
	// Might not be ideal as it copies the data.
	jsonIn, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	var req Req
	if err := json.Unmarshal(jsonIn, &req); err != nil {
		return nil, NewToolError(err)
	}
	resp, err := d.proc(ctx, req)
	if err != nil {
		return nil, NewToolError(err)
	}
	jsonResp, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	var structured any
	if err := json.Unmarshal(jsonResp, &structured); err != nil {
		return nil, err
	}
	return &Result{
		Texts:      []string{string(jsonResp)},
		Structured: structured,
	}, nil
}
