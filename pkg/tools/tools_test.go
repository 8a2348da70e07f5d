package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type addRequest struct {
	A int `json:"a" jsonschema:"required"`
	B int `json:"b" jsonschema:"required"`
}

type addResponse struct {
	Sum int `json:"sum"`
}

func addTool() ToolDefinition {
	return NewTool("add", "Add two numbers", func(ctx context.Context, req addRequest) (addResponse, error) {
		if req.A < 0 || req.B < 0 {
			return addResponse{}, errors.New("negative numbers are not supported")
		}
		return addResponse{Sum: req.A + req.B}, nil
	})
}

func echoTool(name string) ToolDefinition {
	return NewTool(name, "Echo the text", func(ctx context.Context, req struct {
		Text string `json:"text"`
	}) (string, error) {
		return req.Text, nil
	})
}

func TestRequestSchema(t *testing.T) {
	s := addTool().RequestSchema()
	if s.Type != "object" {
		t.Errorf("schema type = %q, want object", s.Type)
	}
	if diff := cmp.Diff([]string{"a", "b"}, s.Required); diff != "" {
		t.Errorf("required mismatch (-want +got):\n%s", diff)
	}
	if _, ok := s.Properties.Get("a"); !ok {
		t.Error("property a is missing")
	}
}

func TestRunner(t *testing.T) {
	ctx := context.Background()
	r, err := NewToolRunner([]ToolDefinition{addTool(), echoTool("echo")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, d := range r.Defs() {
		names = append(names, d.Name())
	}
	if diff := cmp.Diff([]string{"add", "echo"}, names); diff != "" {
		t.Errorf("definition order mismatch (-want +got):\n%s", diff)
	}

	result, err := r.Run(ctx, "add", map[string]any{"a": 2, "b": 3})
	if err != nil {
		t.Fatal(err)
	}
	if got := result.String(); got != `{"sum":5}` {
		t.Errorf("result = %q", got)
	}
	if diff := cmp.Diff(map[string]any{"sum": float64(5)}, result.Structured); diff != "" {
		t.Errorf("structured mismatch (-want +got):\n%s", diff)
	}

	_, err = r.Run(ctx, "add", map[string]any{"a": -1, "b": 3})
	var toolErr *ToolError
	if !errors.As(err, &toolErr) || !strings.Contains(err.Error(), "negative") {
		t.Errorf("got %v, want a tool error about negative numbers", err)
	}

	_, err = r.Run(ctx, "sub", nil)
	if !errors.As(err, &toolErr) {
		t.Errorf("got %v, want a tool error for an unknown tool", err)
	}
}

func TestRunnerDuplicated(t *testing.T) {
	_, err := NewToolRunner([]ToolDefinition{echoTool("echo"), addTool(), echoTool("echo")}, nil)
	if err == nil || !strings.Contains(err.Error(), "duplicated tool name echo") {
		t.Errorf("got %v, want a duplication error", err)
	}
}

func TestResultString(t *testing.T) {
	var r *Result
	if r.String() != "" {
		t.Error("nil result should render empty")
	}
	r = &Result{Texts: []string{"a", "b"}}
	if r.String() != "a\nb" {
		t.Errorf("String() = %q", r.String())
	}
}
