// package agent implements the responder of a conversation: it drives a
// model backend, runs the tools it asks for and reports the reply.
package agent

import (
	"context"
	"iter"

	"github.com/jmuk/convo/pkg/parts"
	"github.com/jmuk/convo/pkg/tools"
)

// RoleTool marks a turn carrying tool results.
const RoleTool parts.Role = "tool"

type FunctionCall struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

type FunctionResponse struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Result *tools.Result `json:"result,omitempty"`
	Error  error         `json:"-"`
}

// Output is the payload sent back to the model for a tool call.
func (fr *FunctionResponse) Output() map[string]any {
	if fr.Error != nil {
		return map[string]any{
			"success":       false,
			"error_message": fr.Error.Error(),
		}
	}
	output := map[string]any{"success": true}
	if fr.Result != nil {
		if len(fr.Result.Texts) > 0 {
			output["data"] = fr.Result.Texts
		}
		if fr.Result.Structured != nil {
			output["response"] = fr.Result.Structured
		}
	}
	return output
}

// Turn is one entry of the conversation as seen by a backend.
type Turn struct {
	Role parts.Role
	// Content is set for user and assistant turns.
	Content parts.Content
	// Calls is set for assistant turns which requested tools.
	Calls []FunctionCall
	// Responses is set for tool turns.
	Responses []FunctionResponse
}

type Request struct {
	SystemPrompt string
	Turns        []Turn
	Tools        []tools.ToolDefinition
}

// Delta is an increment of the model output: a piece of text or a
// complete function call.
type Delta struct {
	Text string
	Call *FunctionCall
}

type Backend interface {
	Generate(ctx context.Context, req *Request) iter.Seq2[*Delta, error]
}

type ToolRunner interface {
	Defs() []tools.ToolDefinition
	Run(ctx context.Context, name string, in map[string]any) (*tools.Result, error)
}
