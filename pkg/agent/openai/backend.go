// package openai implements a backend on the OpenAI chat completion API.
// It also serves OpenAI compatible endpoints such as OpenRouter.
package openai

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"slices"

	"github.com/jmuk/convo/pkg/agent"
	"github.com/openai/openai-go/v3"
)

type Backend struct {
	client    openai.ChatCompletionService
	modelName string
	logger    *slog.Logger
}

// pendingCall accumulates the fragments of a streamed tool call.
type pendingCall struct {
	id   string
	name string
	args []byte
}

func (pc *pendingCall) toCall() (*agent.FunctionCall, error) {
	args := map[string]any{}
	if len(pc.args) > 0 {
		if err := json.Unmarshal(pc.args, &args); err != nil {
			return nil, fmt.Errorf("malformed arguments for %s: %w", pc.name, err)
		}
	}
	return &agent.FunctionCall{ID: pc.id, Name: pc.name, Args: args}, nil
}

type callAccumulator struct {
	calls map[int64]*pendingCall
}

func (acc *callAccumulator) add(tc openai.ChatCompletionChunkChoiceDeltaToolCall) {
	if acc.calls == nil {
		acc.calls = map[int64]*pendingCall{}
	}
	pc, ok := acc.calls[tc.Index]
	if !ok {
		pc = &pendingCall{}
		acc.calls[tc.Index] = pc
	}
	if tc.ID != "" {
		pc.id = tc.ID
	}
	if tc.Function.Name != "" {
		pc.name = tc.Function.Name
	}
	pc.args = append(pc.args, tc.Function.Arguments...)
}

// finish returns the calls in the order of their indices.
func (acc *callAccumulator) finish() ([]*agent.FunctionCall, error) {
	indices := slices.SortedFunc(maps.Keys(acc.calls), cmp.Compare[int64])
	result := make([]*agent.FunctionCall, 0, len(indices))
	for _, idx := range indices {
		call, err := acc.calls[idx].toCall()
		if err != nil {
			return nil, err
		}
		result = append(result, call)
	}
	return result, nil
}

// Generate implements agent.Backend.
func (b *Backend) Generate(ctx context.Context, req *agent.Request) iter.Seq2[*agent.Delta, error] {
	return func(yield func(*agent.Delta, error) bool) {
		messages, err := toMessages(req)
		if err != nil {
			yield(nil, err)
			return
		}
		var toolParams []openai.ChatCompletionToolUnionParam
		for _, tdef := range req.Tools {
			toolParam, err := convertToolDef(tdef)
			if err != nil {
				yield(nil, fmt.Errorf("tool %s: %w", tdef.Name(), err))
				return
			}
			toolParams = append(toolParams, toolParam)
		}
		b.logger.Debug("Sending", "model", b.modelName, "messages", len(messages), "tools", len(toolParams))
		st := b.client.NewStreaming(ctx, openai.ChatCompletionNewParams{
			Messages: messages,
			Model:    b.modelName,
			Tools:    toolParams,
		})
		defer st.Close()

		acc := &callAccumulator{}
		for st.Next() {
			chunk := st.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			delta := chunk.Choices[0].Delta
			for _, tc := range delta.ToolCalls {
				acc.add(tc)
			}
			if delta.Content == "" {
				continue
			}
			if !yield(&agent.Delta{Text: delta.Content}, nil) {
				return
			}
		}
		if err := st.Err(); err != nil {
			b.logger.Error("Stream failed", "error", err)
			yield(nil, err)
			return
		}
		calls, err := acc.finish()
		if err != nil {
			yield(nil, err)
			return
		}
		for _, call := range calls {
			if !yield(&agent.Delta{Call: call}, nil) {
				return
			}
		}
	}
}
