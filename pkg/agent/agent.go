package agent

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/jmuk/convo/pkg/parts"
	"github.com/jmuk/convo/pkg/tools"
)

const (
	DefaultMaxToolRounds = 8
	DefaultToolTimeout   = time.Minute
)

type Options struct {
	SystemPrompt  string
	MaxToolRounds int
	ToolTimeout   time.Duration
	Logger        *slog.Logger
}

// Assistant answers a transcript with one or more assistant messages.
// It keeps no state between calls.
type Assistant struct {
	backend Backend
	runner  ToolRunner
	opts    Options
	logger  *slog.Logger
}

// New creates an assistant. runner may be nil when no tools are configured.
func New(backend Backend, runner ToolRunner, opts Options) *Assistant {
	if opts.MaxToolRounds <= 0 {
		opts.MaxToolRounds = DefaultMaxToolRounds
	}
	if opts.ToolTimeout <= 0 {
		opts.ToolTimeout = DefaultToolTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Assistant{
		backend: backend,
		runner:  runner,
		opts:    opts,
		logger:  logger,
	}
}

func toTurns(transcript []parts.Message) []Turn {
	turns := make([]Turn, 0, len(transcript))
	for _, msg := range transcript {
		turns = append(turns, Turn{Role: msg.Role, Content: msg.Content})
	}
	return turns
}

// Respond yields the cumulative reply after every piece of text. Every
// model step producing text contributes one assistant message.
func (a *Assistant) Respond(ctx context.Context, transcript []parts.Message) iter.Seq2[[]parts.Message, error] {
	return func(yield func([]parts.Message, error) bool) {
		var defs []tools.ToolDefinition
		if a.runner != nil {
			defs = a.runner.Defs()
		}
		turns := toTurns(transcript)
		var reply []parts.Message
		for round := 0; ; round++ {
			if round >= a.opts.MaxToolRounds {
				yield(nil, fmt.Errorf("gave up after %d tool rounds", a.opts.MaxToolRounds))
				return
			}
			req := &Request{
				SystemPrompt: a.opts.SystemPrompt,
				Turns:        turns,
				Tools:        defs,
			}
			a.logger.Debug("Sending", "round", round, "turns", len(turns))
			text := &strings.Builder{}
			var calls []FunctionCall
			startIdx := len(reply)
			for delta, err := range a.backend.Generate(ctx, req) {
				if err != nil {
					yield(nil, err)
					return
				}
				if delta.Call != nil {
					a.logger.Debug("Received function call", "call", delta.Call)
					calls = append(calls, *delta.Call)
					continue
				}
				if delta.Text == "" {
					continue
				}
				text.WriteString(delta.Text)
				msg := parts.AssistantText(text.String())
				if len(reply) == startIdx {
					reply = append(reply, msg)
				} else {
					reply[startIdx] = msg
				}
				if !yield(slices.Clone(reply), nil) {
					return
				}
			}
			if len(calls) == 0 {
				break
			}
			responses, err := a.runCalls(ctx, calls)
			if err != nil {
				yield(nil, err)
				return
			}
			turns = append(turns,
				Turn{Role: parts.RoleAssistant, Content: parts.Text(text.String()), Calls: calls},
				Turn{Role: RoleTool, Responses: responses},
			)
		}
		if len(reply) == 0 {
			yield([]parts.Message{parts.AssistantText("")}, nil)
		}
	}
}

func (a *Assistant) runCalls(ctx context.Context, calls []FunctionCall) ([]FunctionResponse, error) {
	responses := make([]FunctionResponse, 0, len(calls))
	for _, call := range calls {
		fr := FunctionResponse{ID: call.ID, Name: call.Name}
		if a.runner == nil {
			fr.Error = fmt.Errorf("unknown tool %s", call.Name)
			responses = append(responses, fr)
			continue
		}
		callCtx, cancel := context.WithTimeout(ctx, a.opts.ToolTimeout)
		result, err := a.runner.Run(callCtx, call.Name, call.Args)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			var toolErr *tools.ToolError
			if !errors.As(err, &toolErr) && !errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("tool %s: %w", call.Name, err)
			}
			a.logger.Info("Tool reported an error", "name", call.Name, "error", err)
			fr.Error = err
		}
		fr.Result = result
		responses = append(responses, fr)
	}
	return responses, nil
}
