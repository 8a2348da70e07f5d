// package conversation owns the transcript of an interactive session.
package conversation

import (
	"context"
	"iter"
	"log/slog"
	"slices"
	"time"

	"github.com/jmuk/convo/pkg/parts"
)

const DefaultMaxShow = 3

// Responder produces the assistant reply for a transcript. Each element of
// the sequence is the cumulative reply so far; the last one is final.
type Responder interface {
	Respond(ctx context.Context, transcript []parts.Message) iter.Seq2[[]parts.Message, error]
}

// ResponderFunc adapts a function to the Responder interface.
type ResponderFunc func(ctx context.Context, transcript []parts.Message) iter.Seq2[[]parts.Message, error]

func (f ResponderFunc) Respond(ctx context.Context, transcript []parts.Message) iter.Seq2[[]parts.Message, error] {
	return f(ctx, transcript)
}

type Config struct {
	// MaxShow is the number of user/assistant pairs shown by History.
	MaxShow int
	// Help is the payload returned for the help command.
	Help string
	// Timeout bounds a single submission. Zero means no limit.
	Timeout time.Duration
	Logger  *slog.Logger
}

type Manager struct {
	responder Responder
	cfg       Config
	logger    *slog.Logger

	transcript []parts.Message
	turns      int
}

func New(responder Responder, cfg Config) *Manager {
	if cfg.MaxShow <= 0 {
		cfg.MaxShow = DefaultMaxShow
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		responder: responder,
		cfg:       cfg,
		logger:    logger,
	}
}

// Turns returns the number of attempted submissions since the last clear.
func (m *Manager) Turns() int {
	return m.turns
}

func (m *Manager) Len() int {
	return len(m.transcript)
}

// Transcript returns a copy of the whole transcript.
func (m *Manager) Transcript() []parts.Message {
	return slices.Clone(m.transcript)
}

// History returns the last MaxShow pairs of messages.
func (m *Manager) History() []parts.Message {
	n := min(2*m.cfg.MaxShow, len(m.transcript))
	return slices.Clone(m.transcript[len(m.transcript)-n:])
}

func (m *Manager) Clear() {
	m.transcript = nil
	m.turns = 0
	m.logger.Info("Conversation history cleared")
}

func (m *Manager) Help() string {
	return m.cfg.Help
}

// Submit sends a plain text as a new turn.
func (m *Manager) Submit(ctx context.Context, text string) ([]parts.Message, error) {
	return m.SubmitContent(ctx, parts.Text(text))
}

// SubmitContent appends the user message, asks the responder with the full
// transcript and appends its final reply. On failure the user message is
// removed again and a *ResponderError is returned.
func (m *Manager) SubmitContent(ctx context.Context, content parts.Content) ([]parts.Message, error) {
	m.turns++
	m.transcript = append(m.transcript, parts.Message{Role: parts.RoleUser, Content: content})
	m.logger.Info("User message added", "round", m.turns, "length", len(m.transcript))

	if m.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.Timeout)
		defer cancel()
	}

	reply, err := m.drain(ctx)
	if err != nil {
		m.rollback()
		m.logger.Error("Turn failed", "round", m.turns, "error", err)
		return nil, &ResponderError{Err: err}
	}
	m.transcript = append(m.transcript, reply...)
	m.logger.Info("Assistant response added", "round", m.turns, "messages", len(reply), "length", len(m.transcript))
	return slices.Clone(reply), nil
}

func (m *Manager) drain(ctx context.Context) ([]parts.Message, error) {
	var last []parts.Message
	received := false
	for snapshot, err := range m.responder.Respond(ctx, slices.Clone(m.transcript)) {
		if err != nil {
			return nil, err
		}
		m.logger.Debug("Received response snapshot", "messages", len(snapshot))
		last = snapshot
		received = true
	}
	// Some responders stop silently on cancellation.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !received {
		return nil, errNoResponse
	}
	if len(last) == 0 {
		return nil, errEmptyResponse
	}
	for _, msg := range last {
		if msg.Role != parts.RoleAssistant {
			return nil, errUnexpectedRoles
		}
	}
	return slices.Clone(last), nil
}

func (m *Manager) rollback() {
	if n := len(m.transcript); n > 0 && m.transcript[n-1].Role == parts.RoleUser {
		m.transcript = m.transcript[:n-1]
	}
}
