// package backends builds a model backend from its raw config entry.
package backends

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/BurntSushi/toml"
	"github.com/jmuk/convo/pkg/agent"
	"github.com/jmuk/convo/pkg/agent/gemini"
	"github.com/jmuk/convo/pkg/agent/openai"
	"github.com/jmuk/convo/pkg/session"
)

type Type string

const (
	TypeOpenAI Type = "openai"
	TypeGemini Type = "gemini"
)

type Config interface {
	Name() string
	NewBackend(ctx context.Context, logger *slog.Logger) (agent.Backend, error)
}

// ConfigFrom decodes a backend entry according to its "type" field.
func ConfigFrom(m map[string]any) (Config, error) {
	btData, ok := m["type"]
	if !ok {
		return nil, fmt.Errorf("missing field type for backend config")
	}
	btStr, ok := btData.(string)
	if !ok {
		return nil, fmt.Errorf("type mismatch for type field: want string got %T", btData)
	}
	marshaled, err := toml.Marshal(m)
	if err != nil {
		return nil, err
	}
	var c Config
	switch Type(btStr) {
	case TypeOpenAI:
		c = &openai.Config{}
	case TypeGemini:
		c = &gemini.Config{}
	default:
		return nil, fmt.Errorf("unknown backend type %s", btStr)
	}
	if err := toml.Unmarshal(marshaled, c); err != nil {
		return nil, err
	}
	return c, nil
}

// New builds the backend for the entry. A nil logger means the "backend"
// log of the session in ctx, if any.
func New(ctx context.Context, m map[string]any, logger *slog.Logger) (agent.Backend, error) {
	c, err := ConfigFrom(m)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger, err = session.LoggerFromContext(ctx, "backend")
		if err != nil {
			return nil, err
		}
	}
	return c.NewBackend(ctx, logger)
}
