package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jmuk/convo/pkg/agent"
	"google.golang.org/genai"
)

type Config struct {
	ConfigName      string `toml:"name"`
	ModelName       string `toml:"model_name"`
	APIKey          string `toml:"api_key,omitempty"`
	APIKeyFromEnv   string `toml:"api_key_env,omitempty"`
	Backend         string `toml:"backend,omitempty"`
	Project         string `toml:"project,omitempty"`
	Location        string `toml:"location,omitempty"`
	IncludeThoughts bool   `toml:"include_thoughts,omitempty"`
}

func (gc *Config) Name() string {
	return gc.ConfigName
}

func (gc *Config) clientConfig() (*genai.ClientConfig, error) {
	backend := genai.BackendUnspecified
	switch gc.Backend {
	case "":
	case genai.BackendGeminiAPI.String():
		backend = genai.BackendGeminiAPI
	case genai.BackendVertexAI.String():
		backend = genai.BackendVertexAI
	default:
		return nil, fmt.Errorf("unknown gemini backend %q", gc.Backend)
	}
	apiKey := gc.APIKey
	if gc.APIKeyFromEnv != "" {
		apiKey = os.Getenv(gc.APIKeyFromEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("environment variable %s not found", gc.APIKeyFromEnv)
		}
	}
	return &genai.ClientConfig{
		APIKey:   apiKey,
		Backend:  backend,
		Project:  gc.Project,
		Location: gc.Location,
	}, nil
}

func (gc *Config) NewBackend(ctx context.Context, logger *slog.Logger) (agent.Backend, error) {
	if gc.ModelName == "" {
		return nil, fmt.Errorf("backend %s: model_name is required", gc.ConfigName)
	}
	cc, err := gc.clientConfig()
	if err != nil {
		return nil, err
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Backend{
		models:          client.Models,
		modelName:       gc.ModelName,
		includeThoughts: gc.IncludeThoughts,
		logger:          logger,
	}, nil
}
