package openai

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jmuk/convo/pkg/agent"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

type Config struct {
	ConfigName    string `toml:"name"`
	BaseURL       string `toml:"base_url"`
	APIKey        string `toml:"api_key"`
	APIKeyFromEnv string `toml:"api_key_env"`
	ModelName     string `toml:"model_name"`
}

func (c *Config) Name() string {
	return c.ConfigName
}

func (c *Config) GetOpts() ([]option.RequestOption, error) {
	var opts []option.RequestOption
	if c.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(c.BaseURL))
	}
	if c.APIKeyFromEnv != "" {
		apikey := os.Getenv(c.APIKeyFromEnv)
		if apikey == "" {
			return nil, fmt.Errorf("environment variable %s not found", c.APIKeyFromEnv)
		}
		opts = append(opts, option.WithAPIKey(apikey))
	} else if c.APIKey != "" {
		opts = append(opts, option.WithAPIKey(c.APIKey))
	}
	return opts, nil
}

func (c *Config) NewBackend(ctx context.Context, logger *slog.Logger) (agent.Backend, error) {
	if c.ModelName == "" {
		return nil, fmt.Errorf("backend %s: model_name is required", c.ConfigName)
	}
	opts, err := c.GetOpts()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Backend{
		client:    openai.NewChatCompletionService(opts...),
		modelName: c.ModelName,
		logger:    logger,
	}, nil
}
