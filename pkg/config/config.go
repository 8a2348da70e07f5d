// package config loads the TOML configuration of convo.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const configFileName = "config.toml"

// Assistant is a profile: what the assistant is told, which backend it
// talks to and which tool servers it can use.
type Assistant struct {
	Name         string      `toml:"name"`
	Title        string      `toml:"title,omitempty"`
	Description  string      `toml:"description,omitempty"`
	Backend      string      `toml:"backend"`
	SystemPrompt string      `toml:"system_prompt"`
	Help         string      `toml:"help,omitempty"`
	Suggestions  []string    `toml:"suggestions,omitempty"`
	// BuiltinTools names the in-process tools offered besides MCP ones.
	BuiltinTools []string    `toml:"builtin_tools,omitempty"`
	MCP          []MCPConfig `toml:"mcp,omitempty"`
}

func (a *Assistant) DisplayName() string {
	if a.Title != "" {
		return a.Title
	}
	return a.Name
}

type Config struct {
	// Assistant is the name of the selected profile. Empty means the user
	// is asked at startup.
	Assistant     string        `toml:"assistant"`
	// LastAssistant is the profile picked at the previous startup.
	LastAssistant string        `toml:"last_assistant,omitempty"`
	LogLevel      slog.Level    `toml:"loglevel"`
	HistorySize   int           `toml:"history_size,omitempty"`
	TurnTimeout   time.Duration `toml:"turn_timeout,omitempty"`
	ToolTimeout   time.Duration `toml:"tool_timeout,omitempty"`
	MaxToolRounds int           `toml:"max_tool_rounds,omitempty"`

	// Backends are kept raw; their shape depends on the "type" field.
	Backends   []map[string]any `toml:"backends"`
	Assistants []Assistant      `toml:"assistants"`
}

// Parse decodes and validates a configuration.
func Parse(data []byte) (*Config, error) {
	c := &Config{}
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func backendName(m map[string]any) (string, error) {
	name, ok := m["name"].(string)
	if !ok || name == "" {
		return "", fmt.Errorf("name: want string got %T", m["name"])
	}
	return name, nil
}

func (c *Config) Validate() error {
	var errs []error
	backends := map[string]bool{}
	for i, b := range c.Backends {
		name, err := backendName(b)
		if err != nil {
			errs = append(errs, fmt.Errorf("%d-th backend: %w", i, err))
			continue
		}
		if backends[name] {
			errs = append(errs, fmt.Errorf("duplicated backend %s", name))
		}
		backends[name] = true
	}
	assistants := map[string]bool{}
	for i, a := range c.Assistants {
		if a.Name == "" {
			errs = append(errs, fmt.Errorf("%d-th assistant: missing name", i))
			continue
		}
		if assistants[a.Name] {
			errs = append(errs, fmt.Errorf("duplicated assistant %s", a.Name))
		}
		assistants[a.Name] = true
		if !backends[a.Backend] {
			errs = append(errs, fmt.Errorf("assistant %s: unknown backend %q", a.Name, a.Backend))
		}
		servers := map[string]bool{}
		for _, m := range a.MCP {
			if err := m.validate(); err != nil {
				errs = append(errs, fmt.Errorf("assistant %s: %w", a.Name, err))
				continue
			}
			if servers[m.Name] {
				errs = append(errs, fmt.Errorf("assistant %s: duplicated mcp server %s", a.Name, m.Name))
			}
			servers[m.Name] = true
		}
	}
	if c.Assistant != "" && !assistants[c.Assistant] {
		errs = append(errs, fmt.Errorf("unknown assistant %q", c.Assistant))
	}
	if c.HistorySize < 0 || c.MaxToolRounds < 0 || c.TurnTimeout < 0 || c.ToolTimeout < 0 {
		errs = append(errs, errors.New("history_size, max_tool_rounds and timeouts must not be negative"))
	}
	return errors.Join(errs...)
}

func (c *Config) AssistantNames() []string {
	names := make([]string, 0, len(c.Assistants))
	for _, a := range c.Assistants {
		names = append(names, a.Name)
	}
	return names
}

func (c *Config) FindAssistant(name string) (*Assistant, error) {
	for i := range c.Assistants {
		if c.Assistants[i].Name == name {
			return &c.Assistants[i], nil
		}
	}
	return nil, fmt.Errorf("assistant %q not found in %v", name, c.AssistantNames())
}

func (c *Config) FindBackend(name string) (map[string]any, error) {
	for _, b := range c.Backends {
		if n, err := backendName(b); err == nil && n == name {
			return b, nil
		}
	}
	return nil, fmt.Errorf("backend %q not found", name)
}

// DefaultConfigFile returns the path of the user's config file.
func DefaultConfigFile() (string, error) {
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userConfigDir, "convo", configFileName), nil
}

func write(path string, c *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads the config file, writing the default configuration when it
// does not exist yet.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		c := Default()
		if err := write(path, c); err != nil {
			return nil, fmt.Errorf("failed to write the default config: %w", err)
		}
		return c, nil
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return c, nil
}

// EditConfig loads the config file, applies the edit and stores the result.
func EditConfig(path string, edit func(c *Config) (*Config, error)) error {
	c, err := Load(path)
	if err != nil {
		return err
	}
	edited, err := edit(c)
	if err != nil {
		return err
	}
	if err := edited.Validate(); err != nil {
		return err
	}
	return write(path, edited)
}
