package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// MCPConfig defines a configuration to connect to a MCP server.
type MCPConfig struct {
	Name           string            `toml:"name"`
	Command        string            `toml:"command,omitempty"`
	Args           []string          `toml:"args,omitempty"`
	Env            map[string]string `toml:"env,omitempty"`
	Endpoint       string            `toml:"endpoint,omitempty"`
	RequestHeaders map[string]string `toml:"request_headers,omitempty"`
}

func (c MCPConfig) String() string {
	if c.Endpoint != "" {
		return fmt.Sprintf("%s: %s", c.Name, c.Endpoint)
	}
	return fmt.Sprintf("%s: %s", c.Name, strings.Join(append([]string{c.Command}, c.Args...), " "))
}

func (c MCPConfig) validate() error {
	if c.Name == "" {
		return fmt.Errorf("mcp server without name")
	}
	if c.Command == "" && c.Endpoint == "" {
		return fmt.Errorf("mcp server %s: either command or endpoint must be specified", c.Name)
	}
	if c.Command != "" && c.Endpoint != "" {
		return fmt.Errorf("mcp server %s: command and endpoint are exclusive", c.Name)
	}
	return nil
}

// ExpandedEnv returns the extra environment of the server as KEY=VALUE
// pairs sorted by key. Values may refer to the process environment as
// $VAR or ${VAR}.
func (c MCPConfig) ExpandedEnv() []string {
	keys := make([]string, 0, len(c.Env))
	for k := range c.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+os.ExpandEnv(c.Env[k]))
	}
	return env
}

// ExpandedHeaders expands the environment references in header values.
func (c MCPConfig) ExpandedHeaders() map[string]string {
	if len(c.RequestHeaders) == 0 {
		return nil
	}
	h := make(map[string]string, len(c.RequestHeaders))
	for k, v := range c.RequestHeaders {
		h[k] = os.ExpandEnv(v)
	}
	return h
}
