// package gemini implements a backend on the Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/jmuk/convo/pkg/agent"
	"github.com/jmuk/convo/pkg/parts"
	"github.com/jmuk/convo/pkg/tools"
	"google.golang.org/genai"
)

type Backend struct {
	models          *genai.Models
	modelName       string
	includeThoughts bool
	logger          *slog.Logger
}

// normalizeTypes converts JSON schema type names to the upper case
// names genai expects.
func normalizeTypes(s *genai.Schema) {
	if s == nil {
		return
	}
	s.Type = genai.Type(strings.ToUpper(string(s.Type)))
	for _, p := range s.Properties {
		normalizeTypes(p)
	}
	normalizeTypes(s.Items)
	for _, a := range s.AnyOf {
		normalizeTypes(a)
	}
}

func toSchema(s *jsonschema.Schema) (*genai.Schema, error) {
	encoded, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	decoded := &genai.Schema{}
	if err := json.Unmarshal(encoded, decoded); err != nil {
		return nil, err
	}
	normalizeTypes(decoded)
	return decoded, nil
}

func toFunctionDeclarations(defs []tools.ToolDefinition) ([]*genai.FunctionDeclaration, error) {
	funcs := make([]*genai.FunctionDeclaration, 0, len(defs))
	for _, d := range defs {
		params, err := toSchema(d.RequestSchema())
		if err != nil {
			return nil, fmt.Errorf("failed to encode request schema for %s: %w", d.Name(), err)
		}
		funcs = append(funcs, &genai.FunctionDeclaration{
			Name:        d.Name(),
			Description: d.Description(),
			Behavior:    genai.BehaviorBlocking,
			Parameters:  params,
		})
	}
	return funcs, nil
}

func userParts(c parts.Content) []*genai.Part {
	var result []*genai.Part
	for _, p := range c.Parts() {
		switch {
		case !p.IsFile():
			result = append(result, genai.NewPartFromText(p.Text))
		case !p.HasData():
			result = append(result, genai.NewPartFromText(agent.MissingFileText(p)))
		default:
			result = append(result, genai.NewPartFromBytes(p.Data, p.MimeType))
		}
	}
	return result
}

func toContents(turns []agent.Turn) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(turns))
	for i, t := range turns {
		switch t.Role {
		case parts.RoleUser:
			contents = append(contents, &genai.Content{Role: string(genai.RoleUser), Parts: userParts(t.Content)})
		case parts.RoleAssistant:
			var ps []*genai.Part
			if text := t.Content.Text(); text != "" {
				ps = append(ps, genai.NewPartFromText(text))
			}
			for _, call := range t.Calls {
				ps = append(ps, &genai.Part{FunctionCall: &genai.FunctionCall{
					ID:   call.ID,
					Name: call.Name,
					Args: call.Args,
				}})
			}
			// A content without parts is rejected.
			if len(ps) == 0 {
				continue
			}
			contents = append(contents, &genai.Content{Role: string(genai.RoleModel), Parts: ps})
		case agent.RoleTool:
			ps := make([]*genai.Part, 0, len(t.Responses))
			for _, fr := range t.Responses {
				ps = append(ps, &genai.Part{FunctionResponse: &genai.FunctionResponse{
					ID:       fr.ID,
					Name:     fr.Name,
					Response: fr.Output(),
				}})
			}
			contents = append(contents, &genai.Content{Role: string(genai.RoleUser), Parts: ps})
		default:
			return nil, fmt.Errorf("turn %d: unknown role %q", i, t.Role)
		}
	}
	return contents, nil
}

func (b *Backend) generateConfig(req *agent.Request) (*genai.GenerateContentConfig, error) {
	config := &genai.GenerateContentConfig{}
	if req.SystemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}
	if len(req.Tools) > 0 {
		funcs, err := toFunctionDeclarations(req.Tools)
		if err != nil {
			return nil, err
		}
		config.Tools = []*genai.Tool{{FunctionDeclarations: funcs}}
	}
	if b.includeThoughts {
		config.ThinkingConfig = &genai.ThinkingConfig{IncludeThoughts: true}
	}
	return config, nil
}

// Generate implements agent.Backend.
func (b *Backend) Generate(ctx context.Context, req *agent.Request) iter.Seq2[*agent.Delta, error] {
	return func(yield func(*agent.Delta, error) bool) {
		contents, err := toContents(req.Turns)
		if err != nil {
			yield(nil, err)
			return
		}
		config, err := b.generateConfig(req)
		if err != nil {
			yield(nil, err)
			return
		}
		b.logger.Debug("Sending", "model", b.modelName, "contents", len(contents))
		for result, err := range b.models.GenerateContentStream(ctx, b.modelName, contents, config) {
			if err != nil {
				b.logger.Error("Stream failed", "error", err)
				yield(nil, err)
				return
			}
			for _, d := range deltasOf(result, b.logger) {
				if !yield(d, nil) {
					return
				}
			}
		}
	}
}

func deltasOf(result *genai.GenerateContentResponse, logger *slog.Logger) []*agent.Delta {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return nil
	}
	var deltas []*agent.Delta
	for _, part := range result.Candidates[0].Content.Parts {
		if fc := part.FunctionCall; fc != nil {
			args := fc.Args
			if args == nil {
				args = map[string]any{}
			}
			deltas = append(deltas, &agent.Delta{Call: &agent.FunctionCall{
				ID:   fc.ID,
				Name: fc.Name,
				Args: args,
			}})
			continue
		}
		if part.Thought {
			logger.Debug("Thought", "text", part.Text)
			continue
		}
		if part.Text != "" {
			deltas = append(deltas, &agent.Delta{Text: part.Text})
		}
	}
	return deltas
}
