package openai

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jmuk/convo/pkg/agent"
	"github.com/jmuk/convo/pkg/parts"
	"github.com/jmuk/convo/pkg/tools"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/packages/param"
	"github.com/openai/openai-go/v3/shared"
)

func dataURL(p parts.Part) string {
	return fmt.Sprintf("data:%s;base64,%s", p.MimeType, base64.StdEncoding.EncodeToString(p.Data))
}

func filePart(p parts.Part) openai.ChatCompletionContentPartUnionParam {
	name := filepath.Base(p.File)
	switch {
	case !p.HasData():
		return openai.TextContentPart(agent.MissingFileText(p))
	case strings.HasPrefix(p.MimeType, "image/"):
		return openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL:    dataURL(p),
			Detail: "auto",
		})
	case strings.HasPrefix(p.MimeType, "text/"):
		return openai.TextContentPart(fmt.Sprintf("Content of %s:\n%s", name, p.Data))
	}
	return openai.FileContentPart(openai.ChatCompletionContentPartFileFileParam{
		FileData: param.NewOpt(dataURL(p)),
		Filename: param.NewOpt(name),
	})
}

func userMessage(c parts.Content) openai.ChatCompletionMessageParamUnion {
	if c.Kind() == parts.ContentText {
		return openai.UserMessage(c.Text())
	}
	var content []openai.ChatCompletionContentPartUnionParam
	for _, p := range c.Parts() {
		if !p.IsFile() {
			content = append(content, openai.TextContentPart(p.Text))
			continue
		}
		content = append(content, filePart(p))
	}
	return openai.UserMessage(content)
}

func assistantMessage(t agent.Turn) openai.ChatCompletionMessageParamUnion {
	text := t.Content.Text()
	if len(t.Calls) == 0 {
		return openai.AssistantMessage(text)
	}
	msg := &openai.ChatCompletionAssistantMessageParam{}
	if text != "" {
		msg.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
			OfString: param.NewOpt(text),
		}
	}
	for _, call := range t.Calls {
		args, err := json.Marshal(call.Args)
		if err != nil || call.Args == nil {
			args = []byte("{}")
		}
		msg.ToolCalls = append(msg.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
			OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
				ID: call.ID,
				Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
					Arguments: string(args),
					Name:      call.Name,
				},
				Type: "function",
			},
		})
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: msg}
}

func toolMessages(t agent.Turn) ([]openai.ChatCompletionMessageParamUnion, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(t.Responses))
	for _, fr := range t.Responses {
		output, err := json.Marshal(fr.Output())
		if err != nil {
			return nil, fmt.Errorf("failed to encode the result of %s: %w", fr.Name, err)
		}
		msgs = append(msgs, openai.ToolMessage(string(output), fr.ID))
	}
	return msgs, nil
}

func toMessages(req *agent.Request) ([]openai.ChatCompletionMessageParamUnion, error) {
	var msgs []openai.ChatCompletionMessageParamUnion
	if req.SystemPrompt != "" {
		msgs = append(msgs, openai.SystemMessage(req.SystemPrompt))
	}
	for i, t := range req.Turns {
		switch t.Role {
		case parts.RoleUser:
			msgs = append(msgs, userMessage(t.Content))
		case parts.RoleAssistant:
			// Providers reject an assistant message without content.
			if t.Content.Text() == "" && len(t.Calls) == 0 {
				continue
			}
			msgs = append(msgs, assistantMessage(t))
		case agent.RoleTool:
			tms, err := toolMessages(t)
			if err != nil {
				return nil, err
			}
			msgs = append(msgs, tms...)
		default:
			return nil, fmt.Errorf("turn %d: unknown role %q", i, t.Role)
		}
	}
	return msgs, nil
}

func convertToolDef(d tools.ToolDefinition) (openai.ChatCompletionToolUnionParam, error) {
	encoded, err := json.Marshal(d.RequestSchema())
	if err != nil {
		return openai.ChatCompletionToolUnionParam{}, err
	}
	parameters := map[string]any{}
	if err := json.Unmarshal(encoded, &parameters); err != nil {
		return openai.ChatCompletionToolUnionParam{}, err
	}
	// Some providers reject the meta schema reference.
	delete(parameters, "$schema")
	return openai.ChatCompletionToolUnionParam{
		OfFunction: &openai.ChatCompletionFunctionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        d.Name(),
				Description: param.NewOpt(d.Description()),
				Parameters:  parameters,
			},
			Type: "function",
		},
	}, nil
}
