// Package openai provides a provider.Model adapter for the OpenAI Chat
// Completions API, including function/tool declarations.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/pablof7z/tenex-sub006/core"
	"github.com/pablof7z/tenex-sub006/provider"
)

// Options configure the OpenAI model adapter.
// Fields mirror a subset of Chat Completion parameters intentionally kept
// minimal; extend via functional options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Model wraps the OpenAI Chat Completions API behind the generic
// provider.Model interface. Native tool_calls in responses are re-encoded
// into the textual function_call form so the orchestrator's parser handles
// native and text-embedded tool calls uniformly.
type Model struct {
	client *openai.Client
	opts   Options
}

// NewModel creates a new OpenAI model using the official client
func NewModel(optFns ...func(o *Options)) *Model {
	client := openai.NewClient()
	return NewModelFromClient(&client, optFns...)
}

// NewModelFromClient creates a new OpenAI model from an existing client
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Generate implements provider.Model over the OpenAI Chat Completions API.
func (m *Model) Generate(ctx context.Context, req provider.Request) (*provider.Response, error) {
	params := m.buildParams(req)

	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai api error: no choices returned")
	}

	choice := resp.Choices[0]
	content := choice.Message.Content
	for _, tc := range choice.Message.ToolCalls {
		content += renderToolCall(tc.Function.Name, tc.Function.Arguments)
	}

	return &provider.Response{
		Content: content,
		Model:   resp.Model,
		Usage: &core.TokenUsage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			CacheTokens:      int(resp.Usage.PromptTokensDetails.CachedTokens),
		},
	}, nil
}

// renderToolCall re-encodes a native tool call into the tagged textual form
// recognized by the tool parser.
func renderToolCall(name, args string) string {
	if args == "" {
		args = "{}"
	}
	return fmt.Sprintf("\n<tool_use>{\"tool\": %q, \"arguments\": %s}</tool_use>", name, args)
}

// buildMessages converts core messages into OpenAI chat messages. Tool
// results travel as plain user text since tool traffic is text-encoded in
// this core.
func buildMessages(msgs []core.Message) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion
	for _, msg := range msgs {
		if msg.Content == "" {
			continue
		}
		switch msg.Role {
		case core.RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		case core.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		case core.RoleTool:
			messages = append(messages, openai.UserMessage(fmt.Sprintf("[tool result] %s", msg.Content)))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}
	return messages
}

// buildParams assembles the OpenAI request parameters including tool definitions.
func (m *Model) buildParams(req provider.Request) openai.ChatCompletionNewParams {
	modelID := m.opts.Model
	if req.Config.Model != "" {
		modelID = req.Config.Model
	}
	temperature := m.opts.Temperature
	if req.Config.Temperature > 0 {
		temperature = req.Config.Temperature
	}
	maxTokens := m.opts.MaxCompletionTokens
	if req.Config.MaxTokens > 0 {
		maxTokens = int64(req.Config.MaxTokens)
	}

	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(req.Messages),
		Model:               modelID,
		Temperature:         openai.Float(temperature),
		MaxCompletionTokens: openai.Int(maxTokens),
	}
	if len(req.Tools) == 0 {
		return params
	}
	tools := make([]openai.ChatCompletionToolParam, len(req.Tools))
	for i, tdef := range req.Tools {
		tools[i] = openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        tdef.Function.Name,
				Description: openai.String(tdef.Function.Description),
				Parameters:  tdef.Function.Parameters,
			},
		}
	}
	params.Tools = tools
	return params
}

// Info returns metadata describing this OpenAI model implementation.
func (m *Model) Info() provider.Info {
	return provider.Info{
		Name:          m.opts.Model,
		Provider:      "openai",
		SupportsTools: true,
	}
}
