package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/pablof7z/tenex-sub006/core"
	"github.com/pablof7z/tenex-sub006/tool"
)

// ToolDefinition declaratively exposes a callable function to the model in
// the provider-native shape.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the
// model. Parameters is a JSON Schema object (draft agnostic, minimal subset
// expected).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema
}

// ToolSchema converts catalog definitions into the provider-native tool
// declaration list.
func ToolSchema(defs []tool.Definition) []ToolDefinition {
	if len(defs) == 0 {
		return nil
	}
	out := make([]ToolDefinition, 0, len(defs))
	for _, def := range defs {
		out = append(out, ToolDefinition{
			Type: "function",
			Function: FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.JSONSchema(),
			},
		})
	}
	return out
}

// Request captures the normalized input for one model call.
type Request struct {
	Messages []core.Message        `json:"messages"`
	Config   core.GenerationConfig `json:"config"`
	Tools    []ToolDefinition      `json:"tools,omitempty"`
}

// Response is the assistant output of one model call. Usage is optional and
// additive; multi-pass operations merge usage with core.TokenUsage.Add.
type Response struct {
	Content string           `json:"content"`
	Model   string           `json:"model"`
	Usage   *core.TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "mock", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required to ask a language model for one
// response.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// ProviderError wraps an upstream model failure. It is propagated only to
// the immediate caller of the specific model call that failed.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error { return e.Err }

// MockModel is a lightweight in-memory Model useful for tests & examples.
// Responses can be keyed by the last message content or scripted as an
// ordered queue; scripted responses win when present.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	responses map[string]string
	queue     []string
	calls     int
	requests  []Request
	failWith  error
}

// NewMockModel constructs a MockModel with basic tool support enabled.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info: Info{
			Name:          name,
			Provider:      provider,
			SupportsTools: true,
		},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// Enqueue appends scripted responses returned in order on subsequent calls.
func (m *MockModel) Enqueue(responses ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, responses...)
}

// FailWith makes every subsequent call return the given error.
func (m *MockModel) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

// CallCount returns the number of Generate invocations so far.
func (m *MockModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Requests returns a copy of every request seen so far.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	reqs := make([]Request, len(m.requests))
	copy(reqs, m.requests)
	return reqs
}

// Generate implements Model using canned or scripted responses.
func (m *MockModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.requests = append(m.requests, req)

	if m.failWith != nil {
		return nil, m.failWith
	}

	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		return m.respond(next), nil
	}

	var lastContent string
	if len(req.Messages) > 0 {
		lastContent = req.Messages[len(req.Messages)-1].Content
	}
	if canned, ok := m.responses[lastContent]; ok {
		return m.respond(canned), nil
	}
	return m.respond(fmt.Sprintf("Mock response to: %s", lastContent)), nil
}

func (m *MockModel) respond(content string) *Response {
	return &Response{
		Content: content,
		Model:   m.info.Name,
		Usage:   &core.TokenUsage{PromptTokens: 10, CompletionTokens: len(content) / 4},
	}
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }
