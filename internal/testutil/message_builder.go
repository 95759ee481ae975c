package testutil

import (
	"time"

	"github.com/pablof7z/tenex-sub006/core"
)

// MessageBuilder provides a fluent helper for constructing messages in tests.
// Example:
//
//	msg := NewMessageBuilder().Sender("agent-1").AssistantText("hello").Build()
//
// Chain only the parts you need; sensible defaults are applied.
type MessageBuilder struct {
	id         string
	role       core.Role
	content    string
	senderID   string
	toolCallID string
	timestamp  *time.Time
}

// NewMessageBuilder creates a builder defaulting to an empty assistant message.
func NewMessageBuilder() *MessageBuilder { return &MessageBuilder{role: core.RoleAssistant} }

// ID overrides the auto-generated message ID (chainable). Use mainly in tests
// where determinism matters.
func (b *MessageBuilder) ID(id string) *MessageBuilder { b.id = id; return b }

// Sender sets the sending agent's ID (chainable).
func (b *MessageBuilder) Sender(id string) *MessageBuilder { b.senderID = id; return b }

// At sets an explicit timestamp (chainable).
func (b *MessageBuilder) At(t time.Time) *MessageBuilder { b.timestamp = &t; return b }

// SystemText sets system role content (chainable).
func (b *MessageBuilder) SystemText(t string) *MessageBuilder {
	b.role = core.RoleSystem
	b.content = t
	return b
}

// UserText sets user role content (chainable).
func (b *MessageBuilder) UserText(t string) *MessageBuilder {
	b.role = core.RoleUser
	b.content = t
	return b
}

// AssistantText sets assistant role content (chainable).
func (b *MessageBuilder) AssistantText(t string) *MessageBuilder {
	b.role = core.RoleAssistant
	b.content = t
	return b
}

// ToolResult sets tool role content referencing a tool call (chainable).
func (b *MessageBuilder) ToolResult(toolCallID, t string) *MessageBuilder {
	b.role = core.RoleTool
	b.content = t
	b.toolCallID = toolCallID
	return b
}

// Build constructs the core.Message value.
func (b *MessageBuilder) Build() core.Message {
	msg := core.NewMessage(b.role, b.content)
	if b.id != "" {
		msg.ID = b.id
	}
	if b.senderID != "" {
		msg.SenderID = b.senderID
	}
	if b.toolCallID != "" {
		msg.ToolCallID = b.toolCallID
	}
	if b.timestamp != nil {
		msg.Timestamp = *b.timestamp
	}
	return msg
}
