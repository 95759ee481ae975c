package core

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the conversational role of a message author.
type Role string

const (
	// RoleSystem marks instruction messages injected by the coordinator.
	RoleSystem Role = "system"
	// RoleUser marks messages authored by a human or an external peer.
	RoleUser Role = "user"
	// RoleAssistant marks messages authored by an agent's model.
	RoleAssistant Role = "assistant"
	// RoleTool marks messages carrying a tool execution result.
	RoleTool Role = "tool"
)

// Message is the primary unit of conversation. After it has been appended to
// a conversation it should be treated as immutable. Messages are ordered by
// append time, not wall-clock time.
//
// SenderID and ToolCallID are optional; ToolCallID is set only on tool-role
// messages and correlates the result with the call that produced it.
type Message struct {
	ID         string    `json:"id"`
	Role       Role      `json:"role"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	SenderID   string    `json:"sender_id,omitempty"`
	ToolCallID string    `json:"tool_call_id,omitempty"`
}

// NewMessage creates a message with a fresh ID and a UTC timestamp.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        NewID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// NewSenderMessage creates a message attributed to a known sender identity.
func NewSenderMessage(role Role, content, senderID string) Message {
	m := NewMessage(role, content)
	m.SenderID = senderID
	return m
}

// NewToolMessage creates a tool-role message carrying the output of an
// executed tool call.
func NewToolMessage(content, toolCallID string) Message {
	m := NewMessage(RoleTool, content)
	m.ToolCallID = toolCallID
	return m
}

// NewID generates a new unique identifier for messages, tool calls and
// lessons. Returns a string representation of a new UUID.
func NewID() string { return uuid.NewString() }
