package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMessage(t *testing.T) {
	msg := NewMessage(RoleUser, "hello")
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, RoleUser, msg.Role)
	assert.Equal(t, "hello", msg.Content)
	assert.False(t, msg.Timestamp.IsZero())
	assert.Empty(t, msg.SenderID)

	other := NewMessage(RoleUser, "hello")
	assert.NotEqual(t, msg.ID, other.ID)
}

func TestNewSenderMessage(t *testing.T) {
	msg := NewSenderMessage(RoleAssistant, "done", "agent-1")
	assert.Equal(t, "agent-1", msg.SenderID)
	assert.Equal(t, RoleAssistant, msg.Role)
}

func TestNewToolMessage(t *testing.T) {
	msg := NewToolMessage("output", "call-1")
	assert.Equal(t, RoleTool, msg.Role)
	assert.Equal(t, "call-1", msg.ToolCallID)
}

func TestTeam_IsMember(t *testing.T) {
	team := Team{ID: "t1", Lead: "lead-id", Members: []string{"m1", "m2"}}
	assert.True(t, team.IsMember("m1"))
	assert.True(t, team.IsMember("lead-id"))
	assert.False(t, team.IsMember("outsider"))
}
