package conversation

import (
	"sync"
	"time"

	"github.com/pablof7z/tenex-sub006/core"
)

// Conversation tracks one agent's ordered view of a message thread. It is
// safe for concurrent access.
//
// Contract:
//   - Messages are append-only; a message is immutable once added
//   - Append updates LastActivityAt
//   - Messages returns a defensive copy to avoid external mutation
//   - Clone performs deep copies of maps/slices for safe divergence
type Conversation struct {
	ID             string                   `json:"id"`
	OwnerAgentID   string                   `json:"owner_agent_id"`
	Messages       []core.Message           `json:"messages"`
	Participants   map[string]core.Identity `json:"participants"`
	CreatedAt      time.Time                `json:"created_at"`
	LastActivityAt time.Time                `json:"last_activity_at"`
	mu             sync.RWMutex
}

// New creates an empty conversation owned by the given agent.
func New(id, ownerAgentID string) *Conversation {
	now := time.Now().UTC()
	return &Conversation{
		ID:             id,
		OwnerAgentID:   ownerAgentID,
		Messages:       []core.Message{},
		Participants:   map[string]core.Identity{},
		CreatedAt:      now,
		LastActivityAt: now,
	}
}

// Append adds a message to the history updating LastActivityAt.
func (c *Conversation) Append(msg core.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Messages = append(c.Messages, msg)
	c.LastActivityAt = time.Now().UTC()
}

// AddParticipant records an identity as part of this thread. Adding the same
// identity twice is a no-op.
func (c *Conversation) AddParticipant(id core.Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Participants[id.ID] = id
}

// MessageList returns a defensive copy of the full message slice.
func (c *Conversation) MessageList() []core.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	msgs := make([]core.Message, len(c.Messages))
	copy(msgs, c.Messages)
	return msgs
}

// Len returns the number of messages in the conversation.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.Messages)
}

// LastMessages returns a copy of the trailing n messages (or all of them if
// fewer exist). Used when building review and correction prompts.
func (c *Conversation) LastMessages(n int) []core.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if n <= 0 || n > len(c.Messages) {
		n = len(c.Messages)
	}
	msgs := make([]core.Message, n)
	copy(msgs, c.Messages[len(c.Messages)-n:])
	return msgs
}

// Clone returns a deep copy of the conversation safe for independent mutation.
func (c *Conversation) Clone() *Conversation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	clone := &Conversation{
		ID:             c.ID,
		OwnerAgentID:   c.OwnerAgentID,
		Messages:       make([]core.Message, len(c.Messages)),
		Participants:   make(map[string]core.Identity, len(c.Participants)),
		CreatedAt:      c.CreatedAt,
		LastActivityAt: c.LastActivityAt,
	}
	copy(clone.Messages, c.Messages)
	for k, v := range c.Participants {
		clone.Participants[k] = v
	}
	return clone
}

// Store persists conversations keyed by owner agent and conversation ID.
type Store interface {
	Get(ownerAgentID, conversationID string) (*Conversation, error)
	Create(ownerAgentID, conversationID string) (*Conversation, error)
	Append(ownerAgentID, conversationID string, msg core.Message) error
}
