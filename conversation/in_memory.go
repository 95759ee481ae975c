package conversation

import (
	"sync"

	"github.com/pablof7z/tenex-sub006/core"
)

// InMemoryStore is a volatile Store implementation keeping conversations in a
// process local map. It is safe for concurrent access and best suited for
// tests or single-process coordinators. Each returned conversation is cloned
// to prevent external mutation of internal state.
type InMemoryStore struct {
	mu            sync.RWMutex
	conversations map[storeKey]*Conversation
}

type storeKey struct {
	owner string
	id    string
}

// NewInMemoryStore constructs an empty in-memory conversation store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{conversations: make(map[storeKey]*Conversation)}
}

// Get returns an existing conversation (clone) or creates a new one lazily.
func (s *InMemoryStore) Get(ownerAgentID, conversationID string) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := storeKey{owner: ownerAgentID, id: conversationID}
	if conv, ok := s.conversations[key]; ok {
		return conv.Clone(), nil
	}
	return s.createLocked(key).Clone(), nil
}

// Create forces the creation (or overwriting) of a conversation.
func (s *InMemoryStore) Create(ownerAgentID, conversationID string) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(storeKey{owner: ownerAgentID, id: conversationID}).Clone(), nil
}

// Append adds a message to an existing or newly created conversation.
func (s *InMemoryStore) Append(ownerAgentID, conversationID string, msg core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := storeKey{owner: ownerAgentID, id: conversationID}
	conv, ok := s.conversations[key]
	if !ok {
		conv = s.createLocked(key)
	}
	conv.Append(msg)
	return nil
}

func (s *InMemoryStore) createLocked(key storeKey) *Conversation {
	conv := New(key.id, key.owner)
	s.conversations[key] = conv
	return conv
}
