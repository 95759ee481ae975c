package eventlog

import (
	"context"
	"sync"

	"github.com/pablof7z/tenex-sub006/core"
	"github.com/pablof7z/tenex-sub006/reflection"
)

// InMemoryLog is a volatile event log keeping agent profiles and published
// lessons in process-local maps. It satisfies review.Directory and
// reflection.Publisher. Safe for concurrent access.
type InMemoryLog struct {
	mu       sync.RWMutex
	profiles map[string]core.AgentProfile
	order    []string
	lessons  []reflection.AgentLesson
}

// NewInMemoryLog constructs an empty in-memory log.
func NewInMemoryLog() *InMemoryLog {
	return &InMemoryLog{profiles: make(map[string]core.AgentProfile)}
}

// RegisterProfile adds or replaces an agent profile.
func (l *InMemoryLog) RegisterProfile(p core.AgentProfile) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.profiles[p.Identity.ID]; !exists {
		l.order = append(l.order, p.Identity.ID)
	}
	l.profiles[p.Identity.ID] = p
}

// Profiles returns all known agent profiles in registration order.
func (l *InMemoryLog) Profiles(_ context.Context) ([]core.AgentProfile, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]core.AgentProfile, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.profiles[id])
	}
	return out, nil
}

// Resolve looks up an identity by ID.
func (l *InMemoryLog) Resolve(_ context.Context, agentID string) (core.Identity, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.profiles[agentID]
	return p.Identity, ok
}

// PublishLesson appends a lesson as an immutable entry.
func (l *InMemoryLog) PublishLesson(_ context.Context, lesson reflection.AgentLesson) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lessons = append(l.lessons, lesson)
	return nil
}

// Lessons returns a copy of every published lesson in append order.
func (l *InMemoryLog) Lessons() []reflection.AgentLesson {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]reflection.AgentLesson, len(l.lessons))
	copy(out, l.lessons)
	return out
}

// LessonsFor returns a copy of the lessons published for one agent.
func (l *InMemoryLog) LessonsFor(agentID string) []reflection.AgentLesson {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []reflection.AgentLesson
	for _, lesson := range l.lessons {
		if lesson.AgentID == agentID {
			out = append(out, lesson)
		}
	}
	return out
}
