package eventlog

import (
	"context"

	"github.com/pablof7z/tenex-sub006/core"
	"github.com/pablof7z/tenex-sub006/reflection"
)

// Log is the event/identity log collaborator: a registry of agent profiles
// used for reviewer selection, identity resolution by ID, and an append-only
// sink for lessons. The core treats implementations as at-least-once and
// eventually consistent; they must be safe for concurrent use. Durable
// implementations live outside this module.
type Log interface {
	// RegisterProfile adds or replaces an agent profile.
	RegisterProfile(p core.AgentProfile)

	// Profiles returns all known agent profiles.
	Profiles(ctx context.Context) ([]core.AgentProfile, error)

	// Resolve looks up an identity by agent ID.
	Resolve(ctx context.Context, agentID string) (core.Identity, bool)

	// PublishLesson appends a lesson as an immutable entry.
	PublishLesson(ctx context.Context, lesson reflection.AgentLesson) error
}
