package eventlog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pablof7z/tenex-sub006/core"
	"github.com/pablof7z/tenex-sub006/reflection"
)

var _ Log = (*InMemoryLog)(nil)

func profile(id, name string) core.AgentProfile {
	return core.AgentProfile{
		Identity:        core.Identity{ID: id, Name: name},
		RoleDescription: name + " does things",
	}
}

func TestInMemoryLog_ProfilesInRegistrationOrder(t *testing.T) {
	log := NewInMemoryLog()
	log.RegisterProfile(profile("b-id", "Bravo"))
	log.RegisterProfile(profile("a-id", "Alpha"))

	profiles, err := log.Profiles(context.Background())
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "Bravo", profiles[0].Identity.Name)
	assert.Equal(t, "Alpha", profiles[1].Identity.Name)
}

func TestInMemoryLog_RegisterReplacesWithoutReordering(t *testing.T) {
	log := NewInMemoryLog()
	log.RegisterProfile(profile("a-id", "Alpha"))
	log.RegisterProfile(profile("b-id", "Bravo"))
	log.RegisterProfile(core.AgentProfile{
		Identity:        core.Identity{ID: "a-id", Name: "Alpha"},
		RoleDescription: "updated role",
	})

	profiles, err := log.Profiles(context.Background())
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "a-id", profiles[0].Identity.ID)
	assert.Equal(t, "updated role", profiles[0].RoleDescription)
}

func TestInMemoryLog_Resolve(t *testing.T) {
	log := NewInMemoryLog()
	log.RegisterProfile(profile("a-id", "Alpha"))

	identity, ok := log.Resolve(context.Background(), "a-id")
	assert.True(t, ok)
	assert.Equal(t, "Alpha", identity.Name)

	_, ok = log.Resolve(context.Background(), "missing")
	assert.False(t, ok)
}

func TestInMemoryLog_LessonsAppendOnly(t *testing.T) {
	log := NewInMemoryLog()
	require.NoError(t, log.PublishLesson(context.Background(), reflection.AgentLesson{ID: "l1", AgentID: "a-id"}))
	require.NoError(t, log.PublishLesson(context.Background(), reflection.AgentLesson{ID: "l2", AgentID: "b-id"}))
	require.NoError(t, log.PublishLesson(context.Background(), reflection.AgentLesson{ID: "l3", AgentID: "a-id"}))

	all := log.Lessons()
	require.Len(t, all, 3)
	assert.Equal(t, "l1", all[0].ID)

	forA := log.LessonsFor("a-id")
	require.Len(t, forA, 2)
	assert.Equal(t, "l1", forA[0].ID)
	assert.Equal(t, "l3", forA[1].ID)
	assert.Empty(t, log.LessonsFor("nobody"))
}
