package testutil

import (
	"github.com/pablof7z/tenex-sub006/core"
)

// TeamBuilder helps construct teams with fluent chaining for tests.
// Example:
//
//	team := NewTeamBuilder("team-1").Lead("agent-1").Member("agent-2").
//		Task("Add parser", "Implement tool call parsing", true).Build()
type TeamBuilder struct {
	id      string
	lead    string
	members []string
	task    core.TaskDefinition
}

// NewTeamBuilder creates a new builder for a team with the given id.
// Use chainable methods (Lead, Member, Task) then call Build.
func NewTeamBuilder(id string) *TeamBuilder {
	return &TeamBuilder{id: id}
}

// Lead sets the team lead's agent ID (chainable).
func (b *TeamBuilder) Lead(agentID string) *TeamBuilder {
	b.lead = agentID
	return b
}

// Member appends one or more member agent IDs (chainable).
func (b *TeamBuilder) Member(agentIDs ...string) *TeamBuilder {
	b.members = append(b.members, agentIDs...)
	return b
}

// Task sets the team's task definition (chainable).
func (b *TeamBuilder) Task(title, description string, requiresReview bool) *TeamBuilder {
	b.task = core.TaskDefinition{Title: title, Description: description, RequiresReview: requiresReview}
	return b
}

// Build returns the assembled core.Team.
func (b *TeamBuilder) Build() core.Team {
	return core.Team{
		ID:             b.id,
		Lead:           b.lead,
		Members:        append([]string{}, b.members...),
		TaskDefinition: b.task,
	}
}

// Profile is a shorthand for building an agent profile in tests.
func Profile(id, name, role string) core.AgentProfile {
	return core.AgentProfile{
		Identity:        core.Identity{ID: id, Name: name},
		RoleDescription: role,
	}
}
