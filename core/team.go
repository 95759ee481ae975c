package core

// Identity names a single agent known to the coordinator. Identities are
// resolved through the external event log; the core only carries the values
// it needs to address and describe an agent.
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AgentProfile pairs an identity with the role description published on the
// external event log. Role descriptions drive reviewer selection.
type AgentProfile struct {
	Identity        Identity `json:"identity"`
	RoleDescription string   `json:"role_description"`
}

// TaskDefinition describes the unit of work a team was assembled for. The
// RequiresReview gate ("greenlight") decides whether completed work is fanned
// out to peer reviewers before being considered done.
type TaskDefinition struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	RequiresReview bool   `json:"requires_review"`
}

// Team is external input to the review subsystem: the lead and members worked
// on the task and are therefore excluded from reviewing it. Teams are not
// owned or mutated by this core.
type Team struct {
	ID             string         `json:"id"`
	Lead           string         `json:"lead"`
	Members        []string       `json:"members"`
	TaskDefinition TaskDefinition `json:"task_definition"`
}

// IsMember reports whether the given agent ID is the lead or a member.
func (t Team) IsMember(agentID string) bool {
	if agentID == t.Lead {
		return true
	}
	for _, m := range t.Members {
		if m == agentID {
			return true
		}
	}
	return false
}
