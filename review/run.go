package review

import (
	"context"

	"github.com/pablof7z/tenex-sub006/core"
)

// Run drives one full review round: honor the task's greenlight gate, select
// reviewers, collect verdicts, aggregate. It never returns an error; every
// failure path degrades to a deterministic Result.
func (c *Coordinator) Run(ctx context.Context, team core.Team, conversationID string, history []core.Message, excludeMembers []string) Result {
	if !team.TaskDefinition.RequiresReview {
		return Result{Status: StatusNotRequired}
	}

	reviewers := c.SelectReviewers(ctx, team, excludeMembers)
	if len(reviewers) == 0 {
		return Result{Status: StatusNotRequired}
	}

	req := NewRequest(team, conversationID, history)
	decisions := c.CollectReviews(ctx, reviewers, history, req)
	return Aggregate(decisions)
}
