package review

import (
	"fmt"
	"strings"
	"time"
)

// DecisionKind is a single reviewer's verdict category.
type DecisionKind string

const (
	// DecisionApprove accepts the work as-is.
	DecisionApprove DecisionKind = "approve"
	// DecisionReject declines the work outright.
	DecisionReject DecisionKind = "reject"
	// DecisionRevise asks for changes before acceptance.
	DecisionRevise DecisionKind = "revise"
)

// Status is the aggregated outcome of a review round.
type Status string

const (
	// StatusNotRequired means no reviewers were available or review was not requested.
	StatusNotRequired Status = "not_required"
	// StatusApproved means every responding reviewer approved.
	StatusApproved Status = "approved"
	// StatusRejected means at least one reviewer rejected.
	StatusRejected Status = "rejected"
	// StatusRevisionNeeded means no rejections but at least one revision request.
	StatusRevisionNeeded Status = "revision_needed"
)

// Request describes the completed unit of work submitted for peer review.
type Request struct {
	TeamID          string    `json:"team_id"`
	ConversationID  string    `json:"conversation_id"`
	TaskDescription string    `json:"task_description"`
	WorkSummary     string    `json:"work_summary"`
	Timestamp       time.Time `json:"timestamp"`
}

// Decision is one reviewer's independent verdict. Missing or failed
// reviewers simply produce none.
type Decision struct {
	ReviewerID       string       `json:"reviewer_id"`
	Decision         DecisionKind `json:"decision"`
	Feedback         string       `json:"feedback"`
	Confidence       float64      `json:"confidence"` // in [0,1]
	SuggestedChanges []string     `json:"suggested_changes,omitempty"`
	Timestamp        time.Time    `json:"timestamp"`
}

// Result is the aggregated review outcome. It is derived from its decisions
// and never persisted independently of them.
type Result struct {
	Status             Status     `json:"status"`
	Decisions          []Decision `json:"decisions,omitempty"`
	AggregatedFeedback string     `json:"aggregated_feedback,omitempty"`
	RequiredChanges    []string   `json:"required_changes,omitempty"`
	Confidence         float64    `json:"confidence,omitempty"`
}

// Aggregate reduces a decision list to one outcome. It is a pure function,
// independent of decision order:
//
//   - empty input: not_required
//   - any reject: rejected, confidence = min confidence among rejectors
//   - no reject but any revise: revision_needed, collecting all suggested changes
//   - all approve: approved, confidence = mean of all confidences
//
// AggregatedFeedback is always the concatenation of each decision's feedback,
// attributed by reviewer.
func Aggregate(decisions []Decision) Result {
	if len(decisions) == 0 {
		return Result{Status: StatusNotRequired}
	}

	var (
		rejectConf = 1.0
		hasReject  bool
		hasRevise  bool
		confSum    float64
		changes    []string
		feedback   []string
	)
	for _, d := range decisions {
		confSum += d.Confidence
		if d.Feedback != "" {
			feedback = append(feedback, fmt.Sprintf("%s: %s", d.ReviewerID, d.Feedback))
		}
		switch d.Decision {
		case DecisionReject:
			hasReject = true
			if d.Confidence < rejectConf {
				rejectConf = d.Confidence
			}
		case DecisionRevise:
			hasRevise = true
			changes = append(changes, d.SuggestedChanges...)
		}
	}

	result := Result{
		Decisions:          decisions,
		AggregatedFeedback: strings.Join(feedback, "\n"),
	}

	switch {
	case hasReject:
		result.Status = StatusRejected
		result.Confidence = rejectConf
	case hasRevise:
		result.Status = StatusRevisionNeeded
		result.RequiredChanges = changes
		result.Confidence = confSum / float64(len(decisions))
	default:
		result.Status = StatusApproved
		result.Confidence = confSum / float64(len(decisions))
	}
	return result
}
