package review

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/pablof7z/tenex-sub006/core"
	"github.com/pablof7z/tenex-sub006/internal/util"
	"github.com/pablof7z/tenex-sub006/logging"
	"github.com/pablof7z/tenex-sub006/provider"
)

// DefaultMaxReviewers bounds how many peers review one unit of work.
const DefaultMaxReviewers = 3

// DefaultTimeout is the global deadline for one review collection round.
const DefaultTimeout = 5 * time.Minute

// DefaultContextMessages is how many trailing conversation messages are
// included in a review prompt.
const DefaultContextMessages = 10

// Directory lists the agents known to the project, with the role
// descriptions published on the external event log.
type Directory interface {
	Profiles(ctx context.Context) ([]core.AgentProfile, error)
}

// ModelResolver returns the model used to ask a given reviewer for a
// verdict. Returning nil makes the coordinator fall back to its selection
// model.
type ModelResolver func(reviewerID string) provider.Model

// CoordinatorOptions configures a Coordinator instance.
type CoordinatorOptions struct {
	MaxReviewers    int
	Timeout         time.Duration
	ContextMessages int
	Logger          logging.Logger
	ReviewerModels  ModelResolver
	// Rand drives the fallback random selection; defaults to a time-seeded
	// source. Tests inject a deterministic one.
	Rand *rand.Rand
}

// Coordinator selects reviewers and gathers their verdicts in parallel under
// a global timeout.
type Coordinator struct {
	model     provider.Model
	directory Directory
	cfg       core.GenerationConfig
	opts      CoordinatorOptions
	logger    logging.Logger
}

// NewCoordinator creates a review coordinator. The model is used for
// reviewer selection and as the fallback reviewer model.
func NewCoordinator(model provider.Model, directory Directory, cfg core.GenerationConfig, optFns ...func(o *CoordinatorOptions)) *Coordinator {
	opts := CoordinatorOptions{
		MaxReviewers:    DefaultMaxReviewers,
		Timeout:         DefaultTimeout,
		ContextMessages: DefaultContextMessages,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Coordinator{model: model, directory: directory, cfg: cfg, opts: opts, logger: opts.Logger}
}

// SelectReviewers picks up to MaxReviewers agents from the known pool,
// excluding team members, the team lead and explicit exclusions. An empty
// pool yields an empty list, which callers treat as "no review required".
// Selection never fails outright: when the model's ranking cannot be parsed
// into candidate names, a uniform random subset is chosen instead.
func (c *Coordinator) SelectReviewers(ctx context.Context, team core.Team, excludeMembers []string) []core.AgentProfile {
	profiles, err := c.directory.Profiles(ctx)
	if err != nil {
		c.logger.Warn("review.select.directory_error", "error", err.Error())
		return nil
	}

	excluded := make(map[string]bool, len(team.Members)+len(excludeMembers)+1)
	excluded[team.Lead] = true
	for _, m := range team.Members {
		excluded[m] = true
	}
	for _, m := range excludeMembers {
		excluded[m] = true
	}

	var pool []core.AgentProfile
	for _, p := range profiles {
		if !excluded[p.Identity.ID] && !excluded[p.Identity.Name] {
			pool = append(pool, p)
		}
	}
	if len(pool) == 0 {
		return nil
	}
	if len(pool) <= c.opts.MaxReviewers {
		return pool
	}

	if selected := c.rankWithModel(ctx, team, pool); len(selected) > 0 {
		return selected
	}
	return c.randomSubset(pool)
}

// rankWithModel asks the selection model to pick the most relevant
// candidates. Returns nil when the response cannot be matched to the pool.
func (c *Coordinator) rankWithModel(ctx context.Context, team core.Team, pool []core.AgentProfile) []core.AgentProfile {
	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Task: %s\n\n", team.TaskDefinition.Description)
	prompt.WriteString("Candidate reviewers:\n")
	for _, p := range pool {
		fmt.Fprintf(&prompt, "- %s: %s\n", p.Identity.Name, p.RoleDescription)
	}
	fmt.Fprintf(&prompt, "\nSelect up to %d reviewers most relevant to the task. Respond with a JSON array of candidate names, nothing else.", c.opts.MaxReviewers)

	resp, err := c.model.Generate(ctx, provider.Request{
		Messages: []core.Message{core.NewMessage(core.RoleUser, prompt.String())},
		Config:   c.cfg,
	})
	if err != nil {
		c.logger.Warn("review.select.model_error", "error", err.Error())
		return nil
	}

	byName := make(map[string]core.AgentProfile, len(pool))
	for _, p := range pool {
		byName[p.Identity.Name] = p
		byName[p.Identity.ID] = p
	}

	var selected []core.AgentProfile
	seen := map[string]bool{}
	parsed := gjson.Parse(util.ExtractJSONArray(resp.Content))
	if !parsed.IsArray() {
		c.logger.Warn("review.select.unparsable", "response_length", len(resp.Content))
		return nil
	}
	for _, item := range parsed.Array() {
		name := item.String()
		p, ok := byName[name]
		if !ok || seen[p.Identity.ID] {
			continue
		}
		seen[p.Identity.ID] = true
		selected = append(selected, p)
		if len(selected) == c.opts.MaxReviewers {
			break
		}
	}
	if len(selected) == 0 {
		c.logger.Warn("review.select.no_match", "response_length", len(resp.Content))
	}
	return selected
}

// randomSubset picks up to MaxReviewers candidates uniformly at random.
func (c *Coordinator) randomSubset(pool []core.AgentProfile) []core.AgentProfile {
	shuffled := make([]core.AgentProfile, len(pool))
	copy(shuffled, pool)
	c.opts.Rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if len(shuffled) > c.opts.MaxReviewers {
		shuffled = shuffled[:c.opts.MaxReviewers]
	}
	return shuffled
}

// CollectReviews asks every reviewer in parallel for a verdict and returns
// whatever decisions resolved before the global timeout. A reviewer failure
// (provider error, unparsable response) yields no decision for that reviewer
// rather than failing the batch. On timeout the whole round is discarded and
// an empty slice is returned; in-flight model requests are not cancelled,
// their late responses are simply dropped.
func (c *Coordinator) CollectReviews(ctx context.Context, reviewers []core.AgentProfile, history []core.Message, req Request) []Decision {
	if len(reviewers) == 0 {
		return nil
	}

	start := time.Now()
	var (
		mu        sync.Mutex
		decisions []Decision
		wg        sync.WaitGroup
	)

	for _, reviewer := range reviewers {
		wg.Add(1)
		go func(r core.AgentProfile) {
			defer wg.Done()
			decision, ok := c.askReviewer(ctx, r, history, req)
			if !ok {
				return
			}
			mu.Lock()
			decisions = append(decisions, decision)
			mu.Unlock()
		}(reviewer)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(c.opts.Timeout)
	defer timer.Stop()

	select {
	case <-done:
		mu.Lock()
		out := make([]Decision, len(decisions))
		copy(out, decisions)
		mu.Unlock()
		c.logger.Info("review.collect.complete", "team_id", req.TeamID, "conversation_id", req.ConversationID, "reviewers", len(reviewers), "decisions", len(out), "duration_ms", time.Since(start).Milliseconds())
		return out
	case <-timer.C:
		// No partial credit: resolved decisions are discarded with the rest.
		c.logger.Warn("review.collect.timeout", "team_id", req.TeamID, "conversation_id", req.ConversationID, "reviewers", len(reviewers), "timeout", c.opts.Timeout.String())
		return nil
	case <-ctx.Done():
		c.logger.Warn("review.collect.cancelled", "team_id", req.TeamID, "error", ctx.Err().Error())
		return nil
	}
}

// askReviewer builds the review prompt and decodes one verdict.
func (c *Coordinator) askReviewer(ctx context.Context, reviewer core.AgentProfile, history []core.Message, req Request) (Decision, bool) {
	model := c.model
	if c.opts.ReviewerModels != nil {
		if m := c.opts.ReviewerModels(reviewer.Identity.ID); m != nil {
			model = m
		}
	}

	resp, err := model.Generate(ctx, provider.Request{
		Messages: []core.Message{
			core.NewMessage(core.RoleSystem, fmt.Sprintf("You are %s, reviewing a peer agent's completed work. %s", reviewer.Identity.Name, reviewer.RoleDescription)),
			core.NewMessage(core.RoleUser, c.buildReviewPrompt(history, req)),
		},
		Config: c.cfg,
	})
	if err != nil {
		c.logger.Warn("review.reviewer.failed", "reviewer", reviewer.Identity.ID, "error", err.Error())
		return Decision{}, false
	}

	decision, ok := decodeDecision(reviewer.Identity.ID, resp.Content)
	if !ok {
		c.logger.Warn("review.reviewer.unparsable", "reviewer", reviewer.Identity.ID, "response_length", len(resp.Content))
	}
	return decision, ok
}

func (c *Coordinator) buildReviewPrompt(history []core.Message, req Request) string {
	n := c.opts.ContextMessages
	if n > 0 && len(history) > n {
		history = history[len(history)-n:]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n\n", req.TaskDescription)
	fmt.Fprintf(&b, "Work summary:\n%s\n\n", req.WorkSummary)
	b.WriteString("Recent conversation:\n")
	for _, m := range history {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}
	b.WriteString("\nRespond with a JSON object: {\"decision\": \"approve\"|\"reject\"|\"revise\", \"feedback\": string, \"confidence\": number between 0 and 1, \"suggested_changes\": [string]}. Respond with the JSON only.")
	return b.String()
}

// decodeDecision treats the model response as a fallible decoder for a
// Decision. Any shape violation yields no decision.
func decodeDecision(reviewerID, content string) (Decision, bool) {
	parsed := gjson.Parse(util.ExtractJSONObject(content))
	if !parsed.IsObject() {
		return Decision{}, false
	}
	kind := DecisionKind(strings.ToLower(parsed.Get("decision").String()))
	switch kind {
	case DecisionApprove, DecisionReject, DecisionRevise:
	default:
		return Decision{}, false
	}

	confidence := parsed.Get("confidence").Float()
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	var changes []string
	for _, item := range parsed.Get("suggested_changes").Array() {
		if s := item.String(); s != "" {
			changes = append(changes, s)
		}
	}

	return Decision{
		ReviewerID:       reviewerID,
		Decision:         kind,
		Feedback:         parsed.Get("feedback").String(),
		Confidence:       confidence,
		SuggestedChanges: changes,
		Timestamp:        time.Now().UTC(),
	}, true
}

