// Package tenex provides a high-level façade over the coordination core:
// per-agent conversations, the tool-use orchestrating provider, peer review
// and the correction-to-lesson pipeline. Most applications interact with
// this package by:
//  1. Creating a Coordinator via New() (optionally overriding default in-memory services)
//  2. Registering one or more agents with their tool catalogs and models
//  3. Feeding inbound messages (HandleMessage) and asking agents to respond (Respond)
//
// The façade delegates the actual work to the conversation, provider, review
// and reflection packages while keeping setup and usage ergonomics concise.
// All defaults are safe for local development and testing; production
// deployments typically supply durable store implementations and a
// structured logger.
package tenex

import (
	"context"
	"fmt"
	"sync"

	"github.com/pablof7z/tenex-sub006/config"
	"github.com/pablof7z/tenex-sub006/conversation"
	"github.com/pablof7z/tenex-sub006/core"
	"github.com/pablof7z/tenex-sub006/eventlog"
	"github.com/pablof7z/tenex-sub006/logging"
	"github.com/pablof7z/tenex-sub006/provider"
	"github.com/pablof7z/tenex-sub006/reflection"
	"github.com/pablof7z/tenex-sub006/review"
	"github.com/pablof7z/tenex-sub006/tool"
)

// Options configures the Coordinator instance.
type Options struct {
	// Config provides model, review and logging configuration. Defaults to
	// config.Default().
	Config config.Config

	// Conversations stores per-agent conversation logs (defaults to an
	// in-memory store).
	Conversations conversation.Store

	// Log is the event/identity log collaborator (defaults to an in-memory
	// implementation). It supplies reviewer profiles and receives lessons.
	Log eventlog.Log

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// agentRuntime bundles one registered agent's perspective: its profile,
// catalog-bound orchestrator and model.
type agentRuntime struct {
	profile      core.AgentProfile
	orchestrator *provider.Orchestrator
	projectID    string
}

// Coordinator is the single in-process coordinator for one project.
type Coordinator struct {
	opts       Options
	cfg        core.GenerationConfig
	store      conversation.Store
	log        eventlog.Log
	logger     logging.Logger
	reviews    *review.Coordinator
	classifier *reflection.Classifier
	lessons    *reflection.Pipeline

	mu     sync.RWMutex
	agents map[string]*agentRuntime
}

// New creates a Coordinator around a base model used for selection,
// classification and lesson generation. Any unset service is initialized
// with an in-memory implementation.
func New(base provider.Model, optFns ...func(o *Options)) *Coordinator {
	opts := Options{
		Config:        config.Default(),
		Conversations: conversation.NewInMemoryStore(),
		Log:           eventlog.NewInMemoryLog(),
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	cfg := opts.Config.GenerationConfig()
	return &Coordinator{
		opts:   opts,
		cfg:    cfg,
		store:  opts.Conversations,
		log:    opts.Log,
		logger: opts.Logger,
		reviews: review.NewCoordinator(base, opts.Log, cfg, func(o *review.CoordinatorOptions) {
			o.Timeout = opts.Config.Review.Timeout
			o.MaxReviewers = opts.Config.Review.MaxReviewers
			o.ContextMessages = opts.Config.Review.ContextMessages
			o.Logger = opts.Logger
		}),
		classifier: reflection.NewClassifier(base, cfg, opts.Logger),
		lessons: reflection.NewPipeline(base, cfg, opts.Log, func(o *reflection.PipelineOptions) {
			o.Logger = opts.Logger
		}),
		agents: map[string]*agentRuntime{},
	}
}

// RegisterAgent adds an agent with its own model and owned tool catalog.
// The profile is also published to the event log so peers can select the
// agent as a reviewer.
func (c *Coordinator) RegisterAgent(profile core.AgentProfile, model provider.Model, catalog *tool.Catalog, projectID string) {
	orch := provider.NewOrchestrator(model, catalog, func(o *provider.OrchestratorOptions) {
		o.Logger = c.logger
	})
	c.mu.Lock()
	c.agents[profile.Identity.ID] = &agentRuntime{profile: profile, orchestrator: orch, projectID: projectID}
	c.mu.Unlock()
	c.log.RegisterProfile(profile)
}

// HandleMessage appends an inbound message to every registered agent's copy
// of the conversation and, when the message looks like a correction, runs
// the lesson pipeline. Correction handling degrades silently: classification
// failures mean no lessons, never an error.
func (c *Coordinator) HandleMessage(ctx context.Context, conversationID string, msg core.Message) error {
	c.mu.RLock()
	runtimes := make([]*agentRuntime, 0, len(c.agents))
	for _, rt := range c.agents {
		runtimes = append(runtimes, rt)
	}
	c.mu.RUnlock()

	var history []core.Message
	for _, rt := range runtimes {
		conv, err := c.store.Get(rt.profile.Identity.ID, conversationID)
		if err != nil {
			return fmt.Errorf("failed to load conversation for %s: %w", rt.profile.Identity.ID, err)
		}
		if history == nil {
			history = conv.MessageList()
		}
		if err := c.store.Append(rt.profile.Identity.ID, conversationID, msg); err != nil {
			return fmt.Errorf("failed to append message for %s: %w", rt.profile.Identity.ID, err)
		}
	}

	c.maybeReflect(ctx, conversationID, msg, history, runtimes)
	return nil
}

// maybeReflect checks the new message for a correction and runs the lesson
// pipeline when one is found.
func (c *Coordinator) maybeReflect(ctx context.Context, conversationID string, msg core.Message, history []core.Message, runtimes []*agentRuntime) {
	pattern := reflection.DetectPattern(append(append([]core.Message{}, history...), msg))
	classification := reflection.Classification{}
	if pattern != nil {
		classification = c.classifier.IsCorrection(ctx, msg, history)
	}
	if pattern == nil && !classification.IsCorrection {
		return
	}

	c.logger.Info("coordinator.correction_detected", "conversation_id", conversationID, "keyword_match", pattern != nil, "model_confidence", classification.Confidence)

	candidates := make([]core.AgentProfile, 0, len(runtimes))
	for _, rt := range runtimes {
		candidates = append(candidates, rt.profile)
	}
	trigger := reflection.Trigger{
		Event:          msg,
		History:        history,
		Classification: classification,
		ConversationID: conversationID,
	}
	c.lessons.Process(ctx, trigger, candidates)
}

// Respond asks one agent's orchestrating provider for a reply with tool
// effects applied, windowed to the model's token budget. The assistant
// message is appended to the agent's conversation before returning.
func (c *Coordinator) Respond(ctx context.Context, agentID, conversationID string) (*provider.Response, error) {
	c.mu.RLock()
	rt, ok := c.agents[agentID]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown agent %q", agentID)
	}

	conv, err := c.store.Get(agentID, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	msgs := conversation.WindowForBudget(conv.MessageList(), c.cfg.PromptBudget())
	execCtx := core.NewExecutionContext(agentID, rt.projectID, c.logger)

	resp, err := rt.orchestrator.Respond(ctx, provider.Request{Messages: msgs, Config: c.cfg}, execCtx)
	if err != nil {
		return nil, err
	}

	reply := core.NewSenderMessage(core.RoleAssistant, resp.Content, agentID)
	if err := c.store.Append(agentID, conversationID, reply); err != nil {
		return nil, fmt.Errorf("failed to append response: %w", err)
	}
	return resp, nil
}

// ReviewWork runs a peer review round for a team's completed work as seen in
// the lead's conversation.
func (c *Coordinator) ReviewWork(ctx context.Context, team core.Team, conversationID string) (review.Result, error) {
	conv, err := c.store.Get(team.Lead, conversationID)
	if err != nil {
		return review.Result{}, fmt.Errorf("failed to load conversation: %w", err)
	}
	return c.reviews.Run(ctx, team, conversationID, conv.MessageList(), nil), nil
}

// Log exposes the underlying event log collaborator.
func (c *Coordinator) Log() eventlog.Log { return c.log }
