package reflection

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/pablof7z/tenex-sub006/core"
	"github.com/pablof7z/tenex-sub006/internal/util"
	"github.com/pablof7z/tenex-sub006/logging"
	"github.com/pablof7z/tenex-sub006/provider"
)

// LessonContext records where a lesson came from.
type LessonContext struct {
	TriggerEventID      string   `json:"trigger_event_id"`
	ConversationID      string   `json:"conversation_id"`
	ErrorType           string   `json:"error_type,omitempty"`
	PreventionStrategy  string   `json:"prevention_strategy,omitempty"`
	RelatedCapabilities []string `json:"related_capabilities,omitempty"`
	TeamID              string   `json:"team_id,omitempty"`
}

// AgentLesson is a short, durable, per-agent takeaway derived from a
// correction. Lessons are immutable after creation; the pipeline hands them
// to the external persistence collaborator and never reasons about storage.
type AgentLesson struct {
	ID         string        `json:"id"`
	AgentID    string        `json:"agent_id"`
	TaskID     string        `json:"task_id,omitempty"`
	Title      string        `json:"title"`
	Content    string        `json:"content"`
	Confidence float64       `json:"confidence"`
	Context    LessonContext `json:"context"`
	Timestamp  time.Time     `json:"timestamp"`
}

// Publisher is the external persistence collaborator: an at-least-once,
// append-only sink for lessons. The pipeline never blocks on, or assumes
// synchronous confirmation of, a publish.
type Publisher interface {
	PublishLesson(ctx context.Context, lesson AgentLesson) error
}

// Trigger bundles the correction that started a lesson round.
type Trigger struct {
	Event          core.Message
	History        []core.Message
	Classification Classification
	ConversationID string
	TeamID         string
	TaskID         string
}

// PipelineOptions configures a Pipeline instance.
type PipelineOptions struct {
	Logger logging.Logger
	// MaxParallel bounds concurrent per-agent lesson generation; 0 means one
	// task per candidate agent.
	MaxParallel int
}

// Pipeline generates, deduplicates and hands off lessons.
type Pipeline struct {
	model     provider.Model
	cfg       core.GenerationConfig
	publisher Publisher
	logger    logging.Logger
	maxPar    int
}

// NewPipeline constructs a lesson pipeline. The publisher may be nil, in
// which case accepted lessons are only returned, not persisted.
func NewPipeline(model provider.Model, cfg core.GenerationConfig, publisher Publisher, optFns ...func(o *PipelineOptions)) *Pipeline {
	opts := PipelineOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Pipeline{model: model, cfg: cfg, publisher: publisher, logger: opts.Logger, maxPar: opts.MaxParallel}
}

const lessonInstruction = "You derive lessons for AI agents from corrections. Decide whether the correction applies to the given agent. Respond with a JSON object only: {\"applicable\": bool, \"title\": string, \"lesson\": string, \"error_type\": string, \"prevention_strategy\": string, \"confidence\": number between 0 and 1}. The lesson must be one concise, actionable takeaway."

// GenerateLessons asks, for every candidate agent in parallel, whether the
// correction applies to that agent and, if so, for one concise lesson.
// Agents judged not applicable, or whose model call fails, contribute no
// lesson; a single failure never aborts sibling tasks.
func (p *Pipeline) GenerateLessons(ctx context.Context, trigger Trigger, agents []core.AgentProfile) []AgentLesson {
	if len(agents) == 0 {
		return nil
	}

	var (
		mu      sync.Mutex
		lessons []AgentLesson
	)

	g, gctx := errgroup.WithContext(ctx)
	if p.maxPar > 0 {
		g.SetLimit(p.maxPar)
	}
	for _, agent := range agents {
		g.Go(func() error {
			lesson, ok := p.generateForAgent(gctx, trigger, agent)
			if !ok {
				return nil // absence, not error: siblings keep running
			}
			mu.Lock()
			lessons = append(lessons, lesson)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // tasks never return errors

	p.logger.Info("reflection.lessons.generated", "candidates", len(agents), "lessons", len(lessons))
	return lessons
}

func (p *Pipeline) generateForAgent(ctx context.Context, trigger Trigger, agent core.AgentProfile) (AgentLesson, bool) {
	var b strings.Builder
	fmt.Fprintf(&b, "Agent: %s (%s)\n\n", agent.Identity.Name, agent.RoleDescription)
	b.WriteString("Conversation leading to the correction:\n")
	for _, m := range trigger.History {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}
	fmt.Fprintf(&b, "\nCorrection (%s): %s\n", trigger.Event.Role, trigger.Event.Content)
	if len(trigger.Classification.Issues) > 0 {
		fmt.Fprintf(&b, "Identified issues: %s\n", strings.Join(trigger.Classification.Issues, "; "))
	}

	resp, err := p.model.Generate(ctx, provider.Request{
		Messages: []core.Message{
			core.NewMessage(core.RoleSystem, lessonInstruction),
			core.NewMessage(core.RoleUser, b.String()),
		},
		Config: p.cfg,
	})
	if err != nil {
		p.logger.Warn("reflection.lessons.model_error", "agent", agent.Identity.ID, "error", err.Error())
		return AgentLesson{}, false
	}

	parsed := gjson.Parse(util.ExtractJSONObject(resp.Content))
	if !parsed.IsObject() || !parsed.Get("applicable").Bool() {
		return AgentLesson{}, false
	}
	content := parsed.Get("lesson").String()
	if content == "" {
		p.logger.Warn("reflection.lessons.empty", "agent", agent.Identity.ID)
		return AgentLesson{}, false
	}

	confidence := parsed.Get("confidence").Float()
	if confidence <= 0 {
		confidence = trigger.Classification.Confidence
	}
	if confidence > 1 {
		confidence = 1
	}

	return AgentLesson{
		ID:         core.NewID(),
		AgentID:    agent.Identity.ID,
		TaskID:     trigger.TaskID,
		Title:      parsed.Get("title").String(),
		Content:    content,
		Confidence: confidence,
		Context: LessonContext{
			TriggerEventID:     trigger.Event.ID,
			ConversationID:     trigger.ConversationID,
			ErrorType:          parsed.Get("error_type").String(),
			PreventionStrategy: parsed.Get("prevention_strategy").String(),
			TeamID:             trigger.TeamID,
		},
		Timestamp: time.Now().UTC(),
	}, true
}

// DeduplicateLessons asks a model which subset of 2+ lessons to keep. A
// single lesson short-circuits with no model call. On an unparsable response
// every lesson is conservatively kept rather than dropping any.
func (p *Pipeline) DeduplicateLessons(ctx context.Context, lessons []AgentLesson) []AgentLesson {
	if len(lessons) < 2 {
		return lessons
	}

	var b strings.Builder
	b.WriteString("The following lessons were derived from one correction. Remove duplicates and near-duplicates, keeping the clearest phrasing of each distinct lesson.\n\n")
	for i, l := range lessons {
		fmt.Fprintf(&b, "%d. [%s] %s: %s\n", i, l.AgentID, l.Title, l.Content)
	}
	b.WriteString("\nRespond with a JSON array of the indices to keep, nothing else.")

	resp, err := p.model.Generate(ctx, provider.Request{
		Messages: []core.Message{core.NewMessage(core.RoleUser, b.String())},
		Config:   p.cfg,
	})
	if err != nil {
		p.logger.Warn("reflection.dedup.model_error", "error", err.Error())
		return lessons
	}

	parsed := gjson.Parse(util.ExtractJSONArray(resp.Content))
	if !parsed.IsArray() {
		p.logger.Warn("reflection.dedup.unparsable", "response_length", len(resp.Content))
		return lessons
	}

	var kept []AgentLesson
	seen := map[int]bool{}
	for _, item := range parsed.Array() {
		idx := int(item.Int())
		if idx < 0 || idx >= len(lessons) || seen[idx] {
			continue
		}
		seen[idx] = true
		kept = append(kept, lessons[idx])
	}
	if len(kept) == 0 {
		// A keep-set that matches nothing is as good as unparsable.
		return lessons
	}
	return kept
}

// Process runs the full pipeline for one correction trigger: generate,
// deduplicate, publish. Publishing is best-effort; a failed publish is
// logged and the lesson is still returned.
func (p *Pipeline) Process(ctx context.Context, trigger Trigger, agents []core.AgentProfile) []AgentLesson {
	lessons := p.GenerateLessons(ctx, trigger, agents)
	lessons = p.DeduplicateLessons(ctx, lessons)

	if p.publisher != nil {
		for _, lesson := range lessons {
			if err := p.publisher.PublishLesson(ctx, lesson); err != nil {
				p.logger.Warn("reflection.lessons.publish_failed", "lesson_id", lesson.ID, "agent", lesson.AgentID, "error", err.Error())
			}
		}
	}
	return lessons
}
