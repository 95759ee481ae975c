package provider

import (
	"context"
	"strings"
	"time"

	"github.com/pablof7z/tenex-sub006/core"
	"github.com/pablof7z/tenex-sub006/logging"
	"github.com/pablof7z/tenex-sub006/tool"
)

// DefaultPlaceholder substitutes the human-facing remainder when stripping
// tool calls leaves an empty assistant message.
const DefaultPlaceholder = "Using tools to help with your request..."

// noMoreToolsInstruction is appended to the system message before the second
// pass so the model answers in natural language instead of requesting tools
// again.
const noMoreToolsInstruction = "The requested tools have been executed and their results are included above. Respond to the user in natural language. Do not request any more tools."

// OrchestratorOptions configures an Orchestrator instance.
type OrchestratorOptions struct {
	Logger           logging.Logger
	Placeholder      string
	MaxParallelTools int
}

// Orchestrator wraps a base Model and drives the parse -> execute -> re-ask
// loop: it injects tool instructions into the prompt, executes any tool calls
// found in the first response, and performs exactly one follow-up call to
// obtain the final natural-language answer.
//
// Only one additional round trip is ever performed. Tool calls discovered in
// the final response are not re-executed; chained multi-step tool use across
// more than two model calls is out of scope and would require a different
// control loop.
type Orchestrator struct {
	base        Model
	catalog     *tool.Catalog
	parser      *tool.Parser
	executor    *tool.Executor
	logger      logging.Logger
	placeholder string
}

// NewOrchestrator creates an orchestrating provider over the base model and
// the agent's tool catalog.
func NewOrchestrator(base Model, catalog *tool.Catalog, optFns ...func(o *OrchestratorOptions)) *Orchestrator {
	opts := OrchestratorOptions{
		Logger:      logging.NoOpLogger{},
		Placeholder: DefaultPlaceholder,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if catalog == nil {
		catalog = tool.EmptyCatalog()
	}
	return &Orchestrator{
		base:        base,
		catalog:     catalog,
		parser:      tool.NewParser(opts.Logger),
		executor:    tool.NewExecutor(tool.ExecutorConfig{MaxParallel: opts.MaxParallelTools, Logger: opts.Logger}),
		logger:      opts.Logger,
		placeholder: opts.Placeholder,
	}
}

// Respond produces a final assistant message with tool effects already
// applied. The returned usage is the merged usage of every model call made.
//
// Upstream model failures are returned to the caller as *ProviderError; tool
// failures never are, they surface as failed tool results folded into the
// conversation.
func (o *Orchestrator) Respond(ctx context.Context, req Request, execCtx core.ExecutionContext) (*Response, error) {
	msgs := make([]core.Message, len(req.Messages))
	copy(msgs, req.Messages)

	if o.catalog.Len() > 0 {
		msgs = injectSystemBlock(msgs, o.catalog.InstructionsBlock())
		req.Tools = ToolSchema(o.catalog.Definitions())
	}

	start := time.Now()
	first, err := o.base.Generate(ctx, Request{Messages: msgs, Config: req.Config, Tools: req.Tools})
	if err != nil {
		return nil, &ProviderError{Provider: o.base.Info().Provider, Err: err}
	}
	o.logModelCall(first, time.Since(start))

	calls := o.parser.Parse(first.Content)
	if len(calls) == 0 {
		// Providers with native function calling may never emit the textual
		// encoding; the first response already is the final answer.
		return first, nil
	}

	o.logger.Info("provider.orchestrator.tool_round", "agent", execCtx.AgentID, "call_count", len(calls))
	results := o.executor.ExecuteAll(ctx, o.catalog, execCtx, calls)

	remainder := o.parser.Remove(first.Content)
	if remainder == "" {
		remainder = o.placeholder
	}
	msgs = append(msgs, core.NewMessage(core.RoleAssistant, remainder))
	for _, res := range results {
		msgs = append(msgs, core.NewToolMessage(res.Output, res.ToolCallID))
	}

	msgs = injectSystemBlock(msgs, noMoreToolsInstruction)
	msgs = collapseMessages(msgs)

	start = time.Now()
	final, err := o.base.Generate(ctx, Request{Messages: msgs, Config: req.Config})
	if err != nil {
		return nil, &ProviderError{Provider: o.base.Info().Provider, Err: err}
	}
	o.logModelCall(final, time.Since(start))

	merged := *final
	merged.Usage = mergeUsage(first.Usage, final.Usage)
	return &merged, nil
}

func (o *Orchestrator) logModelCall(resp *Response, dur time.Duration) {
	tokens := 0
	if resp.Usage != nil {
		tokens = resp.Usage.TotalTokens()
	}
	o.logger.Debug("provider.orchestrator.model_call", "model", resp.Model, "tokens", tokens, "duration_ms", dur.Milliseconds())
}

// injectSystemBlock appends a block to the leading system message, creating
// one if absent.
func injectSystemBlock(msgs []core.Message, block string) []core.Message {
	if block == "" {
		return msgs
	}
	if len(msgs) > 0 && msgs[0].Role == core.RoleSystem {
		out := make([]core.Message, len(msgs))
		copy(out, msgs)
		out[0].Content = out[0].Content + "\n\n" + block
		return out
	}
	out := make([]core.Message, 0, len(msgs)+1)
	out = append(out, core.NewMessage(core.RoleSystem, block))
	out = append(out, msgs...)
	return out
}

// collapseMessages drops near-empty messages and merges consecutive same-role
// messages so providers with strict role alternation accept the list.
func collapseMessages(msgs []core.Message) []core.Message {
	var out []core.Message
	for _, m := range msgs {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Role == m.Role {
			out[n-1].Content = out[n-1].Content + "\n\n" + m.Content
			continue
		}
		out = append(out, m)
	}
	return out
}

func mergeUsage(a, b *core.TokenUsage) *core.TokenUsage {
	if a == nil && b == nil {
		return nil
	}
	merged := core.TokenUsage{}
	if a != nil {
		merged = merged.Add(*a)
	}
	if b != nil {
		merged = merged.Add(*b)
	}
	return &merged
}
