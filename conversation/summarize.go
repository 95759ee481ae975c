package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/pablof7z/tenex-sub006/core"
	"github.com/pablof7z/tenex-sub006/logging"
	"github.com/pablof7z/tenex-sub006/provider"
)

// Summarizer replaces the older span of a conversation with a single
// synthetic assistant message summarizing it. It is used only when simple
// windowing would drop so much context that the remaining conversation is
// incoherent; callers fall back to WindowForBudget when summarization fails.
type Summarizer struct {
	model  provider.Model
	logger logging.Logger
}

// NewSummarizer constructs a summarizer over the given model.
func NewSummarizer(model provider.Model, logger logging.Logger) *Summarizer {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Summarizer{model: model, logger: logger}
}

const summaryPrompt = "Summarize the following conversation span concisely, preserving decisions, open questions and any facts later messages may rely on. Respond with the summary only."

// Summarize returns a message list where all but the most recent keepRecent
// messages are replaced by one synthetic assistant message. The leading
// system message, if present, is always preserved unmodified.
func (s *Summarizer) Summarize(ctx context.Context, msgs []core.Message, keepRecent int, cfg core.GenerationConfig) ([]core.Message, error) {
	var system *core.Message
	rest := msgs
	if len(msgs) > 0 && msgs[0].Role == core.RoleSystem {
		system = &msgs[0]
		rest = msgs[1:]
	}

	if keepRecent < 0 {
		keepRecent = 0
	}
	if len(rest) <= keepRecent+1 {
		// Nothing worth summarizing.
		return msgs, nil
	}

	dropped := rest[:len(rest)-keepRecent]
	recent := rest[len(rest)-keepRecent:]

	var transcript strings.Builder
	for _, m := range dropped {
		fmt.Fprintf(&transcript, "%s: %s\n", m.Role, m.Content)
	}

	resp, err := s.model.Generate(ctx, provider.Request{
		Messages: []core.Message{
			core.NewMessage(core.RoleSystem, summaryPrompt),
			core.NewMessage(core.RoleUser, transcript.String()),
		},
		Config: cfg,
	})
	if err != nil {
		return nil, fmt.Errorf("conversation summarization failed: %w", err)
	}

	s.logger.Info("conversation.summarized", "dropped", len(dropped), "kept", keepRecent, "summary_length", len(resp.Content))

	out := make([]core.Message, 0, keepRecent+2)
	if system != nil {
		out = append(out, *system)
	}
	out = append(out, core.NewMessage(core.RoleAssistant, "[Summary of earlier conversation] "+resp.Content))
	out = append(out, recent...)
	return out, nil
}
