package reflection

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/pablof7z/tenex-sub006/core"
	"github.com/pablof7z/tenex-sub006/internal/util"
	"github.com/pablof7z/tenex-sub006/logging"
	"github.com/pablof7z/tenex-sub006/provider"
)

// Classification is the model-backed judgment on whether a message corrects
// prior work.
type Classification struct {
	IsCorrection   bool     `json:"is_correction"`
	Confidence     float64  `json:"confidence"`
	Issues         []string `json:"issues,omitempty"`
	AffectedAgents []string `json:"affected_agents,omitempty"`
}

// Classifier asks a model whether a new message is a correction. It fails
// closed: an unparsable or failed response yields "not a correction", never
// an error.
type Classifier struct {
	model  provider.Model
	cfg    core.GenerationConfig
	logger logging.Logger
}

// NewClassifier constructs a classifier over the given model.
func NewClassifier(model provider.Model, cfg core.GenerationConfig, logger logging.Logger) *Classifier {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Classifier{model: model, cfg: cfg, logger: logger}
}

const classifierInstruction = "You judge whether the newest message in a conversation is correcting a prior mistake. Respond with a JSON object only: {\"is_correction\": bool, \"confidence\": number between 0 and 1, \"issues\": [string], \"affected_agents\": [string]}."

// IsCorrection classifies the new message given recent history.
func (c *Classifier) IsCorrection(ctx context.Context, event core.Message, history []core.Message) Classification {
	var b strings.Builder
	b.WriteString("Recent conversation:\n")
	for _, m := range history {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}
	fmt.Fprintf(&b, "\nNew message (%s): %s", event.Role, event.Content)

	resp, err := c.model.Generate(ctx, provider.Request{
		Messages: []core.Message{
			core.NewMessage(core.RoleSystem, classifierInstruction),
			core.NewMessage(core.RoleUser, b.String()),
		},
		Config: c.cfg,
	})
	if err != nil {
		c.logger.Warn("reflection.classify.model_error", "error", err.Error())
		return Classification{}
	}

	parsed := gjson.Parse(util.ExtractJSONObject(resp.Content))
	if !parsed.IsObject() || !parsed.Get("is_correction").Exists() {
		c.logger.Warn("reflection.classify.unparsable", "response_length", len(resp.Content))
		return Classification{}
	}

	confidence := parsed.Get("confidence").Float()
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return Classification{
		IsCorrection:   parsed.Get("is_correction").Bool(),
		Confidence:     confidence,
		Issues:         stringArray(parsed.Get("issues")),
		AffectedAgents: stringArray(parsed.Get("affected_agents")),
	}
}

func stringArray(v gjson.Result) []string {
	var out []string
	for _, item := range v.Array() {
		if s := item.String(); s != "" {
			out = append(out, s)
		}
	}
	return out
}
