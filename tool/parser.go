package tool

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/pablof7z/tenex-sub006/logging"
)

// Parser extracts tool invocation requests embedded as text inside model
// output. Three encodings are recognized:
//
//  1. A tagged block wrapping a JSON object:
//     <tool_use>{"tool":"get_time","arguments":{}}</tool_use>
//  2. An inline Anthropic-style object:
//     {"type":"tool_use","name":"get_time","input":{}}
//  3. An inline OpenAI-style object with string-encoded arguments:
//     {"function_call":{"name":"get_time","arguments":"{}"}}
//
// Parsing is best-effort: a malformed block is logged and skipped rather
// than aborting the whole parse. Each recognized call receives a locally
// generated ID.
type Parser struct {
	logger logging.Logger
}

// NewParser constructs a parser. A nil logger is substituted with NoOpLogger.
func NewParser(logger logging.Logger) *Parser {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Parser{logger: logger}
}

var taggedBlockRe = regexp.MustCompile(`(?s)<tool_use>\s*(\{.*?\})\s*</tool_use>`)

// markers locate inline encodings by a characteristic substring; the
// enclosing balanced JSON object is then recovered around the marker.
var inlineMarkers = []string{`"tool_use"`, `"function_call"`}

// span records the region of text one recognized call occupied.
type span struct {
	start, end int
	call       Call
	ok         bool // false when the region is recognized but malformed
}

// Parse extracts all tool calls from text in order of appearance.
func (p *Parser) Parse(text string) []Call {
	spans := p.scan(text)
	var calls []Call
	for _, s := range spans {
		if s.ok {
			calls = append(calls, s.call)
		}
	}
	return calls
}

// HasToolCalls reports whether the text contains at least one well-formed
// tool call.
func (p *Parser) HasToolCalls(text string) bool {
	return len(p.Parse(text)) > 0
}

// Remove strips every recognized tool call region from the text, returning
// the clean human-facing remainder. Removal is idempotent: once stripped,
// a second pass finds nothing to remove.
func (p *Parser) Remove(text string) string {
	spans := p.scan(text)
	if len(spans) == 0 {
		return strings.TrimSpace(text)
	}
	var b strings.Builder
	prev := 0
	for _, s := range spans {
		b.WriteString(text[prev:s.start])
		prev = s.end
	}
	b.WriteString(text[prev:])
	return strings.TrimSpace(collapseBlankLines(b.String()))
}

// scan finds all recognized regions, well-formed or not, ordered by position.
// Malformed regions keep their span (so Remove still strips them) but carry
// ok=false.
func (p *Parser) scan(text string) []span {
	var spans []span

	for _, m := range taggedBlockRe.FindAllStringSubmatchIndex(text, -1) {
		payload := text[m[2]:m[3]]
		call, ok := p.decodeTagged(payload)
		spans = append(spans, span{start: m[0], end: m[1], call: call, ok: ok})
	}

	for _, marker := range inlineMarkers {
		offset := 0
		for {
			idx := strings.Index(text[offset:], marker)
			if idx < 0 {
				break
			}
			markerAt := offset + idx
			offset = markerAt + len(marker)

			start, end, found := enclosingObject(text, markerAt)
			if !found || overlaps(spans, start, end) {
				continue
			}
			obj := text[start:end]
			call, recognized, ok := p.decodeInline(obj)
			if !recognized {
				continue
			}
			spans = append(spans, span{start: start, end: end, call: call, ok: ok})
		}
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	return spans
}

// decodeTagged parses the payload of a <tool_use> block.
func (p *Parser) decodeTagged(payload string) (Call, bool) {
	parsed := gjson.Parse(payload)
	name := parsed.Get("tool").String()
	if !parsed.IsObject() || name == "" {
		p.logger.Warn("tool.parse.malformed_block", "encoding", "tagged", "payload_length", len(payload))
		return Call{}, false
	}
	args, err := decodeArgs(parsed.Get("arguments"))
	if err != nil {
		p.logger.Warn("tool.parse.malformed_arguments", "encoding", "tagged", "tool", name, "error", err.Error())
		return Call{}, false
	}
	return NewCall(name, args), true
}

// decodeInline parses an inline object. The second return reports whether the
// object is one of the recognized shapes at all; the third whether it was
// well-formed.
func (p *Parser) decodeInline(obj string) (Call, bool, bool) {
	parsed := gjson.Parse(obj)
	if !parsed.IsObject() {
		return Call{}, false, false
	}

	if parsed.Get("type").String() == "tool_use" {
		name := parsed.Get("name").String()
		if name == "" {
			p.logger.Warn("tool.parse.malformed_block", "encoding", "tool_use", "reason", "missing name")
			return Call{}, true, false
		}
		args, err := decodeArgs(parsed.Get("input"))
		if err != nil {
			p.logger.Warn("tool.parse.malformed_arguments", "encoding", "tool_use", "tool", name, "error", err.Error())
			return Call{}, true, false
		}
		return NewCall(name, args), true, true
	}

	if fc := parsed.Get("function_call"); fc.Exists() && fc.IsObject() {
		name := fc.Get("name").String()
		if name == "" {
			p.logger.Warn("tool.parse.malformed_block", "encoding", "function_call", "reason", "missing name")
			return Call{}, true, false
		}
		// Arguments arrive as a JSON string that itself encodes an object.
		raw := fc.Get("arguments").String()
		args := map[string]any{}
		if raw != "" {
			if err := json.Unmarshal([]byte(raw), &args); err != nil {
				p.logger.Warn("tool.parse.malformed_arguments", "encoding", "function_call", "tool", name, "error", err.Error())
				return Call{}, true, false
			}
		}
		return NewCall(name, args), true, true
	}

	return Call{}, false, false
}

// decodeArgs converts a gjson object value into an argument map. Absent
// values yield an empty map; non-object values are an error.
func decodeArgs(v gjson.Result) (map[string]any, error) {
	if !v.Exists() || v.Type == gjson.Null {
		return map[string]any{}, nil
	}
	args := map[string]any{}
	if err := json.Unmarshal([]byte(v.Raw), &args); err != nil {
		return nil, err
	}
	return args, nil
}

// enclosingObject recovers the span of the balanced JSON object that starts
// at the nearest '{' left of markerAt and extends past the marker.
func enclosingObject(text string, markerAt int) (int, int, bool) {
	start := strings.LastIndexByte(text[:markerAt], '{')
	for start >= 0 {
		if end, ok := balancedObjectEnd(text, start); ok && end > markerAt {
			return start, end, true
		}
		start = strings.LastIndexByte(text[:start], '{')
	}
	return 0, 0, false
}

// balancedObjectEnd walks a JSON object starting at '{', honoring string
// literals and escapes, and returns the index just past the matching '}'.
func balancedObjectEnd(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}

func overlaps(spans []span, start, end int) bool {
	for _, s := range spans {
		if start < s.end && end > s.start {
			return true
		}
	}
	return false
}

var blankRunRe = regexp.MustCompile(`\n{3,}`)

// collapseBlankLines squeezes runs of blank lines left behind by removal.
func collapseBlankLines(s string) string {
	return blankRunRe.ReplaceAllString(s, "\n\n")
}
