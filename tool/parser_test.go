package tool

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser() *Parser { return NewParser(nil) }

// -------------------- Parse Tests --------------------

func TestParser_TaggedBlock(t *testing.T) {
	p := newTestParser()
	text := `Let me check.
<tool_use>{"tool": "get_time", "arguments": {}}</tool_use>`

	calls := p.Parse(text)
	require.Len(t, calls, 1)
	assert.Equal(t, "get_time", calls[0].Name)
	assert.Empty(t, calls[0].Arguments)
	assert.NotEmpty(t, calls[0].ID)
	assert.True(t, p.HasToolCalls(text))
}

func TestParser_TaggedBlockWithArguments(t *testing.T) {
	p := newTestParser()
	calls := p.Parse(`<tool_use>{"tool": "search", "arguments": {"query": "go generics", "limit": 3}}</tool_use>`)
	require.Len(t, calls, 1)
	assert.Equal(t, "search", calls[0].Name)
	assert.Equal(t, "go generics", calls[0].Arguments["query"])
	assert.Equal(t, float64(3), calls[0].Arguments["limit"])
}

func TestParser_MultipleBlocksInOrder(t *testing.T) {
	p := newTestParser()
	var b strings.Builder
	for i := 0; i < 4; i++ {
		fmt.Fprintf(&b, "<tool_use>{\"tool\": \"tool_%d\", \"arguments\": {}}</tool_use>\n", i)
	}

	calls := p.Parse(b.String())
	require.Len(t, calls, 4)
	for i, call := range calls {
		assert.Equal(t, fmt.Sprintf("tool_%d", i), call.Name)
	}
}

func TestParser_InlineToolUseObject(t *testing.T) {
	p := newTestParser()
	calls := p.Parse(`Here you go: {"type": "tool_use", "name": "get_weather", "input": {"city": "Berlin"}}`)
	require.Len(t, calls, 1)
	assert.Equal(t, "get_weather", calls[0].Name)
	assert.Equal(t, "Berlin", calls[0].Arguments["city"])
}

func TestParser_InlineFunctionCallObject(t *testing.T) {
	p := newTestParser()
	calls := p.Parse(`{"function_call": {"name": "get_weather", "arguments": "{\"city\": \"Paris\"}"}}`)
	require.Len(t, calls, 1)
	assert.Equal(t, "get_weather", calls[0].Name)
	assert.Equal(t, "Paris", calls[0].Arguments["city"])
}

func TestParser_MixedEncodings(t *testing.T) {
	p := newTestParser()
	text := `First: <tool_use>{"tool": "a", "arguments": {}}</tool_use>
then {"type": "tool_use", "name": "b", "input": {}} done.`

	calls := p.Parse(text)
	require.Len(t, calls, 2)
	assert.Equal(t, "a", calls[0].Name)
	assert.Equal(t, "b", calls[1].Name)
}

func TestParser_MalformedBlockSkipped(t *testing.T) {
	p := newTestParser()
	text := `<tool_use>{"tool": }</tool_use>
<tool_use>{"tool": "ok", "arguments": {}}</tool_use>`

	calls := p.Parse(text)
	require.Len(t, calls, 1)
	assert.Equal(t, "ok", calls[0].Name)
}

func TestParser_MissingNameSkipped(t *testing.T) {
	p := newTestParser()
	assert.Empty(t, p.Parse(`<tool_use>{"arguments": {}}</tool_use>`))
	assert.Empty(t, p.Parse(`{"type": "tool_use", "input": {}}`))
}

func TestParser_NoCalls(t *testing.T) {
	p := newTestParser()
	assert.Empty(t, p.Parse("Just a plain answer with no tools."))
	assert.False(t, p.HasToolCalls("nothing here"))
}

func TestParser_FreshIDsPerParse(t *testing.T) {
	p := newTestParser()
	text := `<tool_use>{"tool": "get_time", "arguments": {}}</tool_use>`
	first := p.Parse(text)
	second := p.Parse(text)
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.NotEqual(t, first[0].ID, second[0].ID)
}

// -------------------- Remove Tests --------------------

func TestParser_RemoveStripsBlocks(t *testing.T) {
	p := newTestParser()
	text := `I will look that up.

<tool_use>{"tool": "get_time", "arguments": {}}</tool_use>

One moment.`

	clean := p.Remove(text)
	assert.NotContains(t, clean, "<tool_use>")
	assert.Contains(t, clean, "I will look that up.")
	assert.Contains(t, clean, "One moment.")
}

func TestParser_RemoveIsIdempotent(t *testing.T) {
	p := newTestParser()
	text := `before <tool_use>{"tool": "x", "arguments": {}}</tool_use> after`

	once := p.Remove(text)
	twice := p.Remove(once)
	assert.Equal(t, once, twice)
}

func TestParser_RemoveStripsMalformedRegions(t *testing.T) {
	p := newTestParser()
	clean := p.Remove(`hello <tool_use>{"tool": }</tool_use> world`)
	assert.NotContains(t, clean, "<tool_use>")
	assert.Contains(t, clean, "hello")
	assert.Contains(t, clean, "world")
}

func TestParser_RemoveStripsInlineObjects(t *testing.T) {
	p := newTestParser()
	clean := p.Remove(`checking {"type": "tool_use", "name": "a", "input": {"nested": {"deep": true}}} done`)
	assert.Equal(t, "checking  done", clean)
}

func TestParser_RemoveEmptyAfterStrip(t *testing.T) {
	p := newTestParser()
	assert.Equal(t, "", p.Remove(`<tool_use>{"tool": "only", "arguments": {}}</tool_use>`))
}

// -------------------- Helper Tests --------------------

func TestBalancedObjectEnd_HonorsStrings(t *testing.T) {
	text := `{"a": "brace } in string", "b": {}}`
	end, ok := balancedObjectEnd(text, 0)
	require.True(t, ok)
	assert.Equal(t, len(text), end)
}

func TestEnclosingObject_FindsOuterObject(t *testing.T) {
	text := `prefix {"function_call": {"name": "f", "arguments": "{}"}} suffix`
	markerAt := strings.Index(text, `"function_call"`)
	start, end, ok := enclosingObject(text, markerAt)
	require.True(t, ok)
	assert.Equal(t, strings.Index(text, "{"), start)
	assert.Equal(t, strings.LastIndex(text, "}")+1, end)
}
