package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pablof7z/tenex-sub006/core"
	"github.com/pablof7z/tenex-sub006/logging"
)

func testExecCtx() core.ExecutionContext {
	return core.NewExecutionContext("agent-1", "proj-1", logging.NoOpLogger{})
}

func echoTool(name string) Tool {
	return NewFunctionTool(
		Definition{
			Name:        name,
			Description: "Echo the input",
			Parameters: []ParameterSpec{
				{Name: "text", Type: "string", Description: "Text to echo", Required: true},
			},
		},
		func(_ core.ExecutionContext, args map[string]any) (any, error) {
			return args["text"], nil
		},
	)
}

// -------------------- Template & Catalog Tests --------------------

func TestTemplate_RegisterAndBuild(t *testing.T) {
	tmpl := NewTemplate()
	require.NoError(t, tmpl.Register(echoTool("echo")))
	require.NoError(t, tmpl.Register(echoTool("shout")))

	catalog := tmpl.Build()
	assert.Equal(t, 2, catalog.Len())

	impl, ok := catalog.Get("echo")
	assert.True(t, ok)
	assert.Equal(t, "echo", impl.Definition().Name)

	_, ok = catalog.Get("missing")
	assert.False(t, ok)
}

func TestTemplate_RejectsDuplicateName(t *testing.T) {
	tmpl := NewTemplate()
	require.NoError(t, tmpl.Register(echoTool("echo")))

	err := tmpl.Register(echoTool("echo"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestTemplate_RejectsEmptyName(t *testing.T) {
	tmpl := NewTemplate()
	err := tmpl.Register(echoTool(""))
	assert.Error(t, err)
}

func TestTemplate_BuildSnapshotsIndependently(t *testing.T) {
	tmpl := NewTemplate()
	tmpl.MustRegister(echoTool("echo"))

	first := tmpl.Build()
	tmpl.MustRegister(echoTool("shout"))
	second := tmpl.Build()

	// The first catalog must not see registrations made after its Build.
	assert.Equal(t, 1, first.Len())
	assert.Equal(t, 2, second.Len())
	_, ok := first.Get("shout")
	assert.False(t, ok)
}

func TestCatalog_NamesSortedAndDefinitionsOrdered(t *testing.T) {
	tmpl := NewTemplate()
	tmpl.MustRegister(echoTool("zeta"))
	tmpl.MustRegister(echoTool("alpha"))
	catalog := tmpl.Build()

	assert.Equal(t, []string{"alpha", "zeta"}, catalog.Names())

	defs := catalog.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "zeta", defs[0].Name) // registration order
	assert.Equal(t, "alpha", defs[1].Name)
}

func TestEmptyCatalog(t *testing.T) {
	catalog := EmptyCatalog()
	assert.Equal(t, 0, catalog.Len())
	assert.Empty(t, catalog.InstructionsBlock())
}

// -------------------- Definition Tests --------------------

func TestDefinition_JSONSchema(t *testing.T) {
	def := Definition{
		Name: "lookup",
		Parameters: []ParameterSpec{
			{Name: "key", Type: "string", Description: "Lookup key", Required: true},
			{Name: "limit", Type: "integer", Required: false},
		},
	}

	schema := def.JSONSchema()
	assert.Equal(t, "object", schema["type"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "key")
	assert.Contains(t, props, "limit")

	req, _ := schema["required"].([]string)
	assert.Equal(t, []string{"key"}, req)
	assert.Equal(t, []string{"key"}, def.RequiredParameters())
}

func TestCatalog_InstructionsBlock(t *testing.T) {
	tmpl := NewTemplate()
	tmpl.MustRegister(echoTool("echo"))
	block := tmpl.Build().InstructionsBlock()

	assert.Contains(t, block, "- echo: Echo the input")
	assert.Contains(t, block, "text (string, required)")
	assert.Contains(t, block, `<tool_use>{"tool": "tool_name", "arguments": {"param": "value"}}</tool_use>`)
}

// -------------------- FunctionTool Tests --------------------

func TestFunctionTool_Success(t *testing.T) {
	sumTool := NewFunctionTool(
		Definition{
			Name:        "calculate_sum",
			Description: "Calculate the sum of two numbers",
			Parameters: []ParameterSpec{
				{Name: "a", Type: "number", Required: true},
				{Name: "b", Type: "number", Required: true},
			},
		},
		func(_ core.ExecutionContext, args map[string]any) (any, error) {
			return args["a"].(float64) + args["b"].(float64), nil
		},
	)

	result, err := sumTool.Call(testExecCtx(), map[string]any{"a": 2.0, "b": 3.0})
	assert.NoError(t, err)
	assert.Equal(t, 5.0, result)
}

func TestFunctionTool_MissingRequired(t *testing.T) {
	_, err := echoTool("echo").Call(testExecCtx(), map[string]any{})
	require.Error(t, err)

	toolErr, ok := err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, CodeValidationError, toolErr.Code)
	assert.Contains(t, toolErr.Message, `"text"`)
}

func TestFunctionTool_TypeMismatch(t *testing.T) {
	_, err := echoTool("echo").Call(testExecCtx(), map[string]any{"text": 42})
	require.Error(t, err)

	toolErr, ok := err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, CodeValidationError, toolErr.Code)
}

func TestFunctionTool_ExecutionErrorWrapped(t *testing.T) {
	failing := NewFunctionTool(
		Definition{Name: "boom", Description: "Always fails"},
		func(_ core.ExecutionContext, _ map[string]any) (any, error) {
			return nil, assert.AnError
		},
	)

	_, err := failing.Call(testExecCtx(), map[string]any{})
	require.Error(t, err)
	toolErr, ok := err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, CodeExecutionError, toolErr.Code)
}

func TestFunctionTool_ToolErrorPassesThrough(t *testing.T) {
	custom := NewToolError("quota", "limit exceeded", "RATE_LIMITED")
	limited := NewFunctionTool(
		Definition{Name: "quota", Description: "Rate limited"},
		func(_ core.ExecutionContext, _ map[string]any) (any, error) {
			return nil, custom
		},
	)

	_, err := limited.Call(testExecCtx(), map[string]any{})
	require.Error(t, err)
	toolErr, ok := err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, "RATE_LIMITED", toolErr.Code)
}

func TestNewFunctionToolFromStruct(t *testing.T) {
	type args struct {
		City  string `json:"city" description:"City name"`
		Limit *int   `json:"limit" description:"Optional cap"`
		Note  string `json:"note,omitempty"`
	}

	impl := NewFunctionToolFromStruct("weather", "Get weather", args{}, func(_ core.ExecutionContext, a map[string]any) (any, error) {
		return a["city"], nil
	})

	def := impl.Definition()
	assert.Equal(t, "weather", def.Name)
	require.Len(t, def.Parameters, 3)
	assert.Equal(t, []string{"city"}, def.RequiredParameters())

	out, err := impl.Call(testExecCtx(), map[string]any{"city": "Lisbon"})
	assert.NoError(t, err)
	assert.Equal(t, "Lisbon", out)
}
