// Package tool implements the tool subsystem that lets agents invoke
// structured capabilities (APIs, computations, side-effects) mid-conversation:
// a registry of schema-described tools, a best-effort parser that extracts
// invocation requests embedded in model output, and an executor that runs a
// batch of parsed calls with consistent error handling.
package tool

import (
	"fmt"
	"sort"
	"time"

	"github.com/pablof7z/tenex-sub006/core"
)

// ParameterSpec describes one parameter accepted by a tool.
type ParameterSpec struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // JSON schema type: string, number, integer, boolean, array, object
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

// Definition declaratively exposes a callable capability to models. Names
// must be unique within a catalog.
type Definition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ParameterSpec `json:"parameters,omitempty"`
}

// RequiredParameters returns the names of all required parameters.
func (d Definition) RequiredParameters() []string {
	var names []string
	for _, p := range d.Parameters {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}

// JSONSchema renders the parameter list as a minimal JSON Schema object, the
// shape provider SDKs expect for function/tool declarations.
func (d Definition) JSONSchema() map[string]any {
	properties := make(map[string]any, len(d.Parameters))
	var required []string
	for _, p := range d.Parameters {
		prop := map[string]any{"type": p.Type}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// Tool is the interface for extending agent capabilities with external
// functions.
//
// Tool implementations should:
//   - Provide clear, descriptive names and descriptions (snake_case recommended)
//   - Declare parameters accurately so validation can protect them
//   - Handle errors gracefully and report long-running progress via the
//     ExecutionContext callback
//   - Be safe for concurrent use; one batch may run calls in parallel
type Tool interface {
	// Definition returns the declarative description of this tool.
	Definition() Definition

	// Call executes the tool with parsed arguments and the execution scope
	// (agent identity, project identity, progress callback).
	Call(execCtx core.ExecutionContext, args map[string]any) (any, error)
}

// ToolError represents errors that occur during tool lookup, validation or
// execution.
type ToolError struct {
	Tool    string      `json:"tool"`              // Name of the tool that failed
	Message string      `json:"message"`           // Error message
	Code    string      `json:"code"`              // Error code for categorization
	Details interface{} `json:"details,omitempty"` // Additional error details
}

// Error codes used by the executor and FunctionTool.
const (
	CodeUnknownTool      = "UNKNOWN_TOOL"
	CodeMissingParameter = "MISSING_PARAMETER"
	CodeValidationError  = "VALIDATION_ERROR"
	CodeExecutionError   = "EXECUTION_ERROR"
)

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}

// Template is the mutable builder for a Catalog. A project typically builds
// one template with its shared capabilities, then snapshots one catalog per
// agent. Cross-agent registration is "construct N catalogs from one
// template", never in-place mutation of a shared catalog.
type Template struct {
	tools map[string]Tool
	order []string
}

// NewTemplate constructs an empty template.
func NewTemplate() *Template {
	return &Template{tools: make(map[string]Tool)}
}

// Register adds a tool to the template. Registering a duplicate name fails.
func (t *Template) Register(impl Tool) error {
	name := impl.Definition().Name
	if name == "" {
		return fmt.Errorf("tool registration requires a non-empty name")
	}
	if _, exists := t.tools[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}
	t.tools[name] = impl
	t.order = append(t.order, name)
	return nil
}

// MustRegister is Register that panics on error, for static wiring at startup.
func (t *Template) MustRegister(impl Tool) {
	if err := t.Register(impl); err != nil {
		panic(err)
	}
}

// Build snapshots the template into an immutable Catalog. The template may
// keep being extended afterwards without affecting built catalogs.
func (t *Template) Build() *Catalog {
	tools := make(map[string]Tool, len(t.tools))
	for k, v := range t.tools {
		tools[k] = v
	}
	order := make([]string, len(t.order))
	copy(order, t.order)
	return &Catalog{tools: tools, order: order}
}

// Catalog is an agent's owned, immutable-after-construction set of tools.
// It is safe for concurrent use without locking.
type Catalog struct {
	tools map[string]Tool
	order []string
}

// EmptyCatalog returns a catalog with no tools.
func EmptyCatalog() *Catalog {
	return &Catalog{tools: map[string]Tool{}}
}

// Get returns the tool registered under name.
func (c *Catalog) Get(name string) (Tool, bool) {
	impl, ok := c.tools[name]
	return impl, ok
}

// Len returns the number of registered tools.
func (c *Catalog) Len() int { return len(c.tools) }

// Names returns registered tool names sorted alphabetically.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.tools))
	for name := range c.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions returns tool definitions in registration order.
func (c *Catalog) Definitions() []Definition {
	defs := make([]Definition, 0, len(c.order))
	for _, name := range c.order {
		defs = append(defs, c.tools[name].Definition())
	}
	return defs
}

// Call identifies one parsed invocation request. IDs are generated locally by
// the parser, never supplied by the model.
type Call struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// NewCall builds a call with a fresh local ID.
func NewCall(name string, args map[string]any) Call {
	if args == nil {
		args = map[string]any{}
	}
	return Call{ID: core.NewID(), Name: name, Arguments: args}
}

// Result is the normalized outcome of executing one Call. Exactly one Result
// exists per executed Call, failed or not.
type Result struct {
	ToolCallID string        `json:"tool_call_id"`
	Output     string        `json:"output"`
	OK         bool          `json:"ok"`
	Error      string        `json:"error,omitempty"`
	RenderHint string        `json:"render_hint,omitempty"`
	Duration   time.Duration `json:"duration,omitempty"`
}
