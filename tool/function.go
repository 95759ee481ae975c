package tool

import (
	"fmt"
	"time"

	"github.com/pablof7z/tenex-sub006/core"
	"github.com/pablof7z/tenex-sub006/internal/util"
)

// FunctionTool is a generic adapter that exposes a plain Go function as a
// Tool.
//
// Responsibilities:
//   - Holds a declarative parameter specification (Definition)
//   - Validates supplied arguments against that specification before execution
//   - Invokes the wrapped function with the ExecutionContext carrying agent
//     identity, project identity and the progress callback
//   - Normalizes error handling so callers receive *ToolError with consistent
//     codes (VALIDATION_ERROR for argument mismatch, EXECUTION_ERROR for
//     failures from the wrapped function; custom codes pass through when the
//     function returns *ToolError directly)
//
// Concurrency: a FunctionTool has no internal mutable state after
// construction and is safe for concurrent use by multiple goroutines.
type FunctionTool struct {
	def Definition
	fn  func(execCtx core.ExecutionContext, args map[string]any) (any, error)
}

// NewFunctionTool constructs a FunctionTool from an explicit definition and
// function.
//
// Example:
//
//	sumTool := NewFunctionTool(
//	  Definition{
//	    Name:        "calculate_sum",
//	    Description: "Calculate the sum of two numbers",
//	    Parameters: []ParameterSpec{
//	      {Name: "a", Type: "number", Required: true},
//	      {Name: "b", Type: "number", Required: true},
//	    },
//	  },
//	  func(_ core.ExecutionContext, args map[string]any) (any, error) {
//	    return args["a"].(float64) + args["b"].(float64), nil
//	  },
//	)
func NewFunctionTool(def Definition, fn func(execCtx core.ExecutionContext, args map[string]any) (any, error)) *FunctionTool {
	return &FunctionTool{def: def, fn: fn}
}

// NewFunctionToolFromStruct derives the parameter specification from a struct
// using reflection. It is a convenience for simple argument containers.
//
// Example:
//
//	type SumArgs struct {
//	  A float64 `json:"a" description:"First addend"`
//	  B float64 `json:"b" description:"Second addend"`
//	}
//
//	sumTool := NewFunctionToolFromStruct("calculate_sum", "Calculate the sum of two numbers", SumArgs{}, fn)
func NewFunctionToolFromStruct(name, description string, structType any, fn func(execCtx core.ExecutionContext, args map[string]any) (any, error)) *FunctionTool {
	specs := util.SpecsFromStruct(structType)
	params := make([]ParameterSpec, 0, len(specs))
	for _, s := range specs {
		params = append(params, ParameterSpec{Name: s.Name, Type: s.Type, Description: s.Description, Required: s.Required})
	}
	return NewFunctionTool(Definition{Name: name, Description: description, Parameters: params}, fn)
}

// Definition returns the declarative description of this tool.
func (t *FunctionTool) Definition() Definition { return t.def }

// Call validates the provided args against the declared specification then
// invokes the underlying function. Validation or execution failures are
// wrapped (or passed through) as *ToolError for uniform downstream handling.
func (t *FunctionTool) Call(execCtx core.ExecutionContext, args map[string]any) (any, error) {
	logger := execCtx.Logger()
	start := time.Now()

	logger.Debug("tool.call.start", "tool", t.def.Name, "agent", execCtx.AgentID)

	for _, p := range t.def.Parameters {
		value, present := args[p.Name]
		if !present {
			if !p.Required {
				continue
			}
			logger.Warn("tool.call.validation_failed", "tool", t.def.Name, "field", p.Name)
			return nil, &ToolError{
				Tool:    t.def.Name,
				Message: fmt.Sprintf("required parameter %q is missing", p.Name),
				Code:    CodeValidationError,
			}
		}
		if err := util.CheckType(p.Name, value, p.Type); err != nil {
			logger.Warn("tool.call.validation_failed", "tool", t.def.Name, "error", err.Error())
			return nil, &ToolError{
				Tool:    t.def.Name,
				Message: fmt.Sprintf("parameter validation failed: %v", err),
				Code:    CodeValidationError,
				Details: err,
			}
		}
	}

	result, err := t.fn(execCtx, args)
	if err != nil {
		if toolErr, ok := err.(*ToolError); ok { // Already a ToolError -> just log and forward
			logger.Error("tool.call.error", "tool", t.def.Name, "error", toolErr.Message)
			return nil, toolErr
		}
		logger.Error("tool.call.error", "tool", t.def.Name, "error", err.Error())
		return nil, &ToolError{
			Tool:    t.def.Name,
			Message: err.Error(),
			Code:    CodeExecutionError,
		}
	}

	logger.Info("tool.call.success", "tool", t.def.Name, "duration_ms", time.Since(start).Milliseconds())
	return result, nil
}
