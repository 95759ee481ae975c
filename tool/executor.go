package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/pablof7z/tenex-sub006/core"
	"github.com/pablof7z/tenex-sub006/logging"
)

// ExecutorConfig configures the batch executor.
type ExecutorConfig struct {
	MaxParallel int // 0 or <1 => no explicit limit (len(calls))
	Logger      logging.Logger
}

// Executor validates and runs parsed calls against a catalog. It never
// propagates an error or panic to its caller; every failure is folded into a
// Result with OK=false. Results are returned in input order regardless of
// completion order.
type Executor struct {
	cfg    ExecutorConfig
	logger logging.Logger
}

// NewExecutor constructs an executor with the given config.
func NewExecutor(cfg ExecutorConfig) *Executor {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Executor{cfg: cfg, logger: logger}
}

// ExecuteAll runs a batch of calls concurrently against the catalog and
// returns exactly one Result per Call, in Call order.
func (e *Executor) ExecuteAll(ctx context.Context, catalog *Catalog, execCtx core.ExecutionContext, calls []Call) []Result {
	n := len(calls)
	if n == 0 {
		return nil
	}

	// Fast path: single call, execute inline.
	if n == 1 {
		return []Result{e.executeOne(ctx, catalog, execCtx, calls[0])}
	}

	maxPar := e.cfg.MaxParallel
	if maxPar <= 0 || maxPar > n {
		maxPar = n
	}

	results := make([]Result, n)
	var wg sync.WaitGroup
	sem := make(chan struct{}, maxPar)

	batchStart := time.Now()
	for i := range calls {
		if ctx.Err() != nil { // pre-check cancellation
			results[i] = failedResult(calls[i], ctx.Err().Error())
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, call Call) {
			defer wg.Done()
			defer func() { <-sem }()
			results[idx] = e.executeOne(ctx, catalog, execCtx, call)
		}(i, calls[i])
	}
	wg.Wait()

	e.logger.Debug(
		"tool.batch.complete",
		"agent", execCtx.AgentID,
		"count", n,
		"parallelism", maxPar,
		"duration_ms", time.Since(batchStart).Milliseconds(),
	)
	return results
}

// executeOne looks up, validates and invokes a single call with panic safety.
func (e *Executor) executeOne(ctx context.Context, catalog *Catalog, execCtx core.ExecutionContext, call Call) Result {
	impl, ok := catalog.Get(call.Name)
	if !ok {
		e.logger.Warn("tool.execute.unknown_tool", "tool", call.Name, "agent", execCtx.AgentID)
		return failedResult(call, fmt.Sprintf("tool %q not found", call.Name))
	}

	if missing := missingRequired(impl.Definition(), call.Arguments); len(missing) > 0 {
		e.logger.Warn("tool.execute.missing_parameters", "tool", call.Name, "missing", strings.Join(missing, ","))
		return failedResult(call, fmt.Sprintf("missing required parameters: %s", strings.Join(missing, ", ")))
	}

	start := time.Now()
	var (
		output any
		err    error
	)
	func() { // panic safety
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("tool %s panicked: %v", call.Name, r)
				e.logger.Error("tool.execute.panic", "tool", call.Name, "recover", r, "stack", string(debug.Stack()))
			}
		}()
		output, err = impl.Call(execCtx, call.Arguments)
	}()
	dur := time.Since(start)

	e.logger.Info(
		"tool.execute.complete",
		"tool", call.Name,
		"agent", execCtx.AgentID,
		"duration_ms", dur.Milliseconds(),
		"error", err != nil,
	)

	if err != nil {
		res := failedResult(call, err.Error())
		res.Duration = dur
		return res
	}
	return Result{
		ToolCallID: call.ID,
		Output:     renderOutput(output),
		OK:         true,
		Duration:   dur,
	}
}

func failedResult(call Call, msg string) Result {
	return Result{ToolCallID: call.ID, Output: msg, OK: false, Error: msg}
}

// missingRequired returns the names of required parameters absent from args.
func missingRequired(def Definition, args map[string]any) []string {
	var missing []string
	for _, name := range def.RequiredParameters() {
		if _, present := args[name]; !present {
			missing = append(missing, name)
		}
	}
	return missing
}

// renderOutput normalizes a tool's return value into the string carried by
// tool-role messages. Strings pass through; everything else is JSON encoded.
func renderOutput(v any) string {
	switch out := v.(type) {
	case nil:
		return ""
	case string:
		return out
	case error:
		return out.Error()
	default:
		data, err := json.Marshal(out)
		if err != nil {
			return fmt.Sprintf("%v", out)
		}
		return string(data)
	}
}
