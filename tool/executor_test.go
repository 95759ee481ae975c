package tool

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pablof7z/tenex-sub006/core"
)

func sleepyTool(name string, d time.Duration, out string) Tool {
	return NewFunctionTool(
		Definition{Name: name, Description: "Sleeps then answers"},
		func(_ core.ExecutionContext, _ map[string]any) (any, error) {
			time.Sleep(d)
			return out, nil
		},
	)
}

func TestExecutor_SingleCall(t *testing.T) {
	tmpl := NewTemplate()
	tmpl.MustRegister(echoTool("echo"))
	exec := NewExecutor(ExecutorConfig{})

	call := NewCall("echo", map[string]any{"text": "hi"})
	results := exec.ExecuteAll(context.Background(), tmpl.Build(), testExecCtx(), []Call{call})

	require.Len(t, results, 1)
	assert.True(t, results[0].OK)
	assert.Equal(t, "hi", results[0].Output)
	assert.Equal(t, call.ID, results[0].ToolCallID)
}

func TestExecutor_ResultsInInputOrder(t *testing.T) {
	// The slowest tool comes first; results must still follow call order.
	tmpl := NewTemplate()
	tmpl.MustRegister(sleepyTool("slow", 60*time.Millisecond, "slow done"))
	tmpl.MustRegister(sleepyTool("mid", 20*time.Millisecond, "mid done"))
	tmpl.MustRegister(sleepyTool("fast", 0, "fast done"))
	exec := NewExecutor(ExecutorConfig{MaxParallel: 3})

	calls := []Call{
		NewCall("slow", nil),
		NewCall("mid", nil),
		NewCall("fast", nil),
	}
	results := exec.ExecuteAll(context.Background(), tmpl.Build(), testExecCtx(), calls)

	require.Len(t, results, 3)
	assert.Equal(t, "slow done", results[0].Output)
	assert.Equal(t, "mid done", results[1].Output)
	assert.Equal(t, "fast done", results[2].Output)
	for i, res := range results {
		assert.Equal(t, calls[i].ID, res.ToolCallID)
		assert.True(t, res.OK)
	}
}

func TestExecutor_MaxParallelRespected(t *testing.T) {
	var active, peak int64
	tmpl := NewTemplate()
	tmpl.MustRegister(NewFunctionTool(
		Definition{Name: "count", Description: "Tracks concurrency"},
		func(_ core.ExecutionContext, _ map[string]any) (any, error) {
			cur := atomic.AddInt64(&active, 1)
			for {
				old := atomic.LoadInt64(&peak)
				if cur <= old || atomic.CompareAndSwapInt64(&peak, old, cur) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			atomic.AddInt64(&active, -1)
			return "ok", nil
		},
	))
	exec := NewExecutor(ExecutorConfig{MaxParallel: 2})

	calls := make([]Call, 6)
	for i := range calls {
		calls[i] = NewCall("count", nil)
	}
	results := exec.ExecuteAll(context.Background(), tmpl.Build(), testExecCtx(), calls)

	require.Len(t, results, 6)
	assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(2))
}

func TestExecutor_UnknownTool(t *testing.T) {
	exec := NewExecutor(ExecutorConfig{})
	results := exec.ExecuteAll(context.Background(), EmptyCatalog(), testExecCtx(), []Call{NewCall("nope", nil)})

	require.Len(t, results, 1)
	assert.False(t, results[0].OK)
	assert.Contains(t, results[0].Error, "not found")
	assert.Contains(t, results[0].Output, "not found")
}

func TestExecutor_MissingRequiredParameters(t *testing.T) {
	tmpl := NewTemplate()
	tmpl.MustRegister(echoTool("echo"))
	exec := NewExecutor(ExecutorConfig{})

	results := exec.ExecuteAll(context.Background(), tmpl.Build(), testExecCtx(), []Call{NewCall("echo", nil)})

	require.Len(t, results, 1)
	assert.False(t, results[0].OK)
	assert.Contains(t, results[0].Error, "missing required parameters: text")
}

func TestExecutor_PanicRecovered(t *testing.T) {
	tmpl := NewTemplate()
	tmpl.MustRegister(NewFunctionTool(
		Definition{Name: "bomb", Description: "Panics"},
		func(_ core.ExecutionContext, _ map[string]any) (any, error) {
			panic("kaboom")
		},
	))
	tmpl.MustRegister(echoTool("echo"))
	exec := NewExecutor(ExecutorConfig{})

	calls := []Call{
		NewCall("bomb", nil),
		NewCall("echo", map[string]any{"text": "still here"}),
	}
	results := exec.ExecuteAll(context.Background(), tmpl.Build(), testExecCtx(), calls)

	require.Len(t, results, 2)
	assert.False(t, results[0].OK)
	assert.Contains(t, results[0].Error, "panicked")
	assert.Contains(t, results[0].Error, "kaboom")
	assert.True(t, results[1].OK)
	assert.Equal(t, "still here", results[1].Output)
}

func TestExecutor_FailureIsolatedFromBatch(t *testing.T) {
	tmpl := NewTemplate()
	tmpl.MustRegister(NewFunctionTool(
		Definition{Name: "fail", Description: "Always errors"},
		func(_ core.ExecutionContext, _ map[string]any) (any, error) {
			return nil, fmt.Errorf("backend unavailable")
		},
	))
	tmpl.MustRegister(echoTool("echo"))
	exec := NewExecutor(ExecutorConfig{MaxParallel: 2})

	calls := []Call{
		NewCall("fail", nil),
		NewCall("echo", map[string]any{"text": "fine"}),
	}
	results := exec.ExecuteAll(context.Background(), tmpl.Build(), testExecCtx(), calls)

	require.Len(t, results, 2)
	assert.False(t, results[0].OK)
	assert.Contains(t, results[0].Error, "backend unavailable")
	assert.True(t, results[1].OK)
}

func TestExecutor_EmptyBatch(t *testing.T) {
	exec := NewExecutor(ExecutorConfig{})
	assert.Nil(t, exec.ExecuteAll(context.Background(), EmptyCatalog(), testExecCtx(), nil))
}

func TestExecutor_NonStringOutputJSONEncoded(t *testing.T) {
	tmpl := NewTemplate()
	tmpl.MustRegister(NewFunctionTool(
		Definition{Name: "stats", Description: "Returns a struct"},
		func(_ core.ExecutionContext, _ map[string]any) (any, error) {
			return map[string]any{"count": 2}, nil
		},
	))
	exec := NewExecutor(ExecutorConfig{})

	results := exec.ExecuteAll(context.Background(), tmpl.Build(), testExecCtx(), []Call{NewCall("stats", nil)})
	require.Len(t, results, 1)
	assert.JSONEq(t, `{"count": 2}`, results[0].Output)
}
