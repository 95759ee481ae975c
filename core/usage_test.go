package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenUsage_Add(t *testing.T) {
	a := TokenUsage{PromptTokens: 10, CompletionTokens: 4, CacheTokens: 2, CostUSD: 0.01}
	b := TokenUsage{PromptTokens: 5, CompletionTokens: 1, CostUSD: 0.005}

	sum := a.Add(b)
	assert.Equal(t, 15, sum.PromptTokens)
	assert.Equal(t, 5, sum.CompletionTokens)
	assert.Equal(t, 2, sum.CacheTokens)
	assert.InDelta(t, 0.015, sum.CostUSD, 1e-9)
	assert.Equal(t, 22, sum.TotalTokens())
}

func TestGenerationConfig_PromptBudget(t *testing.T) {
	cfg := GenerationConfig{ContextWindow: 1000, ResponseReserve: 200}
	assert.Equal(t, 800, cfg.PromptBudget())

	// Reserve larger than the window clamps to zero instead of going negative.
	cfg = GenerationConfig{ContextWindow: 100, ResponseReserve: 200}
	assert.Equal(t, 0, cfg.PromptBudget())
}
