package core

// TokenUsage captures token and cost accounting for one or more model calls.
// Fields are additive so multi-pass operations can merge usage with Add.
type TokenUsage struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	CacheTokens      int     `json:"cache_tokens"`
	CostUSD          float64 `json:"cost_usd"`
}

// TotalTokens returns the summed token count across all categories.
func (u TokenUsage) TotalTokens() int {
	return u.PromptTokens + u.CompletionTokens + u.CacheTokens
}

// Add returns the field-wise sum of two usage records.
func (u TokenUsage) Add(other TokenUsage) TokenUsage {
	return TokenUsage{
		PromptTokens:     u.PromptTokens + other.PromptTokens,
		CompletionTokens: u.CompletionTokens + other.CompletionTokens,
		CacheTokens:      u.CacheTokens + other.CacheTokens,
		CostUSD:          u.CostUSD + other.CostUSD,
	}
}

// GenerationConfig selects and tunes the model for a single call. It is
// injected as plain values by the host application's config layer.
type GenerationConfig struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	// ContextWindow is the model's total context size in tokens.
	ContextWindow int `json:"context_window"`
	// ResponseReserve is subtracted from ContextWindow when computing the
	// prompt token budget, leaving room for the completion.
	ResponseReserve int `json:"response_reserve"`
}

// PromptBudget returns the token budget available for prompt messages.
func (c GenerationConfig) PromptBudget() int {
	budget := c.ContextWindow - c.ResponseReserve
	if budget < 0 {
		return 0
	}
	return budget
}
