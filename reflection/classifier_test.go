package reflection

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pablof7z/tenex-sub006/core"
	"github.com/pablof7z/tenex-sub006/provider"
)

func TestClassifier_ParsesCorrection(t *testing.T) {
	mock := provider.NewMockModel("m", "mock")
	mock.Enqueue(`The verdict:
{"is_correction": true, "confidence": 0.85, "issues": ["wrong capital"], "affected_agents": ["geo-agent"]}`)
	c := NewClassifier(mock, core.GenerationConfig{}, nil)

	event := core.NewMessage(core.RoleUser, "That's wrong, it is Canberra.")
	history := []core.Message{core.NewMessage(core.RoleAssistant, "Sydney.")}
	result := c.IsCorrection(context.Background(), event, history)

	assert.True(t, result.IsCorrection)
	assert.InDelta(t, 0.85, result.Confidence, 1e-9)
	assert.Equal(t, []string{"wrong capital"}, result.Issues)
	assert.Equal(t, []string{"geo-agent"}, result.AffectedAgents)
}

func TestClassifier_NegativeVerdict(t *testing.T) {
	mock := provider.NewMockModel("m", "mock")
	mock.Enqueue(`{"is_correction": false, "confidence": 0.9}`)
	c := NewClassifier(mock, core.GenerationConfig{}, nil)

	result := c.IsCorrection(context.Background(), core.NewMessage(core.RoleUser, "thanks!"), nil)
	assert.False(t, result.IsCorrection)
}

func TestClassifier_FailsClosedOnModelError(t *testing.T) {
	mock := provider.NewMockModel("m", "mock")
	mock.FailWith(errors.New("model down"))
	c := NewClassifier(mock, core.GenerationConfig{}, nil)

	result := c.IsCorrection(context.Background(), core.NewMessage(core.RoleUser, "that's wrong"), nil)
	assert.False(t, result.IsCorrection)
	assert.Zero(t, result.Confidence)
}

func TestClassifier_FailsClosedOnUnparsableResponse(t *testing.T) {
	mock := provider.NewMockModel("m", "mock")
	mock.Enqueue("I think it might be a correction, hard to say.")
	c := NewClassifier(mock, core.GenerationConfig{}, nil)

	result := c.IsCorrection(context.Background(), core.NewMessage(core.RoleUser, "that's wrong"), nil)
	assert.False(t, result.IsCorrection)
}

func TestClassifier_ClampsConfidence(t *testing.T) {
	mock := provider.NewMockModel("m", "mock")
	mock.Enqueue(`{"is_correction": true, "confidence": 7}`)
	c := NewClassifier(mock, core.GenerationConfig{}, nil)

	result := c.IsCorrection(context.Background(), core.NewMessage(core.RoleUser, "wrong"), nil)
	assert.Equal(t, 1.0, result.Confidence)
}

func TestClassifier_PromptCarriesHistoryAndEvent(t *testing.T) {
	mock := provider.NewMockModel("m", "mock")
	mock.Enqueue(`{"is_correction": false}`)
	c := NewClassifier(mock, core.GenerationConfig{}, nil)

	event := core.NewMessage(core.RoleUser, "the new message")
	history := []core.Message{core.NewMessage(core.RoleAssistant, "prior answer")}
	c.IsCorrection(context.Background(), event, history)

	reqs := mock.Requests()
	require.Len(t, reqs, 1)
	require.Len(t, reqs[0].Messages, 2)
	assert.Contains(t, reqs[0].Messages[1].Content, "prior answer")
	assert.Contains(t, reqs[0].Messages[1].Content, "the new message")
}
