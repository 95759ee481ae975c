package reflection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pablof7z/tenex-sub006/core"
)

func exchange(assistant, user string) []core.Message {
	return []core.Message{
		core.NewMessage(core.RoleAssistant, assistant),
		core.NewMessage(core.RoleUser, user),
	}
}

func TestDetectPattern_UserCorrection(t *testing.T) {
	p := DetectPattern(exchange("The capital of Australia is Sydney.", "That's wrong, it is Canberra."))

	require.NotNil(t, p)
	assert.Equal(t, PatternUserCorrection, p.Type)
	assert.Equal(t, []string{"that's wrong"}, p.Indicators)
	assert.Greater(t, p.Confidence, 0.7)
	assert.Equal(t, []int{0, 1}, p.MessageIndices)
}

func TestDetectPattern_ConfidenceScalesWithMatches(t *testing.T) {
	single := DetectPattern(exchange("answer", "That's wrong."))
	double := DetectPattern(exchange("answer", "That's wrong, the value is incorrect."))

	require.NotNil(t, single)
	require.NotNil(t, double)
	assert.InDelta(t, 0.8, single.Confidence, 1e-9)
	assert.InDelta(t, 1.0, double.Confidence, 1e-9)
	assert.Len(t, double.Indicators, 2)
}

func TestDetectPattern_SelfCorrection(t *testing.T) {
	msgs := []core.Message{
		core.NewMessage(core.RoleUser, "What is 7*8?"),
		core.NewMessage(core.RoleAssistant, "54. Wait, I made a mistake, it is 56."),
	}

	p := DetectPattern(msgs)
	require.NotNil(t, p)
	assert.Equal(t, PatternSelfCorrection, p.Type)
	assert.Equal(t, []int{1}, p.MessageIndices)
}

func TestDetectPattern_RevisionRequest(t *testing.T) {
	p := DetectPattern(exchange("Here is the draft.", "Please revise the opening paragraph."))

	require.NotNil(t, p)
	assert.Equal(t, PatternRevisionRequest, p.Type)
}

func TestDetectPattern_UserCorrectionTakesPriorityOverRevision(t *testing.T) {
	p := DetectPattern(exchange("Here is the draft.", "That's wrong, please revise it."))

	require.NotNil(t, p)
	assert.Equal(t, PatternUserCorrection, p.Type)
}

func TestDetectPattern_UserMessageNeedsPrecedingAssistant(t *testing.T) {
	// A correction-sounding opener with no assistant message before it is not
	// a correction of agent work.
	msgs := []core.Message{core.NewMessage(core.RoleUser, "That's wrong in the docs, by the way.")}
	assert.Nil(t, DetectPattern(msgs))

	msgs = []core.Message{
		core.NewMessage(core.RoleUser, "first"),
		core.NewMessage(core.RoleUser, "That's wrong."),
	}
	assert.Nil(t, DetectPattern(msgs))
}

func TestDetectPattern_CaseInsensitive(t *testing.T) {
	p := DetectPattern(exchange("answer", "INCORRECT. Look again."))
	require.NotNil(t, p)
	assert.Equal(t, PatternUserCorrection, p.Type)
}

func TestDetectPattern_NoMatch(t *testing.T) {
	assert.Nil(t, DetectPattern(exchange("Here you go.", "Thanks, looks great!")))
	assert.Nil(t, DetectPattern(nil))
}
