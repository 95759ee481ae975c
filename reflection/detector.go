package reflection

import (
	"strings"

	"github.com/pablof7z/tenex-sub006/core"
)

// PatternType categorizes how a correction manifested in the conversation.
type PatternType string

const (
	// PatternUserCorrection is a user pointing out an assistant mistake.
	PatternUserCorrection PatternType = "user_correction"
	// PatternSelfCorrection is an assistant correcting its own prior message.
	PatternSelfCorrection PatternType = "self_correction"
	// PatternRevisionRequest is a user asking for the work to be redone.
	PatternRevisionRequest PatternType = "revision_request"
)

// CorrectionPattern is the result of the keyword scan: which pattern fired,
// the keywords that matched, a confidence scaled by match count, and the
// indices of the messages involved.
type CorrectionPattern struct {
	Type           PatternType `json:"type"`
	Indicators     []string    `json:"indicators"`
	Confidence     float64     `json:"confidence"`
	MessageIndices []int       `json:"message_indices"`
}

var userCorrectionKeywords = []string{
	"that's wrong", "that is wrong", "incorrect", "you're wrong",
	"not right", "that's a mistake", "not what i asked", "no, that",
}

var selfCorrectionKeywords = []string{
	"i was wrong", "i made a mistake", "let me correct", "correction:",
	"i misspoke", "my earlier answer was", "apologies, i",
}

var revisionRequestKeywords = []string{
	"please revise", "redo this", "try again", "rewrite", "start over",
	"change it to", "do it differently",
}

// DetectPattern runs three pure, ordered keyword scans over the trailing
// messages: user-correcting-assistant, assistant-correcting-itself,
// user-requesting-revision. Only the first pattern found, checked in that
// priority order, is returned. Absence of any match returns nil.
func DetectPattern(messages []core.Message) *CorrectionPattern {
	if len(messages) == 0 {
		return nil
	}
	last := len(messages) - 1
	tail := messages[last]

	if tail.Role == core.RoleUser && precededByAssistant(messages, last) {
		if p := matchKeywords(tail, PatternUserCorrection, userCorrectionKeywords, []int{last - 1, last}); p != nil {
			return p
		}
	}
	if tail.Role == core.RoleAssistant {
		if p := matchKeywords(tail, PatternSelfCorrection, selfCorrectionKeywords, []int{last}); p != nil {
			return p
		}
	}
	if tail.Role == core.RoleUser && precededByAssistant(messages, last) {
		if p := matchKeywords(tail, PatternRevisionRequest, revisionRequestKeywords, []int{last - 1, last}); p != nil {
			return p
		}
	}
	return nil
}

func precededByAssistant(messages []core.Message, idx int) bool {
	return idx > 0 && messages[idx-1].Role == core.RoleAssistant
}

// matchKeywords scans one message against a keyword set. Confidence starts
// at 0.6 and climbs 0.2 per matched keyword, capped at 1.0.
func matchKeywords(msg core.Message, pt PatternType, keywords []string, indices []int) *CorrectionPattern {
	lowered := strings.ToLower(msg.Content)
	var matched []string
	for _, kw := range keywords {
		if strings.Contains(lowered, kw) {
			matched = append(matched, kw)
		}
	}
	if len(matched) == 0 {
		return nil
	}
	confidence := 0.6 + 0.2*float64(len(matched))
	if confidence > 1.0 {
		confidence = 1.0
	}
	return &CorrectionPattern{
		Type:           pt,
		Indicators:     matched,
		Confidence:     confidence,
		MessageIndices: indices,
	}
}
