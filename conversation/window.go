package conversation

import "github.com/pablof7z/tenex-sub006/core"

// charsPerToken is the length heuristic used by EstimateTokens. It is
// approximate, not tokenizer-accurate; the windowing budget should leave
// headroom accordingly.
const charsPerToken = 4

// perMessageOverhead accounts for role markers and framing around each
// message in the provider's wire format.
const perMessageOverhead = 4

// EstimateTokens returns a cheap length-based token estimate for a message.
func EstimateTokens(msg core.Message) int {
	return len(msg.Content)/charsPerToken + perMessageOverhead
}

// EstimateTotalTokens sums EstimateTokens over a message slice.
func EstimateTotalTokens(msgs []core.Message) int {
	total := 0
	for _, m := range msgs {
		total += EstimateTokens(m)
	}
	return total
}

// WindowForBudget selects the subset of messages to send to a model given a
// token budget. The leading system message, if present, is always retained.
// Remaining messages are walked from most recent to oldest, accumulating
// estimated tokens, stopping before the budget is exceeded. Messages that do
// not fit are dropped from the returned prompt only; the durable store is
// untouched.
//
// The returned slice preserves original ordering.
func WindowForBudget(msgs []core.Message, budget int) []core.Message {
	if len(msgs) == 0 {
		return nil
	}

	var system *core.Message
	rest := msgs
	if msgs[0].Role == core.RoleSystem {
		system = &msgs[0]
		rest = msgs[1:]
		budget -= EstimateTokens(*system)
	}

	// Walk newest to oldest, collecting until the budget runs out.
	kept := 0
	used := 0
	for i := len(rest) - 1; i >= 0; i-- {
		cost := EstimateTokens(rest[i])
		if used+cost > budget {
			break
		}
		used += cost
		kept++
	}

	out := make([]core.Message, 0, kept+1)
	if system != nil {
		out = append(out, *system)
	}
	out = append(out, rest[len(rest)-kept:]...)
	return out
}
