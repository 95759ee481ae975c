// Package conversation implements the per-agent conversation store: an
// ordered, append-only message log per conversation with token-aware
// windowing for building model prompts.
//
// Each conversation represents one agent's perspective on a shared thread;
// no two agents ever share a mutable Conversation value. Windowing only
// affects the prompt sent to a model, never the durable store.
package conversation
