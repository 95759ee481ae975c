// Package provider defines the model capability consumed by the coordination
// core and the orchestrating provider that drives the tool-use round trip.
//
// A Model is anything that can turn a message list (plus an optional
// declarative tool schema) into one assistant response. The Orchestrator
// wraps a base Model: it injects tool instructions, parses the response for
// embedded tool calls, executes them, and performs exactly one follow-up
// model call to produce the final answer with tool effects applied.
//
// Vendor adapters for the Anthropic and OpenAI APIs live in the anthropic and
// openai subpackages.
package provider
