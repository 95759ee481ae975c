// Package core provides the foundational domain types and execution contexts
// used by the coordination core. It defines the shared abstractions for:
//
//   - Messages (immutable conversational records with roles and sender identity)
//   - Identities and Teams (who is talking, who owns a task)
//   - ExecutionContext (scoped identity + progress reporting for tool execution)
//   - Token usage accounting and model generation configuration
//
// The package intentionally keeps implementation concerns (stores, providers,
// review orchestration) out of scope, exposing small value types so higher
// packages can depend on a stable vocabulary without cycles.
package core
