// Package eventlog models the external event/identity log the core
// collaborates with: a registry of agent profiles, an append-only sink for
// lessons, and identity resolution. The core treats the log as at-least-once
// and eventually consistent; it never assumes synchronous confirmation of a
// publish.
//
// The in-memory implementation here backs tests and single-process
// deployments. Durable transports live outside this module.
package eventlog
