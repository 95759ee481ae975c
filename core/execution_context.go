package core

import "github.com/pablof7z/tenex-sub006/logging"

// ExecutionContext carries the identity scope and optional progress callback
// handed to a tool while it runs. It is passed by value; tools must not
// retain it beyond the call.
//
// Progress, when set, is invoked with short human-readable status strings
// during long-running executions (e.g. "cloning repository..."). Tools call
// ReportProgress rather than touching the field so a nil callback is safe.
type ExecutionContext struct {
	AgentID   string
	ProjectID string
	Progress  func(status string)

	logger logging.Logger
}

// NewExecutionContext builds a context for one tool execution round. A nil
// logger is substituted with a NoOpLogger.
func NewExecutionContext(agentID, projectID string, logger logging.Logger) ExecutionContext {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return ExecutionContext{AgentID: agentID, ProjectID: projectID, logger: logger}
}

// WithProgress returns a copy of the context with the progress callback set.
func (c ExecutionContext) WithProgress(fn func(status string)) ExecutionContext {
	c.Progress = fn
	return c
}

// Logger returns the context logger, never nil.
func (c ExecutionContext) Logger() logging.Logger {
	if c.logger == nil {
		return logging.NoOpLogger{}
	}
	return c.logger
}

// ReportProgress invokes the progress callback if one is attached.
func (c ExecutionContext) ReportProgress(status string) {
	if c.Progress != nil {
		c.Progress(status)
	}
}
