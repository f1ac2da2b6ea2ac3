package usecase

import "time"

// SearchMetrics receives retrieval search outcomes. A nil recorder is
// accepted everywhere one can be set.
type SearchMetrics interface {
	RecordSearch(resultCount int, empty bool, duration time.Duration, err error)
}

// AgentMetrics receives agent run and tool-call outcomes.
type AgentMetrics interface {
	RecordRun(route, status string)
	RecordToolCall(tool, status string)
}
