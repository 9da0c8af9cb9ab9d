// Package contracts defines the data structures exchanged between the fetcher,
// the collector and the agent.
package contracts

// RunRequest asks the agent to forward one workflow run.
// Published to: github.workflow_runs.requested
// Key: {repository}
type RunRequest struct {
	RequestID   string `json:"request_id"`
	Repository  string `json:"repository"` // owner/name
	RunID       int64  `json:"run_id"`
	RequestedAt string `json:"requested_at,omitempty"`
}

// RunOutcome reports what happened to a RunRequest.
// Published to: github.workflow_runs.forwarded
// Key: {repository}
type RunOutcome struct {
	RequestID       string `json:"request_id"`
	Repository      string `json:"repository"`
	RunID           int64  `json:"run_id"`
	Status          string `json:"status"` // forwarded, failed
	EventsDelivered int    `json:"events_delivered"`
	Error           string `json:"error,omitempty"`
	CompletedAt     string `json:"completed_at"`
}

// Outcome statuses.
const (
	OutcomeForwarded = "forwarded"
	OutcomeFailed    = "failed"
)

// Topic names used in agent mode.
const (
	// TopicRunRequests carries RunRequest messages.
	TopicRunRequests = "github.workflow_runs.requested"

	// TopicRunOutcomes carries RunOutcome messages.
	TopicRunOutcomes = "github.workflow_runs.forwarded"
)
