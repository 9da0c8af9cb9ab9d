// Package mcp exposes the forwarder to MCP clients: preview the events a
// workflow run would produce, drill into them, and forward the run.
package mcp

// PreviewManifest is the preview_workflow_run response. Event bodies are
// left out; fetch them with get_event_details.
type PreviewManifest struct {
	RequestID  string         `json:"request_id"`
	Repository string         `json:"repository"`
	RunID      int64          `json:"run_id"`
	Workflow   string         `json:"workflow"`
	Status     string         `json:"status"`
	EventCount int            `json:"event_count"`
	Events     []EventSummary `json:"events"`
}

// EventSummary describes one previewed event.
type EventSummary struct {
	Index      int    `json:"index"`
	Source     string `json:"source"`
	SourceType string `json:"sourcetype"`
	Job        string `json:"job,omitempty"`
	Status     string `json:"status"`
	LogBytes   int    `json:"log_bytes,omitempty"`
}

// ForwardReport is the forward_workflow_run response.
type ForwardReport struct {
	Repository      string `json:"repository"`
	RunID           int64  `json:"run_id"`
	EventsDelivered int    `json:"events_delivered"`
	JobsDelivered   int    `json:"jobs_delivered"`
	LogFailures     int    `json:"log_failures"`
	Error           string `json:"error,omitempty"`
}
