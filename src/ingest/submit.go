package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github-workflow-splunk-logger/src/broker"
	"github-workflow-splunk-logger/src/contracts"
	"github-workflow-splunk-logger/src/provider"
)

// NewRunRequest builds a request with a fresh ID.
func NewRunRequest(repo provider.RepoRef, runID int64) contracts.RunRequest {
	return contracts.RunRequest{
		RequestID:   "req-" + uuid.NewString(),
		Repository:  repo.String(),
		RunID:       runID,
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// Submit publishes one request per run ID, keyed by repository so an agent
// sees a repository's runs in submission order. It returns the request IDs
// published before any error.
func Submit(ctx context.Context, brk broker.Broker, repo provider.RepoRef, runIDs ...int64) ([]string, error) {
	ids := make([]string, 0, len(runIDs))
	for _, runID := range runIDs {
		request := NewRunRequest(repo, runID)

		data, err := json.Marshal(request)
		if err != nil {
			return ids, fmt.Errorf("failed to marshal request: %w", err)
		}
		if err := brk.Publish(ctx, contracts.TopicRunRequests, request.Repository, data); err != nil {
			return ids, fmt.Errorf("failed to publish request for run %d: %w", runID, err)
		}
		ids = append(ids, request.RequestID)
	}
	return ids, nil
}
