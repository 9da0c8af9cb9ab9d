// Package ingest provides the agent that forwards workflow runs requested
// over the broker, and the helper that submits those requests.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github-workflow-splunk-logger/src/broker"
	"github-workflow-splunk-logger/src/contracts"
	"github-workflow-splunk-logger/src/forwarder"
	"github-workflow-splunk-logger/src/logger"
	"github-workflow-splunk-logger/src/metrics"
	"github-workflow-splunk-logger/src/provider"
)

// DefaultGroupID is the consumer group shared by agent replicas.
const DefaultGroupID = "github-workflow-splunk-logger"

// RunForwarder processes a single run.
type RunForwarder interface {
	FetchAndDeliver(ctx context.Context, repo provider.RepoRef, runID int64) (*forwarder.Result, error)
}

// Agent consumes run requests, forwards each run and publishes the outcome.
type Agent struct {
	broker    broker.Broker
	forwarder RunForwarder
	logger    logger.Logger
	metrics   metrics.Recorder
	groupID   string
	now       func() time.Time
}

// NewAgent creates a new ingest agent.
func NewAgent(brk broker.Broker, fwd RunForwarder, log logger.Logger) *Agent {
	if log == nil {
		log = logger.NewSilentLogger()
	}
	return &Agent{
		broker:    brk,
		forwarder: fwd,
		logger:    log,
		metrics:   metrics.Nop{},
		groupID:   DefaultGroupID,
		now:       time.Now,
	}
}

// SetMetrics sets the recorder for processed runs.
func (a *Agent) SetMetrics(r metrics.Recorder) {
	if r != nil {
		a.metrics = r
	}
}

// SetGroupID overrides the consumer group.
func (a *Agent) SetGroupID(id string) {
	if id != "" {
		a.groupID = id
	}
}

// Run starts the agent's main loop. It returns when ctx is cancelled or the
// subscription closes.
func (a *Agent) Run(ctx context.Context) error {
	a.logger.Info("[IngestAgent] Starting...")

	msgChan, err := a.broker.Subscribe(ctx, contracts.TopicRunRequests, a.groupID)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", contracts.TopicRunRequests, err)
	}

	a.logger.Info("[IngestAgent] Listening for requests on '%s' topic...", contracts.TopicRunRequests)

	for {
		select {
		case msg, ok := <-msgChan:
			if !ok {
				a.logger.Info("[IngestAgent] Message channel closed, shutting down")
				return nil
			}

			if err := a.processRequest(ctx, msg); err != nil {
				a.logger.Error("[IngestAgent] Error processing request: %v", err)
			}

		case <-ctx.Done():
			a.logger.Info("[IngestAgent] Context cancelled, shutting down")
			return ctx.Err()
		}
	}
}

// processRequest forwards one run. Undecodable messages are dropped; every
// decodable request gets an outcome, including invalid ones.
func (a *Agent) processRequest(ctx context.Context, msg broker.Message) error {
	var request contracts.RunRequest
	if err := json.Unmarshal(msg.Value, &request); err != nil {
		return fmt.Errorf("failed to unmarshal request at offset %d: %w", msg.Offset, err)
	}

	a.logger.Info("[IngestAgent] Processing request %s (%s run %d)", request.RequestID, request.Repository, request.RunID)

	outcome := contracts.RunOutcome{
		RequestID:  request.RequestID,
		Repository: request.Repository,
		RunID:      request.RunID,
		Status:     contracts.OutcomeForwarded,
	}

	result, err := a.forward(ctx, request)
	if result != nil {
		outcome.EventsDelivered = result.EventsDelivered
	}
	if err != nil {
		outcome.Status = contracts.OutcomeFailed
		outcome.Error = err.Error()
		a.logger.Error("[IngestAgent] Run %d failed: %v", request.RunID, err)
	} else {
		a.logger.Info("[IngestAgent] Completed request %s (%d events delivered)", request.RequestID, outcome.EventsDelivered)
	}
	a.metrics.RunProcessed(err == nil)

	outcome.CompletedAt = a.now().UTC().Format(time.RFC3339)
	return a.publishOutcome(ctx, outcome)
}

func (a *Agent) forward(ctx context.Context, request contracts.RunRequest) (*forwarder.Result, error) {
	repo, err := provider.ParseRepository(request.Repository)
	if err != nil {
		return nil, err
	}
	if request.RunID <= 0 {
		return nil, fmt.Errorf("invalid run ID %d", request.RunID)
	}
	return a.forwarder.FetchAndDeliver(ctx, repo, request.RunID)
}

func (a *Agent) publishOutcome(ctx context.Context, outcome contracts.RunOutcome) error {
	data, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome: %w", err)
	}
	if err := a.broker.Publish(ctx, contracts.TopicRunOutcomes, outcome.Repository, data); err != nil {
		return fmt.Errorf("failed to publish outcome: %w", err)
	}
	return nil
}
