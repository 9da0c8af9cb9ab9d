package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github-workflow-splunk-logger/src/contracts"
	"github-workflow-splunk-logger/src/forwarder"
	"github-workflow-splunk-logger/src/logger"
	"github-workflow-splunk-logger/src/metrics"
	"github-workflow-splunk-logger/src/provider"
)

// Config wires the server to GitHub and, optionally, to a collector.
type Config struct {
	Provider provider.Provider
	// Deliverer sends forwarded events. Without one, forward_workflow_run
	// is not registered.
	Deliverer forwarder.Deliverer
	Options   forwarder.Options
	// DefaultRepository is used when a call names neither a URL nor a repository.
	DefaultRepository string
	Logger            logger.Logger
	Metrics           metrics.Recorder
}

// Server is the MCP server for the forwarder.
type Server struct {
	mcpServer *server.MCPServer
	cfg       Config
	store     PreviewStore
}

// NewServer creates a new MCP server.
func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = logger.NewSilentLogger()
	}

	s := server.NewMCPServer(
		"github-workflow-splunk-logger",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	srv := &Server{
		mcpServer: s,
		cfg:       cfg,
		store:     NewInMemoryStore(DefaultPreviewCapacity),
	}
	srv.registerTools()

	return srv
}

func runSelectorOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("url",
			mcp.Description("Workflow run URL, e.g. https://github.com/owner/repo/actions/runs/123"),
		),
		mcp.WithString("repository",
			mcp.Description("Repository as owner/name, used with run_id"),
		),
		mcp.WithNumber("run_id",
			mcp.Description("Workflow run ID, used with repository"),
		),
	}
}

// registerTools registers all available tools.
func (s *Server) registerTools() {
	previewTool := mcp.NewTool("preview_workflow_run", append([]mcp.ToolOption{
		mcp.WithDescription("Fetch a GitHub Actions workflow run and build the Splunk HEC events it would produce, without sending them. Returns a manifest of events; use get_event_details to see a full event."),
		mcp.WithReadOnlyHintAnnotation(true),
	}, runSelectorOptions()...)...)

	detailsTool := mcp.NewTool("get_event_details",
		mcp.WithDescription("Get the full HEC envelope of one previewed event, including job logs."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("request_id",
			mcp.Required(),
			mcp.Description("Request ID from preview_workflow_run"),
		),
		mcp.WithNumber("index",
			mcp.Required(),
			mcp.Description("Event index from the manifest"),
		),
	)

	s.mcpServer.AddTool(previewTool, s.handlePreview)
	s.mcpServer.AddTool(detailsTool, s.handleEventDetails)

	if s.cfg.Deliverer != nil {
		forwardTool := mcp.NewTool("forward_workflow_run", append([]mcp.ToolOption{
			mcp.WithDescription("Fetch a GitHub Actions workflow run and send its workflow and job events to Splunk HEC."),
			mcp.WithDestructiveHintAnnotation(false),
		}, runSelectorOptions()...)...)
		s.mcpServer.AddTool(forwardTool, s.handleForward)
	}
}

// Run starts the MCP server on stdio.
func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) resolveRun(request mcp.CallToolRequest) (provider.RepoRef, int64, error) {
	if url := request.GetString("url", ""); url != "" {
		return provider.ParseRunURL(url)
	}

	repo, err := provider.ParseRepository(request.GetString("repository", s.cfg.DefaultRepository))
	if err != nil {
		return provider.RepoRef{}, 0, err
	}

	runID := int64(request.GetInt("run_id", 0))
	if runID <= 0 {
		return provider.RepoRef{}, 0, fmt.Errorf("url or run_id parameter is required")
	}
	return repo, runID, nil
}

// handlePreview collects the run's events in memory and returns a manifest.
func (s *Server) handlePreview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repo, runID, err := s.resolveRun(request)
	if err != nil {
		return mcp.NewToolResultError(provider.WrapError(err).Error()), nil
	}

	collector := &forwarder.Collector{}
	fwd := forwarder.New(s.cfg.Provider, collector, s.cfg.Options, s.cfg.Logger)
	if _, err := fwd.FetchAndDeliver(ctx, repo, runID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("preview failed: %v", provider.WrapError(err))), nil
	}

	requestID := generateRequestID()
	s.store.Store(requestID, collector.Events)

	return jsonResult(buildManifest(requestID, repo, runID, collector.Events))
}

// handleEventDetails returns one stored event.
func (s *Server) handleEventDetails(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	requestID := request.GetString("request_id", "")
	if requestID == "" {
		return mcp.NewToolResultError("request_id parameter is required"), nil
	}

	index := request.GetInt("index", -1)
	event, found := s.store.Get(requestID, index)
	if !found {
		return mcp.NewToolResultError(fmt.Sprintf("event not found: request_id=%s, index=%d", requestID, index)), nil
	}

	return jsonResult(event)
}

// handleForward sends the run to the collector.
func (s *Server) handleForward(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repo, runID, err := s.resolveRun(request)
	if err != nil {
		return mcp.NewToolResultError(provider.WrapError(err).Error()), nil
	}

	fwd := forwarder.New(s.cfg.Provider, s.cfg.Deliverer, s.cfg.Options, s.cfg.Logger)
	if s.cfg.Metrics != nil {
		fwd.SetMetrics(s.cfg.Metrics)
	}

	report := ForwardReport{Repository: repo.String(), RunID: runID}
	result, err := fwd.FetchAndDeliver(ctx, repo, runID)
	if result != nil {
		report.EventsDelivered = result.EventsDelivered
		report.JobsDelivered = result.JobsDelivered
		report.LogFailures = result.LogFailures
	}
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.RunProcessed(err == nil)
	}
	if err != nil {
		report.Error = provider.WrapError(err).Error()
		data, _ := json.Marshal(report)
		return mcp.NewToolResultError(string(data)), nil
	}

	return jsonResult(report)
}

func buildManifest(requestID string, repo provider.RepoRef, runID int64, events []contracts.Event) PreviewManifest {
	manifest := PreviewManifest{
		RequestID:  requestID,
		Repository: repo.String(),
		RunID:      runID,
		EventCount: len(events),
		Events:     make([]EventSummary, 0, len(events)),
	}

	for i, event := range events {
		summary := EventSummary{Index: i, Source: event.Source, SourceType: event.SourceType}
		switch body := event.Body.(type) {
		case contracts.WorkflowEvent:
			summary.Status = forwarder.EffectiveStatus(body.Workflow.Status, body.Workflow.Conclusion)
			manifest.Workflow = body.Workflow.Name
			manifest.Status = summary.Status
		case contracts.JobEvent:
			summary.Job = body.JobName
			summary.Status = body.JobStatus
			if body.Logs != nil {
				summary.LogBytes = len(*body.Logs)
			}
		}
		manifest.Events = append(manifest.Events, summary)
	}

	return manifest
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// generateRequestID creates a unique request identifier.
func generateRequestID() string {
	return "req-" + uuid.NewString()
}
