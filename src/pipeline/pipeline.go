// Package pipeline drains queues of workflow runs through the forwarder.
// It is used by the CLI batch command and by the MCP server.
package pipeline

import (
	"context"
	"fmt"

	"github-workflow-splunk-logger/src/forwarder"
	"github-workflow-splunk-logger/src/provider"
	"github-workflow-splunk-logger/src/store"
)

// Mode selects where the batch queue lives.
type Mode int

const (
	// FileMode reads pending run IDs from a local file.
	FileMode Mode = iota
	// PostgresMode keeps the queue in Postgres so several workers can share it.
	PostgresMode
)

func (m Mode) String() string {
	switch m {
	case FileMode:
		return "file"
	case PostgresMode:
		return "postgres"
	default:
		return "unknown"
	}
}

// QueueConfig names the queue sources.
type QueueConfig struct {
	File        string
	PostgresDSN string
}

// DetectMode picks Postgres when a DSN is configured.
func DetectMode(cfg QueueConfig) Mode {
	if cfg.PostgresDSN != "" {
		return PostgresMode
	}
	return FileMode
}

// OpenQueue opens the queue for cfg. In Postgres mode a configured file is
// imported into the table first.
func OpenQueue(ctx context.Context, cfg QueueConfig) (store.RunQueue, error) {
	if DetectMode(cfg) == FileMode {
		if cfg.File == "" {
			return nil, &provider.ConfigError{Option: "workflow_ids_file"}
		}
		return store.NewFileQueue(cfg.File)
	}

	pq, err := store.NewPostgresQueue(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to create Postgres queue: %w", err)
	}

	if cfg.File != "" {
		fq, err := store.NewFileQueue(cfg.File)
		if err != nil {
			pq.Close()
			return nil, err
		}
		ids, err := fq.Pending(ctx, 0)
		if err != nil {
			pq.Close()
			return nil, err
		}
		if err := pq.Enqueue(ctx, ids...); err != nil {
			pq.Close()
			return nil, err
		}
	}

	return pq, nil
}

// RunForwarder processes a single run.
type RunForwarder interface {
	FetchAndDeliver(ctx context.Context, repo provider.RepoRef, runID int64) (*forwarder.Result, error)
}
