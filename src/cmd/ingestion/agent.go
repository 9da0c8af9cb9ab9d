package ingestion

import (
	"context"
	"errors"

	"github-workflow-splunk-logger/src/broker"
	"github-workflow-splunk-logger/src/ingest"
)

// RunAgent consumes run requests from Redpanda until ctx is done. A
// cancelled context is a clean shutdown.
func (c *Components) RunAgent(ctx context.Context, groupID string) error {
	c.Logger.Info("Redpanda brokers: %v", c.Config.RedpandaBrokers)

	brk, err := broker.NewRedpandaBroker(c.Config.RedpandaBrokers, c.Logger)
	if err != nil {
		return err
	}
	defer brk.Close()

	return c.runAgent(ctx, brk, groupID)
}

func (c *Components) runAgent(ctx context.Context, brk broker.Broker, groupID string) error {
	c.ServeMetrics(ctx)

	agent := ingest.NewAgent(brk, c.Forwarder(), c.Logger)
	agent.SetMetrics(c.Metrics)
	agent.SetGroupID(groupID)

	c.Logger.Info("Ingest agent started, waiting for requests...")
	if err := agent.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	c.Logger.Info("Ingest agent stopped")
	return nil
}
