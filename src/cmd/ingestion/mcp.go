package ingestion

import (
	"github-workflow-splunk-logger/src/forwarder"
	"github-workflow-splunk-logger/src/mcp"
)

// MCPServer exposes the components as MCP tools. Forwarding is offered only
// when a collector is configured.
func (c *Components) MCPServer() *mcp.Server {
	var d forwarder.Deliverer
	if c.Sender != nil {
		d = c.Sender
	}

	return mcp.NewServer(mcp.Config{
		Provider:          c.Provider,
		Deliverer:         d,
		Options:           c.Config.ForwarderOptions(),
		DefaultRepository: c.Config.Repository,
		Logger:            c.Logger,
		Metrics:           c.Metrics,
	})
}
