package sdk

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// HealthStatus reports the reachability of each remote dependency. A nil
// field means healthy.
type HealthStatus struct {
	// RPC is the result of getHealth on the JSON-RPC node.
	RPC error
	// StorageNode is the result of an HTTP probe of the storage node.
	StorageNode error
}

// OK reports whether every dependency is healthy.
func (h HealthStatus) OK() bool {
	return h.RPC == nil && h.StorageNode == nil
}

// Err returns the first failure, or nil.
func (h HealthStatus) Err() error {
	if h.RPC != nil {
		return fmt.Errorf("rpc: %w", h.RPC)
	}
	if h.StorageNode != nil {
		return fmt.Errorf("storage node: %w", h.StorageNode)
	}
	return nil
}

// Health probes the JSON-RPC node and the storage node.
func (c *Client) Health(ctx context.Context) HealthStatus {
	var status HealthStatus
	if err := c.chain.Health(ctx); err != nil {
		zap.L().Warn("rpc unhealthy", zap.String("rpc", c.cfg.RPCAddr), zap.Error(err))
		status.RPC = err
	}
	if err := c.store.Ping(ctx); err != nil {
		zap.L().Warn("storage node unreachable", zap.String("endpoint", c.store.Endpoint), zap.Error(err))
		status.StorageNode = err
	}
	return status
}
