// Package provider defines the model call boundary used by the interaction
// loops, health tracking with exponential backoff, and a failover chain.
package provider

import "context"

// Provider is the interface for communicating with an LLM.
// Concrete implementations live in separate packages (e.g. modules/provider/anthropic).
// Retries, if any, belong to the implementation; the loops never retry a call.
type Provider interface {
	// Complete sends a request and returns the full response.
	Complete(ctx context.Context, req Request) (Response, error)

	// ModelName returns the identifier of the underlying model.
	ModelName() string
}

// HealthChecker is an optional interface that providers may implement
// to support active health probing. When a provider is in cooldown,
// the failover chain calls HealthCheck periodically to determine
// if the provider has recovered.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
