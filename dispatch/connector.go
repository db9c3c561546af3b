package dispatch

import "context"

// Connector creates a fresh executor-side context. A context connects once
// at creation and again for every restore attempt; each successful
// connection starts a new generation.
type Connector interface {
	Connect(ctx context.Context, req InitRequest, notify Notifier) (Executor, InitResult, error)
}

// ConnectorFunc adapts a function to the Connector interface.
type ConnectorFunc func(ctx context.Context, req InitRequest, notify Notifier) (Executor, InitResult, error)

func (f ConnectorFunc) Connect(ctx context.Context, req InitRequest, notify Notifier) (Executor, InitResult, error) {
	return f(ctx, req, notify)
}
