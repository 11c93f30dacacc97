// Package queue is the broker abstraction (§6 broker contract): two named
// queues (cpu, gpu), enqueue/revoke/inspect, at-least-once delivery. The
// engine's chosen broker implementation is Temporal (temporal_broker.go);
// Broker itself stays implementation-agnostic so components depend only
// on the contract.
package queue

import "context"

const (
	QueueCPU = "cpu"
	QueueGPU = "gpu"
)

// Stats is the result of inspect(queue): the queue name and its poller
// count; active and reserved task lists are not reported. This is a
// dashboard read-out, non-essential to correctness per §6.
type Stats struct {
	Queue   string
	Pollers int
}

// Broker is the sanctioned interface for dispatching and controlling
// asynchronous work across the cpu/gpu queues.
type Broker interface {
	// Enqueue dispatches taskName with payload onto queue, returning an
	// opaque external id used later for Revoke. taskID, when non-empty,
	// is used as a deterministic dispatch id so re-enqueuing the same
	// logical task is idempotent.
	Enqueue(ctx context.Context, queueName, taskName string, payload interface{}, taskID string) (externalID string, err error)
	// Revoke affects all queues; terminate=true per the contract's default.
	Revoke(ctx context.Context, externalID string) error
	Inspect(ctx context.Context, queueName string) (*Stats, error)
}
