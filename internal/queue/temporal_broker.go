package queue

import (
	"context"
	"fmt"
	"strings"

	"go.temporal.io/api/enums/v1"
	temporalsdkclient "go.temporal.io/sdk/client"
)

// TemporalBroker implements Broker atop a Temporal client: enqueue starts
// a workflow execution by registered name on the given task queue, revoke
// terminates it by id, and inspect reads the task queue's poller info.
type TemporalBroker struct {
	client temporalsdkclient.Client
}

func NewTemporalBroker(c temporalsdkclient.Client) *TemporalBroker {
	return &TemporalBroker{client: c}
}

func (b *TemporalBroker) Enqueue(ctx context.Context, queueName, taskName string, payload interface{}, taskID string) (string, error) {
	opts := temporalsdkclient.StartWorkflowOptions{
		TaskQueue: queueName,
	}
	if taskID != "" {
		opts.ID = taskID
	}
	run, err := b.client.ExecuteWorkflow(ctx, opts, taskName, payload)
	if err != nil {
		return "", fmt.Errorf("queue: enqueue %s on %s: %w", taskName, queueName, err)
	}
	return externalID(run.GetID(), run.GetRunID()), nil
}

// Revoke broadcasts a terminate to the workflow identified by externalID.
// The engine only ever issues terminate=true revokes (see §5 cancellation
// protocol step 1), so that is the only mode exposed here.
func (b *TemporalBroker) Revoke(ctx context.Context, externalID string) error {
	workflowID, runID := splitExternalID(externalID)
	if workflowID == "" {
		return nil
	}
	err := b.client.TerminateWorkflow(ctx, workflowID, runID, "revoked by cancellation")
	if err != nil && !isNotFoundOrAlreadyClosed(err) {
		return fmt.Errorf("queue: revoke %s: %w", externalID, err)
	}
	return nil
}

func (b *TemporalBroker) Inspect(ctx context.Context, queueName string) (*Stats, error) {
	resp, err := b.client.DescribeTaskQueue(ctx, queueName, enums.TASK_QUEUE_TYPE_WORKFLOW)
	if err != nil {
		return nil, fmt.Errorf("queue: inspect %s: %w", queueName, err)
	}
	return &Stats{Queue: queueName, Pollers: len(resp.GetPollers())}, nil
}

func externalID(workflowID, runID string) string {
	return workflowID + ":" + runID
}

func splitExternalID(externalID string) (workflowID, runID string) {
	parts := strings.SplitN(externalID, ":", 2)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

func isNotFoundOrAlreadyClosed(err error) bool {
	// Best-effort: a revoke racing a task's own completion is not a failure
	// of the cancellation protocol.
	return strings.Contains(err.Error(), "workflow execution already completed") ||
		strings.Contains(err.Error(), "not found")
}
