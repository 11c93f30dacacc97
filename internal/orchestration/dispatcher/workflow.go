package dispatcher

import (
	"time"

	"go.temporal.io/sdk/workflow"
)

const activityName = "Decompose"

// Workflow is DecomposeWorkflow: wraps the Decompose activity in its own
// Temporal Workflow Execution on the cpu task queue. Decompose is
// CPU-bound and expected to finish without a per-task deadline beyond the
// broker's own defaults (§4.3's performance notes), so this uses a
// generous fixed timeout rather than threading a config value through.
func Workflow(ctx workflow.Context, p Payload) error {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 15 * time.Minute,
	})
	return workflow.ExecuteActivity(ctx, activityName, p).Get(ctx, nil)
}
