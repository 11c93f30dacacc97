package synthesis

import (
	"time"

	"go.temporal.io/sdk/workflow"
)

// activityName is the registered name of Activities.Synthesize.
const activityName = "Synthesize"

// Workflow is SynthesizeWorkflow: a thin wrapper giving each synthesize
// task its own Temporal Workflow Execution on the gpu task queue, with
// ActivityOptions.StartToCloseTimeout set to T_hard, the engine's only
// enforcement of the hard time limit.
func Workflow(ctx workflow.Context, p Payload) error {
	hard := time.Duration(p.HardTimeLimitSeconds) * time.Second
	if hard <= 0 {
		hard = 360 * time.Second
	}
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: hard,
		HeartbeatTimeout:    15 * time.Second,
	})
	return workflow.ExecuteActivity(ctx, activityName, p).Get(ctx, nil)
}
