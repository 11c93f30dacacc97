package barrier

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/workflow"
)

// PollInterval is the fixed barrier poll cadence (§4.4 Phase A: "fixed
// cadence (10 s)"). It is a package variable rather than a Payload field
// because it is an engine-wide constant, not a per-job parameter.
var PollInterval = 10 * time.Second

// Workflow is AssembleWorkflow: it ticks CheckSettlement at PollInterval
// until every referenced synthesize task has settled or the deadline
// passes (Phase A), then runs Assemble (Phase B). Mirrors this
// codebase's job-tick workflow shape (poll an activity, workflow.Sleep
// between ticks) rather than relying on Temporal's native Future/Selector
// primitives, so the barrier's polling cadence stays the literal,
// testable quantity the contract names.
func Workflow(ctx workflow.Context, p Payload) error {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
	})

	for {
		var settled bool
		if err := workflow.ExecuteActivity(ctx, activityNameCheckSettlement, p.SynthExternalIDs).Get(ctx, &settled); err != nil {
			return err
		}
		if settled {
			break
		}

		if workflow.Now(ctx).After(p.Deadline) {
			deadlineSeconds := int64(p.Deadline.Sub(workflow.GetInfo(ctx).WorkflowStartTime).Seconds())
			if err := workflow.ExecuteActivity(ctx, activityNameFailDeadlineExceeded, p.JobID, deadlineSeconds).Get(ctx, nil); err != nil {
				return err
			}
			return fmt.Errorf("barrier: synthesis deadline exceeded for job %d", p.JobID)
		}

		if err := workflow.Sleep(ctx, PollInterval); err != nil {
			return err
		}
	}

	assembleCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Minute,
		HeartbeatTimeout:    time.Minute,
	})
	return workflow.ExecuteActivity(assembleCtx, activityNameAssemble, p).Get(assembleCtx, nil)
}

const (
	activityNameCheckSettlement      = "CheckSettlement"
	activityNameFailDeadlineExceeded = "FailDeadlineExceeded"
	activityNameAssemble             = "Assemble"
)
