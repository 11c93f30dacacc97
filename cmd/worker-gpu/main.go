// Command worker-gpu runs the Synthesis Worker (C5) against the gpu
// Temporal task queue. Up to WORKER_CONCURRENCY (default 4) synthesize
// activities run at once in one process; they are not serialized onto the
// GPU.
package main

import (
	"context"
	"fmt"
	"os"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/rakshabesafe/ppttovideo/internal/app"
	"github.com/rakshabesafe/ppttovideo/internal/orchestration/synthesis"
	"github.com/rakshabesafe/ppttovideo/internal/platform/shutdown"
	"github.com/rakshabesafe/ppttovideo/internal/temporalx/temporalworker"
)

func main() {
	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	acts := &synthesis.Activities{
		Jobs:   a.Jobs,
		Voices: a.Voices,
		Report: a.Report,
		Store:  a.Store,
		Synth:  a.Synth,
		Cfg:    a.SynthCfg,
		Log:    a.Log,
	}

	register := func(w worker.Worker) {
		w.RegisterWorkflowWithOptions(synthesis.Workflow, workflow.RegisterOptions{Name: "SynthesizeWorkflow"})
		w.RegisterActivityWithOptions(acts.Synthesize, activity.RegisterOptions{Name: "Synthesize"})
	}

	runner, err := temporalworker.NewRunner(a.Log, a.Temporal, a.BrokerCfg.GPUTaskQueue, register)
	if err != nil {
		a.Log.Fatal("init gpu worker runner", "error", err)
	}
	if err := runner.Start(ctx); err != nil {
		a.Log.Fatal("gpu worker failed to start", "error", err)
	}

	<-ctx.Done()
	a.Log.Info("gpu worker shutting down")
}
