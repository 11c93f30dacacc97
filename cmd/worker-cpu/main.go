// Command worker-cpu runs the Dispatcher (C3) and Barrier+Assembler (C4)
// against the cpu Temporal task queue.
package main

import (
	"context"
	"fmt"
	"os"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/rakshabesafe/ppttovideo/internal/app"
	"github.com/rakshabesafe/ppttovideo/internal/orchestration/barrier"
	"github.com/rakshabesafe/ppttovideo/internal/orchestration/dispatcher"
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

	dispatchActs := &dispatcher.Activities{
		Jobs:     a.Jobs,
		Tasks:    a.Tasks,
		Report:   a.Report,
		Store:    a.Store,
		Renderer: a.Renderer,
		Broker:   a.Broker,
		Barrier:  a.BarrierCfg,
		Synth:    a.SynthCfg,
		Log:      a.Log,
	}
	barrierActs := &barrier.Activities{
		Jobs:   a.Jobs,
		Tasks:  a.Tasks,
		Report: a.Report,
		Store:  a.Store,
		Muxer:  a.Muxer,
		Log:    a.Log,
	}

	register := func(w worker.Worker) {
		w.RegisterWorkflowWithOptions(dispatcher.Workflow, workflow.RegisterOptions{Name: "DecomposeWorkflow"})
		w.RegisterActivityWithOptions(dispatchActs.Decompose, activity.RegisterOptions{Name: "Decompose"})

		w.RegisterWorkflowWithOptions(barrier.Workflow, workflow.RegisterOptions{Name: "AssembleWorkflow"})
		w.RegisterActivityWithOptions(barrierActs.CheckSettlement, activity.RegisterOptions{Name: "CheckSettlement"})
		w.RegisterActivityWithOptions(barrierActs.FailDeadlineExceeded, activity.RegisterOptions{Name: "FailDeadlineExceeded"})
		w.RegisterActivityWithOptions(barrierActs.Assemble, activity.RegisterOptions{Name: "Assemble"})
	}

	runner, err := temporalworker.NewRunner(a.Log, a.Temporal, a.BrokerCfg.CPUTaskQueue, register)
	if err != nil {
		a.Log.Fatal("init cpu worker runner", "error", err)
	}
	if err := runner.Start(ctx); err != nil {
		a.Log.Fatal("cpu worker failed to start", "error", err)
	}

	<-ctx.Done()
	a.Log.Info("cpu worker shutting down")
}
