// Package dispatcher is the Dispatcher (C3): decomposes a job into
// per-slide note artifacts and a fan-out of synthesize tasks, then
// schedules the barrier.
package dispatcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rakshabesafe/ppttovideo/internal/data/repos"
	"github.com/rakshabesafe/ppttovideo/internal/domain"
	"github.com/rakshabesafe/ppttovideo/internal/external/renderer"
	"github.com/rakshabesafe/ppttovideo/internal/orchestration/barrier"
	"github.com/rakshabesafe/ppttovideo/internal/orchestration/cancel"
	"github.com/rakshabesafe/ppttovideo/internal/orchestration/jobctx"
	"github.com/rakshabesafe/ppttovideo/internal/orchestration/synthesis"
	"github.com/rakshabesafe/ppttovideo/internal/pkg/dbctx"
	"github.com/rakshabesafe/ppttovideo/internal/platform/config"
	"github.com/rakshabesafe/ppttovideo/internal/platform/logger"
	"github.com/rakshabesafe/ppttovideo/internal/platform/objectstore"
	"github.com/rakshabesafe/ppttovideo/internal/queue"
)

// Payload is the (job_id) message carried on the cpu queue for a decompose task.
type Payload struct {
	JobID uint64
}

// Activities bundles the Dispatcher's collaborators.
type Activities struct {
	Jobs     repos.JobRepo
	Tasks    repos.TaskRepo
	Report   *jobctx.Reporter
	Store    objectstore.Store
	Renderer *renderer.Client
	Broker   queue.Broker
	Barrier  config.Barrier
	Synth    config.Synthesis
	Log      *logger.Logger
}

// Decompose runs the 9-step algorithm of §4.3 for job p.JobID. It is
// registered as a Temporal activity on the cpu task queue.
func (a *Activities) Decompose(ctx context.Context, p Payload) error {
	task, err := a.Tasks.CreateTask(dbctx.Context{Ctx: ctx}, p.JobID, domain.TaskKindDecompose, nil, "")
	if err != nil {
		return fmt.Errorf("dispatcher: create decompose task: %w", err)
	}
	if err := a.Report.StartTask(ctx, task.ID); err != nil {
		a.Log.Warn("dispatcher: failed to mark decompose task running", "task_id", task.ID, "error", err)
	}

	job, err := a.Jobs.GetJob(dbctx.Context{Ctx: ctx}, p.JobID)
	if err != nil {
		return a.fail(ctx, task.ID, p.JobID, fmt.Errorf("dispatcher: load job: %w", err))
	}
	if job == nil {
		return a.fail(ctx, task.ID, p.JobID, fmt.Errorf("dispatcher: job %d not found", p.JobID))
	}

	if _, err := a.Report.TransitionJob(ctx, p.JobID, domain.JobStatusDecomposing, repos.JobStatusFields{}); err != nil {
		return a.fail(ctx, task.ID, p.JobID, fmt.Errorf("dispatcher: set status decomposing: %w", err))
	}

	sourceBucket, sourceKey, err := a.Store.ParseCanonical(job.SourceArtifactKey)
	if err != nil {
		return a.fail(ctx, task.ID, p.JobID, fmt.Errorf("dispatcher: parse source artifact key: %w", err))
	}

	if err := cancel.CheckPoint(ctx); err != nil {
		return a.fail(ctx, task.ID, p.JobID, fmt.Errorf("dispatcher: %w", err))
	}

	notes, err := a.downloadAndExtractNotes(ctx, sourceBucket, sourceKey)
	if err != nil {
		return a.fail(ctx, task.ID, p.JobID, fmt.Errorf("dispatcher: extract notes: %w", err))
	}
	n := len(notes)

	for i, text := range notes {
		if err := cancel.CheckPoint(ctx); err != nil {
			return a.fail(ctx, task.ID, p.JobID, fmt.Errorf("dispatcher: %w", err))
		}
		key := objectstore.NotesKey(p.JobID, i+1)
		if _, err := a.Store.Put(ctx, objectstore.BucketPresentations, key, bytes.NewReader([]byte(text)), int64(len(text))); err != nil {
			return a.fail(ctx, task.ID, p.JobID, fmt.Errorf("dispatcher: upload notes slide %d: %w", i+1, err))
		}
	}

	if _, err := a.Report.TransitionJob(ctx, p.JobID, domain.JobStatusDecomposing, repos.JobStatusFields{SlideCount: &n}); err != nil {
		return a.fail(ctx, task.ID, p.JobID, fmt.Errorf("dispatcher: set slide_count: %w", err))
	}

	if err := cancel.CheckPoint(ctx); err != nil {
		return a.fail(ctx, task.ID, p.JobID, fmt.Errorf("dispatcher: %w", err))
	}

	images, err := a.Renderer.Convert(ctx, sourceBucket, sourceKey)
	if err != nil {
		return a.fail(ctx, task.ID, p.JobID, fmt.Errorf("dispatcher: render slides: %w", err))
	}
	if len(images) != n {
		return a.fail(ctx, task.ID, p.JobID, fmt.Errorf("dispatcher: renderer returned %d images, expected %d", len(images), n))
	}

	externalIDs := make([]string, n)
	for i := 0; i < n; i++ {
		slideIndex := i + 1
		synthTask, err := a.Tasks.CreateTask(dbctx.Context{Ctx: ctx}, p.JobID, domain.TaskKindSynthesize, &slideIndex, "")
		if err != nil {
			return a.fail(ctx, task.ID, p.JobID, fmt.Errorf("dispatcher: create synthesize task %d: %w", slideIndex, err))
		}
		dispatchID := fmt.Sprintf("job-%d-synthesize-%d", p.JobID, slideIndex)
		extID, err := a.Broker.Enqueue(ctx, queue.QueueGPU, "SynthesizeWorkflow", synthesis.Payload{
			JobID:                p.JobID,
			SlideIndex:           slideIndex,
			TaskID:               synthTask.ID,
			HardTimeLimitSeconds: int64(a.Synth.HardTimeLimit.Seconds()),
		}, dispatchID)
		if err != nil {
			return a.fail(ctx, task.ID, p.JobID, fmt.Errorf("dispatcher: enqueue synthesize task %d: %w", slideIndex, err))
		}
		if err := a.Report.RecordExternalID(ctx, synthTask.ID, extID); err != nil {
			a.Log.Warn("dispatcher: failed to record synthesize external id", "task_id", synthTask.ID, "error", err)
		}
		externalIDs[i] = extID
	}

	if err := a.Report.CompleteTask(ctx, task.ID, "decomposed"); err != nil {
		return fmt.Errorf("dispatcher: mark decompose task completed: %w", err)
	}
	if _, err := a.Report.TransitionJob(ctx, p.JobID, domain.JobStatusSynthesizing, repos.JobStatusFields{}); err != nil {
		return fmt.Errorf("dispatcher: set status synthesizing: %w", err)
	}

	assembleTask, err := a.Tasks.CreateTask(dbctx.Context{Ctx: ctx}, p.JobID, domain.TaskKindAssemble, nil, "")
	if err != nil {
		return fmt.Errorf("dispatcher: create assemble task: %w", err)
	}
	assembleDispatchID := fmt.Sprintf("job-%d-assemble", p.JobID)
	extID, err := a.Broker.Enqueue(ctx, queue.QueueCPU, "AssembleWorkflow", barrier.Payload{
		JobID:            p.JobID,
		TaskID:           assembleTask.ID,
		ImagePaths:       images,
		SynthExternalIDs: externalIDs,
		Deadline:         time.Now().Add(a.Barrier.Deadline),
	}, assembleDispatchID)
	if err != nil {
		return fmt.Errorf("dispatcher: enqueue assemble task: %w", err)
	}
	if err := a.Report.RecordExternalID(ctx, assembleTask.ID, extID); err != nil {
		a.Log.Warn("dispatcher: failed to record assemble external id", "task_id", assembleTask.ID, "error", err)
	}
	return nil
}

func (a *Activities) downloadAndExtractNotes(ctx context.Context, bucket, key string) ([]string, error) {
	rc, err := a.Store.Get(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	return ExtractNotes(bytes.NewReader(data), int64(len(data)))
}

// fail implements the failure policy of §4.3: mark the decompose task
// failed and the job failed with the same error text, leave any
// already-enqueued synthesize tasks to run and be reaped by retention.
func (a *Activities) fail(ctx context.Context, decomposeTaskID, jobID uint64, err error) error {
	if ferr := a.Report.FailTask(ctx, decomposeTaskID, err.Error()); ferr != nil {
		a.Log.Warn("dispatcher: failed to record decompose task failure", "task_id", decomposeTaskID, "error", ferr)
	}
	if _, ferr := a.Report.FailJob(ctx, jobID, err.Error()); ferr != nil {
		a.Log.Warn("dispatcher: failed to record job failure", "job_id", jobID, "error", ferr)
	}
	return err
}
