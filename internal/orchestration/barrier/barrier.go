// Package barrier is the Barrier + Assembler (C4): waits for a job's
// fanned-out synthesize tasks to settle, then muxes images and audio into
// the final video.
package barrier

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/rakshabesafe/ppttovideo/internal/data/repos"
	"github.com/rakshabesafe/ppttovideo/internal/domain"
	"github.com/rakshabesafe/ppttovideo/internal/external/muxer"
	"github.com/rakshabesafe/ppttovideo/internal/orchestration/cancel"
	"github.com/rakshabesafe/ppttovideo/internal/orchestration/jobctx"
	"github.com/rakshabesafe/ppttovideo/internal/pkg/dbctx"
	"github.com/rakshabesafe/ppttovideo/internal/platform/logger"
	"github.com/rakshabesafe/ppttovideo/internal/platform/objectstore"
)

// Payload is the message an assemble task carries, enqueued by the
// Dispatcher's step 9.
type Payload struct {
	JobID            uint64
	TaskID           uint64
	ImagePaths       []string
	SynthExternalIDs []string
	Deadline         time.Time
}

// Activities bundles the collaborators the barrier/assembly activities need.
type Activities struct {
	Jobs   repos.JobRepo
	Tasks  repos.TaskRepo
	Report *jobctx.Reporter
	Store  objectstore.Store
	Muxer  muxer.Muxer
	Log    *logger.Logger
}

// CheckSettlement is Phase A's per-tick read: it reports whether every
// referenced synthesize task has reached a terminal state. Both success
// and failure count as settled; this activity never retries failed
// synthesis, it only observes.
func (a *Activities) CheckSettlement(ctx context.Context, externalIDs []string) (bool, error) {
	for _, extID := range externalIDs {
		task, err := a.Tasks.GetTaskByExternalID(dbctx.Context{Ctx: ctx}, extID)
		if err != nil {
			return false, fmt.Errorf("barrier: lookup task %s: %w", extID, err)
		}
		if task == nil || !task.IsTerminal() {
			return false, nil
		}
	}
	return true, nil
}

// FailDeadlineExceeded marks the job failed when Phase A's deadline
// elapses before every referenced task has settled.
func (a *Activities) FailDeadlineExceeded(ctx context.Context, jobID uint64, deadlineSeconds int64) error {
	_, err := a.Report.FailJob(ctx, jobID, fmt.Sprintf("synthesis timeout after %ds", deadlineSeconds))
	return err
}

// Assemble runs Phase B of §4.4 for job p.JobID, given the authoritative
// image ordering from Phase A's payload.
func (a *Activities) Assemble(ctx context.Context, p Payload) error {
	if err := a.Report.StartTask(ctx, p.TaskID); err != nil {
		a.Log.Warn("barrier: failed to mark assemble task running", "task_id", p.TaskID, "error", err)
	}

	job, err := a.Jobs.GetJob(dbctx.Context{Ctx: ctx}, p.JobID)
	if err != nil {
		return a.fail(ctx, p.TaskID, p.JobID, fmt.Errorf("barrier: load job: %w", err))
	}
	if job == nil {
		return a.fail(ctx, p.TaskID, p.JobID, fmt.Errorf("barrier: job %d not found", p.JobID))
	}

	if _, err := a.Report.TransitionJob(ctx, p.JobID, domain.JobStatusAssembling, repos.JobStatusFields{}); err != nil {
		return a.fail(ctx, p.TaskID, p.JobID, fmt.Errorf("barrier: set status assembling: %w", err))
	}

	workDir, err := os.MkdirTemp("", "ppttovideo-assemble-"+uuid.NewString())
	if err != nil {
		return a.fail(ctx, p.TaskID, p.JobID, fmt.Errorf("barrier: create work dir: %w", err))
	}
	defer os.RemoveAll(workDir)

	jobUUID := objectstore.JobUUID(job.SourceArtifactKey)
	pairs := make([]muxer.Pair, len(p.ImagePaths))
	for i, imagePath := range p.ImagePaths {
		slideIndex := i + 1

		if err := cancel.CheckPoint(ctx); err != nil {
			return a.fail(ctx, p.TaskID, p.JobID, fmt.Errorf("barrier: %w", err))
		}

		imgBucket, imgKey, err := a.Store.ParseCanonical(imagePath)
		if err != nil {
			return a.fail(ctx, p.TaskID, p.JobID, fmt.Errorf("barrier: parse image path for slide %d: %w", slideIndex, err))
		}
		imgLocal, err := a.downloadTo(ctx, workDir, fmt.Sprintf("slide_%d_image", slideIndex), imgBucket, imgKey)
		if err != nil {
			return a.fail(ctx, p.TaskID, p.JobID, fmt.Errorf("barrier: download image for slide %d: %w", slideIndex, err))
		}

		audioKey := objectstore.AudioKey(jobUUID, slideIndex)
		audioLocal, err := a.downloadTo(ctx, workDir, fmt.Sprintf("slide_%d_audio", slideIndex), objectstore.BucketPresentations, audioKey)
		if err != nil {
			if err == objectstore.ErrNotFound {
				return a.fail(ctx, p.TaskID, p.JobID, fmt.Errorf("missing audio for slide %d", slideIndex))
			}
			return a.fail(ctx, p.TaskID, p.JobID, fmt.Errorf("barrier: download audio for slide %d: %w", slideIndex, err))
		}

		pairs[i] = muxer.Pair{ImagePath: imgLocal, AudioPath: audioLocal}
	}

	if err := cancel.CheckPoint(ctx); err != nil {
		return a.fail(ctx, p.TaskID, p.JobID, fmt.Errorf("barrier: %w", err))
	}

	outPath := filepath.Join(workDir, "output.mp4")
	if err := a.Muxer.Mux(ctx, pairs, outPath); err != nil {
		return a.fail(ctx, p.TaskID, p.JobID, fmt.Errorf("barrier: mux: %w", err))
	}

	f, err := os.Open(outPath)
	if err != nil {
		return a.fail(ctx, p.TaskID, p.JobID, fmt.Errorf("barrier: open muxer output: %w", err))
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return a.fail(ctx, p.TaskID, p.JobID, fmt.Errorf("barrier: stat muxer output: %w", err))
	}

	outputKey := objectstore.OutputKey(p.JobID)
	resultPath, err := a.Store.Put(ctx, objectstore.BucketOutput, outputKey, f, info.Size())
	if err != nil {
		return a.fail(ctx, p.TaskID, p.JobID, fmt.Errorf("barrier: upload output: %w", err))
	}

	if err := a.Report.CompleteTask(ctx, p.TaskID, "assembled"); err != nil {
		return fmt.Errorf("barrier: mark assemble task completed: %w", err)
	}
	if _, err := a.Report.TransitionJob(ctx, p.JobID, domain.JobStatusCompleted, repos.JobStatusFields{ResultKey: &resultPath}); err != nil {
		return fmt.Errorf("barrier: set status completed: %w", err)
	}
	return nil
}

func (a *Activities) downloadTo(ctx context.Context, dir, name, bucket, key string) (string, error) {
	rc, err := a.Store.Get(ctx, bucket, key)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name+filepath.Ext(key))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (a *Activities) fail(ctx context.Context, taskID, jobID uint64, err error) error {
	if ferr := a.Report.FailTask(ctx, taskID, err.Error()); ferr != nil {
		a.Log.Warn("barrier: failed to record assemble task failure", "task_id", taskID, "error", ferr)
	}
	if _, ferr := a.Report.FailJob(ctx, jobID, err.Error()); ferr != nil {
		a.Log.Warn("barrier: failed to record job failure", "job_id", jobID, "error", ferr)
	}
	return err
}
