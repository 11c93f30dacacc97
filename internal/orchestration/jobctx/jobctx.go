// Package jobctx centralizes the sanctioned ways orchestration code
// reports progress and terminal outcomes onto Job/Task rows: a capability
// object whose methods are the writes business logic performs on the
// Job+Task pair this engine persists.
package jobctx

import (
	"context"

	"github.com/rakshabesafe/ppttovideo/internal/data/repos"
	"github.com/rakshabesafe/ppttovideo/internal/pkg/dbctx"
	"github.com/rakshabesafe/ppttovideo/internal/platform/logger"
)

// Reporter is the only sanctioned way component code mutates Job/Task
// state. It wraps JobRepo/TaskRepo so individual components never issue
// raw updates.
type Reporter struct {
	Jobs  repos.JobRepo
	Tasks repos.TaskRepo
	Log   *logger.Logger
}

func New(jobs repos.JobRepo, tasks repos.TaskRepo, log *logger.Logger) *Reporter {
	return &Reporter{Jobs: jobs, Tasks: tasks, Log: log}
}

func strp(s string) *string { return &s }

// StartTask transitions a task to running, stamping started_at.
func (r *Reporter) StartTask(ctx context.Context, taskID uint64) error {
	status := "running"
	return r.Tasks.UpdateTask(dbctx.Context{Ctx: ctx}, taskID, repos.TaskUpdate{Status: &status})
}

// ProgressTask records an advisory progress string without changing status.
func (r *Reporter) ProgressTask(ctx context.Context, taskID uint64, progress string) error {
	return r.Tasks.UpdateTask(dbctx.Context{Ctx: ctx}, taskID, repos.TaskUpdate{Progress: strp(progress)})
}

// CompleteTask transitions a task to completed, stamping completed_at and
// recording the tier/outcome that produced its artifact.
func (r *Reporter) CompleteTask(ctx context.Context, taskID uint64, progress string) error {
	status := "completed"
	return r.Tasks.UpdateTask(dbctx.Context{Ctx: ctx}, taskID, repos.TaskUpdate{Status: &status, Progress: strp(progress)})
}

// FailTask transitions a task to failed, stamping completed_at and recording the error.
func (r *Reporter) FailTask(ctx context.Context, taskID uint64, errText string) error {
	status := "failed"
	return r.Tasks.UpdateTask(dbctx.Context{Ctx: ctx}, taskID, repos.TaskUpdate{Status: &status, Error: strp(errText)})
}

// CancelTask transitions a task to cancelled, stamping completed_at.
func (r *Reporter) CancelTask(ctx context.Context, taskID uint64) error {
	status := "cancelled"
	return r.Tasks.UpdateTask(dbctx.Context{Ctx: ctx}, taskID, repos.TaskUpdate{Status: &status})
}

// RecordExternalID stamps the broker's opaque handle for a task (§4.3 step 7).
func (r *Reporter) RecordExternalID(ctx context.Context, taskID uint64, externalID string) error {
	return r.Tasks.UpdateTask(dbctx.Context{Ctx: ctx}, taskID, repos.TaskUpdate{ExternalID: strp(externalID)})
}

// TransitionJob applies a job status transition through SetJobStatus,
// returning ok=false (not an error) when the job is already terminal.
func (r *Reporter) TransitionJob(ctx context.Context, jobID uint64, status string, fields repos.JobStatusFields) (bool, error) {
	return r.Jobs.SetJobStatus(dbctx.Context{Ctx: ctx}, jobID, status, fields)
}

// FailJob transitions the job to failed with a single-line human-readable
// reason, per §7's user-visible-failure contract.
func (r *Reporter) FailJob(ctx context.Context, jobID uint64, reason string) (bool, error) {
	return r.Jobs.SetJobStatus(dbctx.Context{Ctx: ctx}, jobID, "failed", repos.JobStatusFields{Error: strp(reason)})
}
