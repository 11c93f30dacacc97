// Package cancel implements the job cancellation protocol (§5): revoke
// every non-terminal task's broker dispatch, mark them cancelled, and
// transition the job to cancelled.
package cancel

import (
	"context"
	"fmt"

	"github.com/rakshabesafe/ppttovideo/internal/data/repos"
	"github.com/rakshabesafe/ppttovideo/internal/domain"
	"github.com/rakshabesafe/ppttovideo/internal/orchestration/jobctx"
	"github.com/rakshabesafe/ppttovideo/internal/pkg/dbctx"
	"github.com/rakshabesafe/ppttovideo/internal/platform/logger"
	"github.com/rakshabesafe/ppttovideo/internal/queue"
)

// Service performs the three-step cancellation protocol.
type Service struct {
	Jobs   repos.JobRepo
	Tasks  repos.TaskRepo
	Report *jobctx.Reporter
	Broker queue.Broker
	Log    *logger.Logger
}

func New(jobs repos.JobRepo, tasks repos.TaskRepo, report *jobctx.Reporter, broker queue.Broker, log *logger.Logger) *Service {
	return &Service{Jobs: jobs, Tasks: tasks, Report: report, Broker: broker, Log: log.With("component", "cancel")}
}

// CheckPoint reports the calling workflow/activity context's cancellation
// error, if any. C3/C4/C5 call it between blocking steps (downloads,
// uploads, external HTTP calls) so a task whose job was cancelled while
// the step was running stops at the next checkpoint instead of running to
// completion and only discovering the cancellation on its next DB write.
func CheckPoint(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// Cancel cancels jobID if it is in a non-terminal state. Returns
// ok=false, nil when the job was already terminal (not an error, per the
// engine's general terminal-state convention).
func (s *Service) Cancel(ctx context.Context, jobID uint64) (ok bool, err error) {
	job, err := s.Jobs.GetJob(dbctx.Context{Ctx: ctx}, jobID)
	if err != nil {
		return false, fmt.Errorf("cancel: load job: %w", err)
	}
	if job == nil {
		return false, fmt.Errorf("cancel: job %d not found", jobID)
	}
	if job.IsTerminal() {
		return false, nil
	}

	tasks, err := s.Tasks.ListTasks(dbctx.Context{Ctx: ctx}, jobID)
	if err != nil {
		return false, fmt.Errorf("cancel: list tasks: %w", err)
	}

	for _, t := range tasks {
		if t.ExternalID == "" || t.IsTerminal() {
			continue
		}
		if err := s.Broker.Revoke(ctx, t.ExternalID); err != nil {
			s.Log.Warn("cancel: revoke failed", "task_id", t.ID, "external_id", t.ExternalID, "error", err)
		}
		if err := s.Report.CancelTask(ctx, t.ID); err != nil {
			s.Log.Warn("cancel: failed to mark task cancelled", "task_id", t.ID, "error", err)
		}
	}

	ok, err = s.Jobs.SetJobStatus(dbctx.Context{Ctx: ctx}, jobID, domain.JobStatusCancelled, repos.JobStatusFields{})
	if err != nil {
		return false, fmt.Errorf("cancel: transition job: %w", err)
	}
	return ok, nil
}
