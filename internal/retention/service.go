// Package retention implements the Retention Service (C6): preview and
// deletion of old or specific jobs, sweeping both the Job Store and every
// object-store prefix a job touched.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/rakshabesafe/ppttovideo/internal/data/repos"
	"github.com/rakshabesafe/ppttovideo/internal/domain"
	"github.com/rakshabesafe/ppttovideo/internal/orchestration/jobctx"
	"github.com/rakshabesafe/ppttovideo/internal/pkg/dbctx"
	"github.com/rakshabesafe/ppttovideo/internal/platform/logger"
	"github.com/rakshabesafe/ppttovideo/internal/platform/objectstore"
)

// DefaultStaleRunningAge is how long a task may sit in "running" before a
// sweep treats it as orphaned (its worker crashed or its heartbeat died
// without the task ever reaching a terminal state).
const DefaultStaleRunningAge = 2 * time.Hour

// DefaultStatusFilter is the status_filter applied when the caller does
// not name one explicitly: only jobs that have reached an outcome are
// swept, never a job still in flight.
var DefaultStatusFilter = []string{domain.JobStatusCompleted, domain.JobStatusFailed}

// Service is the Retention Service.
type Service struct {
	Jobs   repos.JobRepo
	Tasks  repos.TaskRepo
	Report *jobctx.Reporter
	Store  objectstore.Store
	Log    *logger.Logger
}

func New(jobs repos.JobRepo, tasks repos.TaskRepo, report *jobctx.Reporter, store objectstore.Store, log *logger.Logger) *Service {
	return &Service{Jobs: jobs, Tasks: tasks, Report: report, Store: store, Log: log.With("component", "retention")}
}

// ReclaimStale finds tasks stuck in "running" past olderThan (a crashed
// worker, a heartbeat that stopped without the task ever settling) and
// fails them so a dead task doesn't block its job's barrier forever. It
// is a read/write sweep, distinct from Preview/DeleteOld's job-row
// cleanup, run as part of the same retention pass.
func (s *Service) ReclaimStale(ctx context.Context, olderThan time.Duration) ([]*domain.Task, error) {
	if olderThan <= 0 {
		olderThan = DefaultStaleRunningAge
	}
	stale, err := s.Tasks.ListStaleRunning(dbctx.Context{Ctx: ctx}, olderThan)
	if err != nil {
		return nil, fmt.Errorf("retention: list stale running tasks: %w", err)
	}
	for _, t := range stale {
		if err := s.Report.FailTask(ctx, t.ID, fmt.Sprintf("reclaimed: no progress for over %s", olderThan)); err != nil {
			s.Log.Warn("retention: failed to reclaim stale task", "task_id", t.ID, "error", err)
		}
	}
	return stale, nil
}

// Candidate is one job considered by a sweep, annotated with the per-path
// errors collected while removing its artifacts (nil when everything
// succeeded and the job row itself was deleted).
type Candidate struct {
	Job          *domain.Job
	ObjectErrors []error
	DeletedRow   bool
}

// Preview lists jobs older than cutoff matching statusFilter without
// deleting anything. An empty statusFilter falls back to DefaultStatusFilter.
func (s *Service) Preview(ctx context.Context, cutoff time.Time, statusFilter []string) ([]*domain.Job, error) {
	if len(statusFilter) == 0 {
		statusFilter = DefaultStatusFilter
	}
	return s.Jobs.ListJobsOlderThan(dbctx.Context{Ctx: ctx}, cutoff, statusFilter)
}

// DeleteOld sweeps every job older than cutoff matching statusFilter.
func (s *Service) DeleteOld(ctx context.Context, cutoff time.Time, statusFilter []string) ([]Candidate, error) {
	if len(statusFilter) == 0 {
		statusFilter = DefaultStatusFilter
	}
	jobs, err := s.Jobs.ListJobsOlderThan(dbctx.Context{Ctx: ctx}, cutoff, statusFilter)
	if err != nil {
		return nil, fmt.Errorf("retention: list candidates: %w", err)
	}
	return s.deleteAll(ctx, jobs), nil
}

// DeleteSpecific sweeps exactly the named jobs, regardless of age or status.
func (s *Service) DeleteSpecific(ctx context.Context, jobIDs []uint64) ([]Candidate, error) {
	var jobs []*domain.Job
	for _, id := range jobIDs {
		j, err := s.Jobs.GetJob(dbctx.Context{Ctx: ctx}, id)
		if err != nil {
			return nil, fmt.Errorf("retention: load job %d: %w", id, err)
		}
		if j == nil {
			continue
		}
		jobs = append(jobs, j)
	}
	return s.deleteAll(ctx, jobs), nil
}

func (s *Service) deleteAll(ctx context.Context, jobs []*domain.Job) []Candidate {
	out := make([]Candidate, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, s.deleteOne(ctx, j))
	}
	return out
}

// deleteOne performs the exact five-step deletion ordering: the source
// artifact, the result artifact, the job's audio/notes prefixes (keyed by
// job id), the job_uuid-rooted image/catch-all prefix, and finally the
// Job Store row cascade. Object-store errors are collected per path and
// do not abort the sweep; the row is only deleted after all four
// object-store steps have been attempted, regardless of their outcome.
func (s *Service) deleteOne(ctx context.Context, j *domain.Job) Candidate {
	c := Candidate{Job: j}

	if err := s.deletePath(ctx, j.SourceArtifactKey); err != nil {
		c.ObjectErrors = append(c.ObjectErrors, fmt.Errorf("source artifact: %w", err))
	}
	if j.ResultArtifactKey != nil && *j.ResultArtifactKey != "" {
		if err := s.deletePath(ctx, *j.ResultArtifactKey); err != nil {
			c.ObjectErrors = append(c.ObjectErrors, fmt.Errorf("result artifact: %w", err))
		}
	}

	if _, err := s.Store.DeletePrefix(ctx, objectstore.BucketPresentations, objectstore.AudioPrefix(j.ID)); err != nil {
		c.ObjectErrors = append(c.ObjectErrors, fmt.Errorf("audio prefix: %w", err))
	}
	if _, err := s.Store.DeletePrefix(ctx, objectstore.BucketPresentations, objectstore.NotesPrefix(j.ID)); err != nil {
		c.ObjectErrors = append(c.ObjectErrors, fmt.Errorf("notes prefix: %w", err))
	}

	jobUUID := objectstore.JobUUID(j.SourceArtifactKey)
	if _, err := s.Store.DeletePrefix(ctx, objectstore.BucketPresentations, objectstore.ImagesPrefix(jobUUID)); err != nil {
		c.ObjectErrors = append(c.ObjectErrors, fmt.Errorf("images prefix: %w", err))
	}
	if _, err := s.Store.DeletePrefix(ctx, objectstore.BucketPresentations, objectstore.JobUUIDPrefix(jobUUID)); err != nil {
		c.ObjectErrors = append(c.ObjectErrors, fmt.Errorf("job_uuid catch-all prefix: %w", err))
	}

	if err := s.Jobs.DeleteJobCascade(dbctx.Context{Ctx: ctx}, j.ID); err != nil {
		s.Log.Warn("retention: failed to delete job row", "job_id", j.ID, "error", err)
		return c
	}
	c.DeletedRow = true
	return c
}

// deletePath parses a canonical "/{bucket}/{key}" artifact path and
// deletes it. An empty path is a no-op: not every job has a result
// artifact yet.
func (s *Service) deletePath(ctx context.Context, canonicalOrKey string) error {
	if canonicalOrKey == "" {
		return nil
	}
	bucket, key, err := s.Store.ParseCanonical(canonicalOrKey)
	if err != nil {
		bucket, key = objectstore.BucketIngest, canonicalOrKey
	}
	return s.Store.Delete(ctx, bucket, key)
}
