package repos

import (
	"context"
	"testing"
	"time"

	"github.com/rakshabesafe/ppttovideo/internal/data/repos/testutil"
	"github.com/rakshabesafe/ppttovideo/internal/domain"
	"github.com/rakshabesafe/ppttovideo/internal/pkg/dbctx"
)

func TestJobRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewJobRepo(db, testutil.Logger(t))

	job, err := repo.CreateJob(dbc, "owner-1", "voice-1", "ingest/abc.pptx")
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if job.Status != domain.JobStatusPending {
		t.Fatalf("expected pending, got %s", job.Status)
	}

	got, err := repo.GetJob(dbc, job.ID)
	if err != nil || got == nil {
		t.Fatalf("GetJob: err=%v got=%v", err, got)
	}

	// set_job_status succeeds from a non-terminal state.
	n := 3
	ok, err := repo.SetJobStatus(dbc, job.ID, domain.JobStatusDecomposing, JobStatusFields{SlideCount: &n})
	if err != nil || !ok {
		t.Fatalf("SetJobStatus(decomposing): ok=%v err=%v", ok, err)
	}

	ok, err = repo.SetJobStatus(dbc, job.ID, domain.JobStatusCompleted, JobStatusFields{})
	if err != nil || !ok {
		t.Fatalf("SetJobStatus(completed): ok=%v err=%v", ok, err)
	}

	// Idempotent re-write of the same terminal status is a no-op, not rejected.
	ok, err = repo.SetJobStatus(dbc, job.ID, domain.JobStatusCompleted, JobStatusFields{})
	if err != nil || !ok {
		t.Fatalf("SetJobStatus(completed again): ok=%v err=%v", ok, err)
	}

	// A transition attempting to leave a terminal state is rejected (signal, not error).
	ok, err = repo.SetJobStatus(dbc, job.ID, domain.JobStatusFailed, JobStatusFields{})
	if err != nil {
		t.Fatalf("SetJobStatus(failed after completed): unexpected error %v", err)
	}
	if ok {
		t.Fatalf("SetJobStatus(failed after completed): expected already-terminal signal")
	}

	byStatus, err := repo.ListJobsByStatus(dbc, []string{domain.JobStatusCompleted})
	if err != nil || len(byStatus) != 1 {
		t.Fatalf("ListJobsByStatus: err=%v len=%d", err, len(byStatus))
	}

	older, err := repo.ListJobsOlderThan(dbc, time.Now().Add(time.Hour), []string{domain.JobStatusCompleted})
	if err != nil || len(older) != 1 {
		t.Fatalf("ListJobsOlderThan: err=%v len=%d", err, len(older))
	}

	all, total, err := repo.ListAllJobs(dbc, 0, 10)
	if err != nil || total != 1 || len(all) != 1 {
		t.Fatalf("ListAllJobs: err=%v total=%d len=%d", err, total, len(all))
	}

	if err := repo.DeleteJobCascade(dbc, job.ID); err != nil {
		t.Fatalf("DeleteJobCascade: %v", err)
	}
	gone, err := repo.GetJob(dbc, job.ID)
	if err != nil || gone != nil {
		t.Fatalf("DeleteJobCascade: expected gone, got %v err %v", gone, err)
	}
}
