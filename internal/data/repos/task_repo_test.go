package repos

import (
	"context"
	"testing"
	"time"

	"github.com/rakshabesafe/ppttovideo/internal/data/repos/testutil"
	"github.com/rakshabesafe/ppttovideo/internal/domain"
	"github.com/rakshabesafe/ppttovideo/internal/pkg/dbctx"
)

func TestTaskRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	jobRepo := NewJobRepo(db, testutil.Logger(t))
	repo := NewTaskRepo(db, testutil.Logger(t))

	job, err := jobRepo.CreateJob(dbc, "owner-1", "voice-1", "ingest/abc.pptx")
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	idx1, idx2 := 1, 2
	s1, err := repo.CreateTask(dbc, job.ID, domain.TaskKindSynthesize, &idx1, "ext-1")
	if err != nil {
		t.Fatalf("CreateTask 1: %v", err)
	}
	if _, err := repo.CreateTask(dbc, job.ID, domain.TaskKindSynthesize, &idx2, "ext-2"); err != nil {
		t.Fatalf("CreateTask 2: %v", err)
	}
	if _, err := repo.CreateTask(dbc, job.ID, domain.TaskKindDecompose, nil, ""); err != nil {
		t.Fatalf("CreateTask decompose: %v", err)
	}

	running := domain.TaskStatusRunning
	if err := repo.UpdateTask(dbc, s1.ID, TaskUpdate{Status: &running}); err != nil {
		t.Fatalf("UpdateTask running: %v", err)
	}
	got, err := repo.GetTask(dbc, s1.ID)
	if err != nil || got == nil || got.StartedAt == nil {
		t.Fatalf("expected started_at stamped, got %+v err %v", got, err)
	}
	firstStarted := *got.StartedAt

	// re-applying running must not clobber started_at.
	if err := repo.UpdateTask(dbc, s1.ID, TaskUpdate{Status: &running}); err != nil {
		t.Fatalf("UpdateTask running again: %v", err)
	}
	got2, err := repo.GetTask(dbc, s1.ID)
	if err != nil || got2.StartedAt == nil || !got2.StartedAt.Equal(firstStarted) {
		t.Fatalf("started_at should be stable across repeated running updates: %v vs %v", got2.StartedAt, firstStarted)
	}

	completed := domain.TaskStatusCompleted
	progress := "synthesized"
	if err := repo.UpdateTask(dbc, s1.ID, TaskUpdate{Status: &completed, Progress: &progress}); err != nil {
		t.Fatalf("UpdateTask completed: %v", err)
	}
	got3, err := repo.GetTask(dbc, s1.ID)
	if err != nil || got3.CompletedAt == nil {
		t.Fatalf("expected completed_at stamped: %+v err %v", got3, err)
	}

	byExt, err := repo.GetTaskByExternalID(dbc, "ext-2")
	if err != nil || byExt == nil || byExt.ID == 0 {
		t.Fatalf("GetTaskByExternalID: err=%v got=%v", err, byExt)
	}

	tasks, err := repo.ListTasks(dbc, job.ID)
	if err != nil || len(tasks) != 3 {
		t.Fatalf("ListTasks: err=%v len=%d", err, len(tasks))
	}
	if tasks[0].Kind != domain.TaskKindDecompose {
		t.Fatalf("ListTasks order: expected decompose first, got %s", tasks[0].Kind)
	}

	stale, err := repo.ListStaleRunning(dbc, time.Millisecond)
	if err != nil {
		t.Fatalf("ListStaleRunning: %v", err)
	}
	found := false
	for _, s := range stale {
		if s.ID == s1.ID {
			// s1 is already completed, should not appear.
			found = true
		}
	}
	if found {
		t.Fatalf("ListStaleRunning must not include completed tasks")
	}
}
