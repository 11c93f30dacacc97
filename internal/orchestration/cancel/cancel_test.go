package cancel

import (
	"context"
	"testing"
	"time"

	"github.com/rakshabesafe/ppttovideo/internal/data/repos"
	"github.com/rakshabesafe/ppttovideo/internal/domain"
	"github.com/rakshabesafe/ppttovideo/internal/orchestration/jobctx"
	"github.com/rakshabesafe/ppttovideo/internal/pkg/dbctx"
	"github.com/rakshabesafe/ppttovideo/internal/platform/logger"
	"github.com/rakshabesafe/ppttovideo/internal/queue"
)

type fakeJobs struct {
	job    *domain.Job
	status string
}

func (f *fakeJobs) CreateJob(dbctx.Context, string, string, string) (*domain.Job, error) {
	panic("unused")
}
func (f *fakeJobs) GetJob(dbctx.Context, uint64) (*domain.Job, error) { return f.job, nil }
func (f *fakeJobs) SetJobStatus(dbc dbctx.Context, id uint64, status string, fields repos.JobStatusFields) (bool, error) {
	if f.job.IsTerminal() {
		return false, nil
	}
	f.status = status
	f.job.Status = status
	return true, nil
}
func (f *fakeJobs) ListJobsByStatus(dbctx.Context, []string) ([]*domain.Job, error) { return nil, nil }
func (f *fakeJobs) ListJobsOlderThan(dbctx.Context, time.Time, []string) ([]*domain.Job, error) {
	return nil, nil
}
func (f *fakeJobs) ListAllJobs(dbctx.Context, int, int) ([]*domain.Job, int64, error) {
	return nil, 0, nil
}
func (f *fakeJobs) DeleteJobCascade(dbctx.Context, uint64) error { return nil }

type fakeTasks struct {
	tasks   []*domain.Task
	updates map[uint64]repos.TaskUpdate
}

func (f *fakeTasks) CreateTask(dbctx.Context, uint64, string, *int, string) (*domain.Task, error) {
	panic("unused")
}
func (f *fakeTasks) GetTask(dbctx.Context, uint64) (*domain.Task, error)               { return nil, nil }
func (f *fakeTasks) GetTaskByExternalID(dbctx.Context, string) (*domain.Task, error)   { return nil, nil }
func (f *fakeTasks) UpdateTask(dbc dbctx.Context, id uint64, u repos.TaskUpdate) error {
	if f.updates == nil {
		f.updates = map[uint64]repos.TaskUpdate{}
	}
	f.updates[id] = u
	for _, t := range f.tasks {
		if t.ID == id && u.Status != nil {
			t.Status = *u.Status
		}
	}
	return nil
}
func (f *fakeTasks) UpdateTaskByExternalID(dbctx.Context, string, repos.TaskUpdate) error { return nil }
func (f *fakeTasks) ListTasks(dbctx.Context, uint64) ([]*domain.Task, error)              { return f.tasks, nil }
func (f *fakeTasks) ListTasksByIDs(dbctx.Context, []uint64) ([]*domain.Task, error)       { return nil, nil }
func (f *fakeTasks) ListStaleRunning(dbctx.Context, time.Duration) ([]*domain.Task, error) {
	return nil, nil
}

type fakeBroker struct {
	revoked []string
}

func (f *fakeBroker) Enqueue(context.Context, string, string, interface{}, string) (string, error) {
	panic("unused")
}
func (f *fakeBroker) Revoke(ctx context.Context, externalID string) error {
	f.revoked = append(f.revoked, externalID)
	return nil
}
func (f *fakeBroker) Inspect(context.Context, string) (*queue.Stats, error) { return nil, nil }

func newService(jobs *fakeJobs, tasks *fakeTasks, broker *fakeBroker) *Service {
	log, _ := logger.New("test")
	return New(jobs, tasks, jobctx.New(jobs, tasks, log), broker, log)
}

func TestCancelRevokesNonTerminalTasksAndTransitionsJob(t *testing.T) {
	job := &domain.Job{ID: 1, Status: domain.JobStatusSynthesizing}
	tasks := &fakeTasks{tasks: []*domain.Task{
		{ID: 10, JobID: 1, Kind: domain.TaskKindSynthesize, Status: domain.TaskStatusRunning, ExternalID: "wf-1:run-1"},
		{ID: 11, JobID: 1, Kind: domain.TaskKindSynthesize, Status: domain.TaskStatusCompleted, ExternalID: "wf-2:run-2"},
		{ID: 12, JobID: 1, Kind: domain.TaskKindDecompose, Status: domain.TaskStatusPending, ExternalID: ""},
	}}
	jobs := &fakeJobs{job: job}
	broker := &fakeBroker{}

	ok, err := newService(jobs, tasks, broker).Cancel(context.Background(), 1)
	if err != nil || !ok {
		t.Fatalf("Cancel: ok=%v err=%v", ok, err)
	}
	if len(broker.revoked) != 1 || broker.revoked[0] != "wf-1:run-1" {
		t.Fatalf("expected exactly the running task revoked, got %v", broker.revoked)
	}
	if tasks.tasks[0].Status != domain.TaskStatusCancelled {
		t.Fatalf("expected running task marked cancelled, got %s", tasks.tasks[0].Status)
	}
	if tasks.tasks[1].Status != domain.TaskStatusCompleted {
		t.Fatalf("completed task must not be touched, got %s", tasks.tasks[1].Status)
	}
	if job.Status != domain.JobStatusCancelled {
		t.Fatalf("expected job cancelled, got %s", job.Status)
	}
}

func TestCheckPointReturnsNilUntilCancelled(t *testing.T) {
	ctx, cancelFn := context.WithCancel(context.Background())
	if err := CheckPoint(ctx); err != nil {
		t.Fatalf("expected nil before cancellation, got %v", err)
	}
	cancelFn()
	if err := CheckPoint(ctx); err == nil {
		t.Fatalf("expected an error after cancellation")
	}
}

func TestCancelAlreadyTerminalReturnsFalseNotError(t *testing.T) {
	job := &domain.Job{ID: 2, Status: domain.JobStatusCompleted}
	jobs := &fakeJobs{job: job}
	tasks := &fakeTasks{}
	broker := &fakeBroker{}

	ok, err := newService(jobs, tasks, broker).Cancel(context.Background(), 2)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false for an already-terminal job")
	}
	if len(broker.revoked) != 0 {
		t.Fatalf("expected no revokes for an already-terminal job")
	}
}
