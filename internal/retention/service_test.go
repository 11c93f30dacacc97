package retention

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rakshabesafe/ppttovideo/internal/data/repos"
	"github.com/rakshabesafe/ppttovideo/internal/domain"
	"github.com/rakshabesafe/ppttovideo/internal/orchestration/jobctx"
	"github.com/rakshabesafe/ppttovideo/internal/pkg/dbctx"
	"github.com/rakshabesafe/ppttovideo/internal/platform/logger"
	"github.com/rakshabesafe/ppttovideo/internal/platform/objectstore"
)

type fakeJobs struct {
	jobs    map[uint64]*domain.Job
	deleted []uint64
}

func (f *fakeJobs) CreateJob(dbctx.Context, string, string, string) (*domain.Job, error) {
	return nil, errors.New("unused")
}
func (f *fakeJobs) GetJob(_ dbctx.Context, id uint64) (*domain.Job, error) { return f.jobs[id], nil }
func (f *fakeJobs) ListJobsByStatus(dbctx.Context, []string) ([]*domain.Job, error) {
	return nil, nil
}
func (f *fakeJobs) ListJobsOlderThan(_ dbctx.Context, _ time.Time, statuses []string) ([]*domain.Job, error) {
	var out []*domain.Job
	want := map[string]bool{}
	for _, s := range statuses {
		want[s] = true
	}
	for _, j := range f.jobs {
		if want[j.Status] {
			out = append(out, j)
		}
	}
	return out, nil
}
func (f *fakeJobs) ListAllJobs(dbctx.Context, int, int) ([]*domain.Job, int64, error) {
	return nil, 0, nil
}
func (f *fakeJobs) SetJobStatus(dbctx.Context, uint64, string, repos.JobStatusFields) (bool, error) {
	return true, nil
}
func (f *fakeJobs) DeleteJobCascade(_ dbctx.Context, id uint64) error {
	f.deleted = append(f.deleted, id)
	delete(f.jobs, id)
	return nil
}

type fakeStore struct {
	deletedKeys   []string
	deletedPrefix []string
	failKey       string
}

func (s *fakeStore) Put(context.Context, string, string, io.Reader, int64) (string, error) {
	return "", nil
}
func (s *fakeStore) Get(context.Context, string, string) (io.ReadCloser, error) {
	return nil, objectstore.ErrNotFound
}
func (s *fakeStore) Stat(context.Context, string, string) (*objectstore.ObjectAttrs, error) {
	return nil, objectstore.ErrNotFound
}
func (s *fakeStore) List(context.Context, string, string) ([]string, error) { return nil, nil }
func (s *fakeStore) Delete(_ context.Context, bucket, key string) error {
	if key == s.failKey {
		return errors.New("boom")
	}
	s.deletedKeys = append(s.deletedKeys, bucket+"/"+key)
	return nil
}
func (s *fakeStore) DeletePrefix(_ context.Context, bucket, prefix string) (int, error) {
	s.deletedPrefix = append(s.deletedPrefix, bucket+"/"+prefix)
	return 0, nil
}
func (s *fakeStore) ParseCanonical(path string) (string, string, error) {
	return "ingest", path, nil
}

func TestDeleteOldSweepsExpectedPaths(t *testing.T) {
	result := "/output/7.mp4"
	jobs := &fakeJobs{jobs: map[uint64]*domain.Job{
		7: {ID: 7, SourceArtifactKey: "ingest/nonce-1.pptx", ResultArtifactKey: &result, Status: domain.JobStatusCompleted},
	}}
	store := &fakeStore{}
	svc := &Service{Jobs: jobs, Store: store, Log: mustLogger(t)}

	candidates, err := svc.DeleteOld(context.Background(), time.Now(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 1 || !candidates[0].DeletedRow {
		t.Fatalf("expected one deleted candidate, got %+v", candidates)
	}
	if len(jobs.deleted) != 1 || jobs.deleted[0] != 7 {
		t.Fatalf("expected job row 7 deleted, got %v", jobs.deleted)
	}
	if len(store.deletedPrefix) != 4 {
		t.Errorf("expected 4 prefix deletes (audio, notes, images, catch-all), got %d: %v", len(store.deletedPrefix), store.deletedPrefix)
	}
	if len(store.deletedKeys) != 2 {
		t.Errorf("expected source + result artifact deletes, got %v", store.deletedKeys)
	}
}

func TestDeleteOneStillDeletesRowWhenObjectDeletesFail(t *testing.T) {
	jobs := &fakeJobs{jobs: map[uint64]*domain.Job{
		1: {ID: 1, SourceArtifactKey: "ingest/nonce.pptx", Status: domain.JobStatusFailed},
	}}
	store := &fakeStore{failKey: "ingest/nonce.pptx"}
	svc := &Service{Jobs: jobs, Store: store, Log: mustLogger(t)}

	c := svc.deleteOne(context.Background(), jobs.jobs[1])
	if len(c.ObjectErrors) == 0 {
		t.Fatalf("expected a recorded object error")
	}
	if !c.DeletedRow {
		t.Fatalf("expected the job row deleted despite object-store errors")
	}
}

type fakeTasks struct {
	stale   []*domain.Task
	updates map[uint64]repos.TaskUpdate
}

func (f *fakeTasks) CreateTask(dbctx.Context, uint64, string, *int, string) (*domain.Task, error) {
	return nil, errors.New("unused")
}
func (f *fakeTasks) GetTask(dbctx.Context, uint64) (*domain.Task, error)             { return nil, nil }
func (f *fakeTasks) GetTaskByExternalID(dbctx.Context, string) (*domain.Task, error) { return nil, nil }
func (f *fakeTasks) UpdateTask(dbc dbctx.Context, id uint64, u repos.TaskUpdate) error {
	if f.updates == nil {
		f.updates = map[uint64]repos.TaskUpdate{}
	}
	f.updates[id] = u
	return nil
}
func (f *fakeTasks) UpdateTaskByExternalID(dbctx.Context, string, repos.TaskUpdate) error { return nil }
func (f *fakeTasks) ListTasks(dbctx.Context, uint64) ([]*domain.Task, error)              { return nil, nil }
func (f *fakeTasks) ListTasksByIDs(dbctx.Context, []uint64) ([]*domain.Task, error)       { return nil, nil }
func (f *fakeTasks) ListStaleRunning(dbctx.Context, time.Duration) ([]*domain.Task, error) {
	return f.stale, nil
}

func TestReclaimStaleFailsOrphanedRunningTasks(t *testing.T) {
	tasks := &fakeTasks{stale: []*domain.Task{
		{ID: 42, JobID: 9, Kind: domain.TaskKindSynthesize, Status: domain.TaskStatusRunning},
	}}
	jobs := &fakeJobs{jobs: map[uint64]*domain.Job{}}
	log := mustLogger(t)
	svc := &Service{Jobs: jobs, Tasks: tasks, Report: jobctx.New(jobs, tasks, log), Log: log}

	reclaimed, err := svc.ReclaimStale(context.Background(), time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reclaimed) != 1 || reclaimed[0].ID != 42 {
		t.Fatalf("expected task 42 reclaimed, got %+v", reclaimed)
	}
	update, ok := tasks.updates[42]
	if !ok || update.Status == nil || *update.Status != domain.TaskStatusFailed {
		t.Fatalf("expected task 42 marked failed, got %+v", update)
	}
}

func mustLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return l
}
