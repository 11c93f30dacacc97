package synthesis

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rakshabesafe/ppttovideo/internal/data/repos"
	"github.com/rakshabesafe/ppttovideo/internal/domain"
	"github.com/rakshabesafe/ppttovideo/internal/external/tts"
	"github.com/rakshabesafe/ppttovideo/internal/orchestration/jobctx"
	"github.com/rakshabesafe/ppttovideo/internal/pkg/dbctx"
	"github.com/rakshabesafe/ppttovideo/internal/platform/config"
	"github.com/rakshabesafe/ppttovideo/internal/platform/logger"
	"github.com/rakshabesafe/ppttovideo/internal/platform/objectstore"
)

type fakeJobs struct {
	job *domain.Job
}

func (f *fakeJobs) CreateJob(dbctx.Context, string, string, string) (*domain.Job, error) {
	return nil, errors.New("unused")
}
func (f *fakeJobs) GetJob(dbctx.Context, uint64) (*domain.Job, error) { return f.job, nil }
func (f *fakeJobs) ListJobsByStatus(dbctx.Context, []string) ([]*domain.Job, error) {
	return nil, nil
}
func (f *fakeJobs) ListJobsOlderThan(dbctx.Context, time.Time, []string) ([]*domain.Job, error) {
	return nil, nil
}
func (f *fakeJobs) ListAllJobs(dbctx.Context, int, int) ([]*domain.Job, int64, error) {
	return nil, 0, nil
}
func (f *fakeJobs) SetJobStatus(dbctx.Context, uint64, string, repos.JobStatusFields) (bool, error) {
	return true, nil
}
func (f *fakeJobs) DeleteJobCascade(dbctx.Context, uint64) error { return nil }

type fakeTasks struct {
	updates []repos.TaskUpdate
}

func (f *fakeTasks) CreateTask(dbctx.Context, uint64, string, *int, string) (*domain.Task, error) {
	return nil, errors.New("unused")
}
func (f *fakeTasks) GetTask(dbctx.Context, uint64) (*domain.Task, error) { return nil, nil }
func (f *fakeTasks) GetTaskByExternalID(dbctx.Context, string) (*domain.Task, error) {
	return nil, nil
}
func (f *fakeTasks) UpdateTask(_ dbctx.Context, _ uint64, u repos.TaskUpdate) error {
	f.updates = append(f.updates, u)
	return nil
}
func (f *fakeTasks) UpdateTaskByExternalID(dbctx.Context, string, repos.TaskUpdate) error {
	return nil
}
func (f *fakeTasks) ListTasks(dbctx.Context, uint64) ([]*domain.Task, error) { return nil, nil }
func (f *fakeTasks) ListTasksByIDs(dbctx.Context, []uint64) ([]*domain.Task, error) {
	return nil, nil
}
func (f *fakeTasks) ListStaleRunning(dbctx.Context, time.Duration) ([]*domain.Task, error) {
	return nil, nil
}

type fakeVoices struct {
	voice *domain.VoiceReference
}

func (f *fakeVoices) Create(dbctx.Context, *domain.VoiceReference) (*domain.VoiceReference, error) {
	return nil, errors.New("unused")
}
func (f *fakeVoices) Get(dbctx.Context, string) (*domain.VoiceReference, error) { return f.voice, nil }

type fakeStore struct {
	notes   map[string]string
	putKey  string
	putBody []byte
}

func (s *fakeStore) Put(_ context.Context, bucket, key string, r io.Reader, _ int64) (string, error) {
	b, _ := io.ReadAll(r)
	s.putKey, s.putBody = key, b
	return "/" + bucket + "/" + key, nil
}
func (s *fakeStore) Get(_ context.Context, _ string, key string) (io.ReadCloser, error) {
	text, ok := s.notes[key]
	if !ok {
		return nil, objectstore.ErrNotFound
	}
	return io.NopCloser(bytes.NewBufferString(text)), nil
}
func (s *fakeStore) Stat(context.Context, string, string) (*objectstore.ObjectAttrs, error) {
	return nil, objectstore.ErrNotFound
}
func (s *fakeStore) List(context.Context, string, string) ([]string, error) { return nil, nil }
func (s *fakeStore) Delete(context.Context, string, string) error           { return nil }
func (s *fakeStore) DeletePrefix(context.Context, string, string) (int, error) {
	return 0, nil
}
func (s *fakeStore) ParseCanonical(path string) (string, string, error) {
	return "voice-clones", path, nil
}

func newTestActivities(job *domain.Job, voice *domain.VoiceReference, notes map[string]string, synth tts.Synthesizer) (*Activities, *fakeTasks, *fakeStore) {
	log, _ := logger.New("test")
	tasks := &fakeTasks{}
	store := &fakeStore{notes: notes}
	act := &Activities{
		Jobs:   &fakeJobs{job: job},
		Voices: &fakeVoices{voice: voice},
		Report: jobctx.New(&fakeJobs{job: job}, tasks, log),
		Store:  store,
		Synth:  synth,
		Cfg: config.Synthesis{
			SoftTimeLimit:  time.Second,
			HardTimeLimit:  5 * time.Second,
			SilenceSeconds: 2 * time.Second,
			SampleRateHz:   22050,
		},
		Log: log,
	}
	return act, tasks, store
}

func TestSynthesizeHappyPathNoVoiceReference(t *testing.T) {
	job := &domain.Job{ID: 7, SourceArtifactKey: "ingest/abc-123.pptx"}
	voice := &domain.VoiceReference{ID: "v1", S3Path: domain.BuiltinVoicePrefix + "default"}
	act, tasks, store := newTestActivities(job, voice, map[string]string{
		objectstore.NotesKey(7, 1): "Hello there",
	}, &stubSynth{})

	if err := act.Synthesize(context.Background(), Payload{JobID: 7, SlideIndex: 1, TaskID: 42}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.putKey != objectstore.AudioKey(objectstore.JobUUID(job.SourceArtifactKey), 1) {
		t.Errorf("unexpected put key %q", store.putKey)
	}
	if len(tasks.updates) < 2 {
		t.Fatalf("expected start + complete updates, got %d", len(tasks.updates))
	}
	last := tasks.updates[len(tasks.updates)-1]
	if last.Status == nil || *last.Status != domain.TaskStatusCompleted {
		t.Errorf("expected final update to mark completed, got %+v", last)
	}
	if last.Progress == nil || *last.Progress != TierSecondary.Progress() {
		t.Errorf("expected base-tier progress since voice is builtin, got %+v", last.Progress)
	}
}

func TestSynthesizeMissingNotesFallsBackToSilenceSentinel(t *testing.T) {
	job := &domain.Job{ID: 9, SourceArtifactKey: "ingest/zzz.pptx"}
	voice := &domain.VoiceReference{ID: "v1", S3Path: domain.BuiltinVoicePrefix + "default"}
	act, _, store := newTestActivities(job, voice, map[string]string{}, &stubSynth{})

	if err := act.Synthesize(context.Background(), Payload{JobID: 9, SlideIndex: 3, TaskID: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.putBody) == 0 {
		t.Fatalf("expected audio bytes to be uploaded")
	}
}

func TestSynthesizeAllTiersFailMarksTaskFailed(t *testing.T) {
	job := &domain.Job{ID: 1, SourceArtifactKey: "ingest/a.pptx"}
	voice := &domain.VoiceReference{ID: "v1", S3Path: domain.BuiltinVoicePrefix + "default"}
	failing := &stubSynth{baseErr: errors.New("down"), silenceErr: errors.New("down")}
	act, tasks, _ := newTestActivities(job, voice, map[string]string{}, failing)

	err := act.Synthesize(context.Background(), Payload{JobID: 1, SlideIndex: 1, TaskID: 5})
	if err == nil {
		t.Fatalf("expected error when every tier fails")
	}
	last := tasks.updates[len(tasks.updates)-1]
	if last.Status == nil || *last.Status != domain.TaskStatusFailed {
		t.Errorf("expected task marked failed, got %+v", last)
	}
}
