package synthesis

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.temporal.io/sdk/activity"

	"github.com/rakshabesafe/ppttovideo/internal/data/repos"
	"github.com/rakshabesafe/ppttovideo/internal/external/tts"
	"github.com/rakshabesafe/ppttovideo/internal/orchestration/cancel"
	"github.com/rakshabesafe/ppttovideo/internal/orchestration/jobctx"
	"github.com/rakshabesafe/ppttovideo/internal/pkg/dbctx"
	"github.com/rakshabesafe/ppttovideo/internal/platform/config"
	"github.com/rakshabesafe/ppttovideo/internal/platform/logger"
	"github.com/rakshabesafe/ppttovideo/internal/platform/objectstore"
)

// Payload is the (job_id, slide_index) message carried on the gpu queue.
// HardTimeLimitSeconds travels with the payload so the calling workflow
// can size its ActivityOptions.StartToCloseTimeout to T_hard without
// needing its own copy of the synthesis config.
type Payload struct {
	JobID               uint64
	SlideIndex          int
	TaskID              uint64
	HardTimeLimitSeconds int64
}

// Activities bundles the collaborators the synthesize activity needs: the
// Job Store, the object store, the speech engine, and the timing contract.
type Activities struct {
	Jobs   repos.JobRepo
	Voices repos.VoiceRepo
	Report *jobctx.Reporter
	Store  objectstore.Store
	Synth  tts.Synthesizer
	Cfg    config.Synthesis
	Log    *logger.Logger
}

// Synthesize runs the execution algorithm of §4.5 for one slide. It is
// registered as a Temporal activity on the gpu task queue; ActivityOptions
// on the calling workflow side set StartToCloseTimeout to T_hard, which is
// the engine's only enforcement of the hard limit (a hard-limit breach
// terminates the activity attempt entirely; nothing inside this function
// can prevent that). The soft limit is enforced here, locally, by racing
// the primary tier against a timer and falling back rather than aborting.
func (a *Activities) Synthesize(ctx context.Context, p Payload) error {
	heartbeatStop := a.startHeartbeat(ctx)
	defer heartbeatStop()

	if err := a.Report.StartTask(ctx, p.TaskID); err != nil {
		a.Log.Warn("synthesis: failed to mark task running", "task_id", p.TaskID, "error", err)
	}

	job, err := a.Jobs.GetJob(dbctx.Context{Ctx: ctx}, p.JobID)
	if err != nil {
		return a.fail(ctx, p.TaskID, fmt.Errorf("synthesis: load job: %w", err))
	}
	if job == nil {
		return a.fail(ctx, p.TaskID, fmt.Errorf("job not found"))
	}

	if err := cancel.CheckPoint(ctx); err != nil {
		return a.fail(ctx, p.TaskID, fmt.Errorf("synthesis: %w", err))
	}

	refBytes, refExt, hasRef, err := a.resolveVoice(ctx, job.VoiceRefID)
	if err != nil {
		return a.fail(ctx, p.TaskID, fmt.Errorf("synthesis: resolve voice: %w", err))
	}

	text, err := a.loadNoteText(ctx, job.ID, p.SlideIndex)
	if err != nil {
		return a.fail(ctx, p.TaskID, fmt.Errorf("synthesis: load notes: %w", err))
	}

	pre := Parse(text)

	in := Input{
		Text:           pre.CleanText,
		Emotion:        pre.Emotion,
		Speed:          pre.Speed,
		Pitch:          pre.Pitch,
		ReferenceBytes: refBytes,
		ReferenceExt:   refExt,
		HasReference:   hasRef,
		SilenceSeconds: a.Cfg.SilenceSeconds.Seconds(),
	}
	var outcome Outcome
	if text == silenceSentinel {
		// The sentinel carries no speech: only the silence tier runs.
		attempts := Chain(a.Synth, in)
		outcome = Run(ctx, attempts[len(attempts)-1:])
	} else {
		outcome = a.runWithSoftLimit(ctx, in)
	}
	if outcome.Err != nil {
		return a.fail(ctx, p.TaskID, fmt.Errorf("synthesis: all tiers failed: %w", outcome.Err))
	}

	if err := cancel.CheckPoint(ctx); err != nil {
		return a.fail(ctx, p.TaskID, fmt.Errorf("synthesis: %w", err))
	}

	jobUUID := objectstore.JobUUID(job.SourceArtifactKey)
	key := objectstore.AudioKey(jobUUID, p.SlideIndex)
	if _, err := a.Store.Put(ctx, objectstore.BucketPresentations, key, bytes.NewReader(outcome.Audio), int64(len(outcome.Audio))); err != nil {
		return a.fail(ctx, p.TaskID, fmt.Errorf("synthesis: upload result: %w", err))
	}

	if err := a.Report.CompleteTask(ctx, p.TaskID, outcome.Tier.Progress()); err != nil {
		return fmt.Errorf("synthesis: mark task completed: %w", err)
	}
	return nil
}

// runWithSoftLimit races the fallback chain's first attempt (the primary
// tier, or the secondary tier when there is no voice reference) against
// T_soft; a timeout there is treated exactly like an error of that tier,
// dropping to the remaining tiers, which run without the soft limit.
func (a *Activities) runWithSoftLimit(ctx context.Context, in Input) Outcome {
	attempts := Chain(a.Synth, in)
	if len(attempts) == 0 {
		return Outcome{Err: fmt.Errorf("synthesis: no attempts configured")}
	}

	first := attempts[0]
	softCtx, cancel := context.WithTimeout(ctx, a.Cfg.SoftTimeLimit)
	audio, err := runAttempt(softCtx, first)
	cancel()
	if err == nil {
		return Outcome{Tier: first.Tier, Audio: audio}
	}

	return Run(ctx, attempts[1:])
}

func runAttempt(ctx context.Context, a Attempt) ([]byte, error) {
	type result struct {
		audio []byte
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		audio, err := a.Run(ctx)
		ch <- result{audio, err}
	}()
	select {
	case r := <-ch:
		return r.audio, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (a *Activities) resolveVoice(ctx context.Context, voiceRefID string) (refBytes []byte, refExt string, hasRef bool, err error) {
	v, err := a.Voices.Get(dbctx.Context{Ctx: ctx}, voiceRefID)
	if err != nil {
		return nil, "", false, err
	}
	if v == nil || v.IsBuiltin() {
		return nil, "", false, nil
	}
	bucket, key, err := a.Store.ParseCanonical(v.S3Path)
	if err != nil {
		return nil, "", false, err
	}
	rc, err := a.Store.Get(ctx, bucket, key)
	if err != nil {
		return nil, "", false, err
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, "", false, err
	}
	ext := "wav"
	if strings.HasSuffix(strings.ToLower(key), ".mp3") {
		ext = "mp3"
	}
	return b, ext, true, nil
}

const silenceSentinel = "[SILENCE]"

func (a *Activities) loadNoteText(ctx context.Context, jobID uint64, slideIndex int) (string, error) {
	key := objectstore.NotesKey(jobID, slideIndex)
	rc, err := a.Store.Get(ctx, objectstore.BucketPresentations, key)
	if err != nil {
		if err == objectstore.ErrNotFound {
			return silenceSentinel, nil
		}
		return "", err
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(b))
	if text == "" {
		return silenceSentinel, nil
	}
	return text, nil
}

func (a *Activities) fail(ctx context.Context, taskID uint64, err error) error {
	if ferr := a.Report.FailTask(ctx, taskID, err.Error()); ferr != nil {
		a.Log.Warn("synthesis: failed to record task failure", "task_id", taskID, "error", ferr)
	}
	return err
}

// startHeartbeat runs a background ticker that keeps Temporal's activity
// heartbeat alive for the duration of a potentially long synthesis call,
// independent of the fallback chain's own control flow. It is a no-op
// outside a real Temporal activity context (e.g. in unit tests).
func (a *Activities) startHeartbeat(ctx context.Context) func() {
	if !activity.IsActivity(ctx) {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				activity.RecordHeartbeat(ctx)
			case <-done:
				return
			}
		}
	}()
	return func() { close(done) }
}
