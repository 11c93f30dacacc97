package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/rakshabesafe/ppttovideo/internal/domain"
	"gorm.io/gorm"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, id string) *domain.User {
	tb.Helper()
	u := &domain.User{ID: id}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedVoiceReference(tb testing.TB, ctx context.Context, tx *gorm.DB, id, ownerID, s3Path string) *domain.VoiceReference {
	tb.Helper()
	v := &domain.VoiceReference{
		ID:      id,
		OwnerID: ownerID,
		Name:    "ref",
		S3Path:  s3Path,
	}
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed voice reference: %v", err)
	}
	return v
}

func SeedJob(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID, voiceRefID, sourceKey string) *domain.Job {
	tb.Helper()
	j := &domain.Job{
		OwnerID:           ownerID,
		VoiceRefID:        voiceRefID,
		SourceArtifactKey: sourceKey,
		Status:            domain.JobStatusPending,
		Stage:             domain.JobStatusPending,
	}
	if err := tx.WithContext(ctx).Create(j).Error; err != nil {
		tb.Fatalf("seed job: %v", err)
	}
	return j
}

func SeedTask(tb testing.TB, ctx context.Context, tx *gorm.DB, jobID uint64, kind string, slideIndex *int) *domain.Task {
	tb.Helper()
	t := &domain.Task{
		JobID:      jobID,
		Kind:       kind,
		SlideIndex: slideIndex,
		Status:     domain.TaskStatusPending,
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed task: %v", err)
	}
	return t
}

func PtrInt(v int) *int { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
