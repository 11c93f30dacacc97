// Package repos is the Job Store (C1): relational persistence for Job,
// Task, VoiceReference and User, with dbctx.Context-scoped methods and a
// conditional status update in SetJobStatus that does not overwrite an
// absorbing state.
package repos

import (
	"time"

	"github.com/rakshabesafe/ppttovideo/internal/domain"
	"github.com/rakshabesafe/ppttovideo/internal/pkg/dbctx"
	"github.com/rakshabesafe/ppttovideo/internal/platform/logger"
	"gorm.io/gorm"
)

// JobRepo exposes the Job-row half of the Job Store contract (§4.1).
type JobRepo interface {
	CreateJob(dbc dbctx.Context, ownerID, voiceRefID, sourceKey string) (*domain.Job, error)
	GetJob(dbc dbctx.Context, id uint64) (*domain.Job, error)
	ListJobsByStatus(dbc dbctx.Context, statuses []string) ([]*domain.Job, error)
	ListJobsOlderThan(dbc dbctx.Context, cutoff time.Time, statuses []string) ([]*domain.Job, error)
	ListAllJobs(dbc dbctx.Context, offset, limit int) ([]*domain.Job, int64, error)
	// SetJobStatus returns ok=false (not an error) when the job is already
	// in a terminal state, per the "already-terminal signal, not an error"
	// contract.
	SetJobStatus(dbc dbctx.Context, id uint64, status string, fields JobStatusFields) (ok bool, err error)
	DeleteJobCascade(dbc dbctx.Context, id uint64) error
}

// JobStatusFields carries the optional fields that accompany a status
// transition; zero values leave the corresponding column untouched, except
// that a nil Stage sets stage to the new status.
type JobStatusFields struct {
	Stage      *string
	Error      *string
	ResultKey  *string
	SlideCount *int
}

type jobRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJobRepo(db *gorm.DB, baseLog *logger.Logger) JobRepo {
	return &jobRepo{db: db, log: baseLog.With("repo", "JobRepo")}
}

func (r *jobRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *jobRepo) CreateJob(dbc dbctx.Context, ownerID, voiceRefID, sourceKey string) (*domain.Job, error) {
	j := &domain.Job{
		OwnerID:           ownerID,
		VoiceRefID:        voiceRefID,
		SourceArtifactKey: sourceKey,
		Status:            domain.JobStatusPending,
		Stage:             domain.JobStatusPending,
	}
	if err := r.tx(dbc).WithContext(dbc.Ctx).Create(j).Error; err != nil {
		return nil, err
	}
	return j, nil
}

func (r *jobRepo) GetJob(dbc dbctx.Context, id uint64) (*domain.Job, error) {
	var j domain.Job
	err := r.tx(dbc).WithContext(dbc.Ctx).First(&j, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &j, nil
}

func (r *jobRepo) ListJobsByStatus(dbc dbctx.Context, statuses []string) ([]*domain.Job, error) {
	var out []*domain.Job
	if len(statuses) == 0 {
		return out, nil
	}
	err := r.tx(dbc).WithContext(dbc.Ctx).
		Where("status IN ?", statuses).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *jobRepo) ListJobsOlderThan(dbc dbctx.Context, cutoff time.Time, statuses []string) ([]*domain.Job, error) {
	var out []*domain.Job
	q := r.tx(dbc).WithContext(dbc.Ctx).Where("created_at < ?", cutoff)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	err := q.Order("created_at ASC").Find(&out).Error
	return out, err
}

func (r *jobRepo) ListAllJobs(dbc dbctx.Context, offset, limit int) ([]*domain.Job, int64, error) {
	var out []*domain.Job
	var total int64
	if err := r.tx(dbc).WithContext(dbc.Ctx).Model(&domain.Job{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	q := r.tx(dbc).WithContext(dbc.Ctx).Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *jobRepo) SetJobStatus(dbc dbctx.Context, id uint64, status string, fields JobStatusFields) (bool, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": now,
	}
	if fields.Stage != nil {
		updates["stage"] = *fields.Stage
	} else {
		updates["stage"] = status
	}
	if fields.Error != nil {
		updates["error"] = *fields.Error
	}
	if fields.ResultKey != nil {
		updates["result_artifact_key"] = *fields.ResultKey
	}
	if fields.SlideCount != nil {
		updates["slide_count"] = *fields.SlideCount
	}

	terminalStatuses := make([]string, 0, len(domain.JobTerminalStatuses))
	for s := range domain.JobTerminalStatuses {
		terminalStatuses = append(terminalStatuses, s)
	}

	// A write that re-applies the job's own current terminal status is an
	// idempotent no-op, not a rejected transition out of terminal.
	res := r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.Job{}).
		Where("id = ? AND (status NOT IN ? OR status = ?)", id, terminalStatuses, status).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *jobRepo) DeleteJobCascade(dbc dbctx.Context, id uint64) error {
	return r.tx(dbc).WithContext(dbc.Ctx).Transaction(func(txx *gorm.DB) error {
		if err := txx.Where("job_id = ?", id).Delete(&domain.Task{}).Error; err != nil {
			return err
		}
		return txx.Where("id = ?", id).Delete(&domain.Job{}).Error
	})
}

func isNotFound(err error) bool {
	return err == gorm.ErrRecordNotFound
}
